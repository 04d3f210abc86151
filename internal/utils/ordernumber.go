package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

const (
	OrderNumberPrefix = "RT"

	orderNumberSpace = 1_000_000
)

// GenerateOrderNumber returns a human readable reference such as
// RT-20261016-103000-123-456789. The column is unique, so callers regenerate
// on the rare collision.
func GenerateOrderNumber(now time.Time) string {
	now = now.UTC()

	datePart := now.Format("20060102-150405")
	millis := now.Nanosecond() / int(time.Millisecond)

	n, err := rand.Int(rand.Reader, big.NewInt(orderNumberSpace))
	if err != nil {
		n = big.NewInt(now.UnixNano() % orderNumberSpace)
	}

	return fmt.Sprintf("%s-%s-%03d-%06d", OrderNumberPrefix, datePart, millis, n.Int64())
}
