package order

import (
	"errors"

	"relytailors-be/internal/apperror"
)

var (
	ErrNoOrderItems     = apperror.Validation("No order items")
	ErrOrderNotFound    = apperror.NotFound("Order not found")
	ErrNotOrderOwner    = apperror.Authorization("Not authorized to view this order")
	ErrAlreadyProcessed = apperror.Conflict("Order has already been processed")
	ErrInvalidStatus    = apperror.Validation("Invalid order status")
	ErrUnknownProduct   = apperror.Validation("Unknown product in order")
	ErrBadCustomization = apperror.Validation("Invalid customization")
	ErrBadMeasurement   = apperror.Validation("Invalid measurement")
)

// errOrderNumberTaken reports a unique violation on order_number; the service
// retries with a fresh number.
var errOrderNumberTaken = errors.New("order number already taken")
