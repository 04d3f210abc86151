package api

import (
	"net/http"

	"relytailors-be/internal/metrics"
)

type notificationStats struct {
	Backend string `json:"backend"`
	Sent    uint64 `json:"sent"`
	Failed  uint64 `json:"failed"`
}

type healthResponse struct {
	Status        string            `json:"status"`
	Notifications notificationStats `json:"notifications"`
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, healthResponse{
		Status: "ok",
		Notifications: notificationStats{
			Backend: h.notificationBackend,
			Sent:    metrics.CounterValue(h.metrics.NotificationsSent),
			Failed:  metrics.CounterValue(h.metrics.NotificationsFailed),
		},
	})
}
