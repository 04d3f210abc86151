package api

import (
	"errors"
	"io"
	"net/http"

	"relytailors-be/internal/apperror"
	"relytailors-be/internal/logger"

	"github.com/go-chi/render"
	"go.uber.org/zap"
)

const (
	msgInternal       = "Internal server error"
	msgInvalidRequest = "Invalid request body"
)

type messageResponse struct {
	Message string `json:"message"`
}

func writeMessage(w http.ResponseWriter, r *http.Request, status int, msg string) {
	render.Status(r, status)
	render.JSON(w, r, messageResponse{Message: msg})
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	render.Status(r, status)
	render.JSON(w, r, v)
}

// writeError maps err onto the error taxonomy. Unexpected errors are logged
// and hidden behind a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := apperror.KindOf(err)
	status := apperror.HTTPStatus(kind)

	if kind == apperror.KindUnexpected {
		logger.FromCtx(r.Context()).Error("request failed",
			zap.String("layer", "handler"),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeMessage(w, r, status, msgInternal)
		return
	}

	writeMessage(w, r, status, apperror.MessageOf(err, msgInternal))
}

// decodeJSON decodes the request body into v. An empty body leaves v at its
// zero value so the service can report what is missing.
func decodeJSON(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil && !errors.Is(err, io.EOF) {
		return apperror.Wrap(apperror.Validation(msgInvalidRequest), err)
	}
	return nil
}
