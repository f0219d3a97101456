package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/joestump/linkhub/internal/respond"
	"github.com/joestump/linkhub/internal/validate"
)

// Messages shared across handlers.
const (
	msgBadClientData = "invalid data from client"
	msgBadBody       = "invalid request body"
	msgInternal      = "internal error"
)

// decodeJSON reads the request body into v, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respond.SimpleError(msgBadBody, http.StatusBadRequest).Write(w)
		return false
	}
	return true
}

func writeValidationError(w http.ResponseWriter, verr *validate.Error) {
	respond.Error(verr.Detail(), msgBadClientData, http.StatusBadRequest).Write(w)
}

// writeInternal logs err with the request id and answers a bare 500.
func writeInternal(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	log.Error("request failed",
		zap.String("request_id", middleware.GetReqID(r.Context())),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	respond.SimpleError(msgInternal, http.StatusInternalServerError).Write(w)
}
