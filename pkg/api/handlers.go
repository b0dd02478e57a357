package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/bankbridge/pkg/pipeline"
	"github.com/Sternrassler/bankbridge/pkg/query"
)

// Error messages returned to callers verbatim.
const (
	MsgNotFound      = "Requested resource not found in the system"
	MsgInternal      = "Internal Error from the system"
	MsgRemoteFailure = "Remote connection failed"
)

type handler struct {
	svc BankService
}

type errorResponse struct {
	Message string `json:"message"`
}

func (h *handler) handleStatic(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.HandleStatic(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func (h *handler) handleRemote(w http.ResponseWriter, r *http.Request) {
	views, err := h.svc.HandleRemote(r.Context(), r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func readyHandler(ready ReadyCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if ready != nil {
			if err := ready(r.Context()); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Readiness check failed")
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprint(w, "NOT READY")
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "OK")
	}
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Message: MsgNotFound})
}

// writeError maps an error to its status and fixed message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	logger := zerolog.Ctx(r.Context())

	var verr *query.ValidationError
	switch {
	case errors.As(err, &verr):
		logger.Debug().Str("reason", verr.Message).Msg("Rejected query")
		writeJSON(w, http.StatusBadRequest, errorResponse{Message: verr.Message})
	case errors.Is(err, pipeline.ErrRemoteFailed):
		logger.Error().Err(err).Msg("Remote aggregation failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: MsgRemoteFailure})
	default:
		logger.Error().Err(err).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Message: MsgInternal})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
