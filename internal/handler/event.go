package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Haymooed/BallsDex-Event-Package/internal/event"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
)

// HandleGetEvent returns one enabled event by name
func HandleGetEvent(eventSvc event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := chi.URLParam(r, "name")
		if name == "" {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		summary, err := eventSvc.GetEvent(r.Context(), name)
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to get event", "error", err, "name", name)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}
		if summary == nil {
			respondError(w, http.StatusNotFound, ErrMsgEventNotFoundError)
			return
		}

		respondJSON(w, http.StatusOK, summary)
	}
}

// HandleListActiveEvents returns the currently running events
func HandleListActiveEvents(eventSvc event.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := eventSvc.ListActiveEvents(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list events", "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"events": events})
	}
}
