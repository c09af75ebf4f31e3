package handler

import (
	"net/http"
	"strconv"

	"github.com/Haymooed/BallsDex-Event-Package/internal/craftlog"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/player"
)

// HandleGetCraftHistory returns a player's most recent craft attempts
func HandleGetCraftHistory(logSvc craftlog.Service, playerSvc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		discordID := r.URL.Query().Get("discord_id")
		if discordID == "" {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
				return
			}
			limit = parsed
		}

		p, err := playerSvc.Lookup(r.Context(), discordID)
		if err != nil {
			log.Error("Failed to look up player", "error", err, "discord_id", discordID)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}
		if p == nil {
			respondError(w, http.StatusBadRequest, ErrMsgPlayerNotFoundError)
			return
		}

		attempts, err := logSvc.History(r.Context(), p.ID, limit)
		if err != nil {
			log.Error("Failed to load craft history", "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, map[string]interface{}{"attempts": attempts})
	}
}
