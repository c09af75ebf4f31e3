package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/Haymooed/BallsDex-Event-Package/internal/crafting"
	"github.com/Haymooed/BallsDex-Event-Package/internal/logger"
	"github.com/Haymooed/BallsDex-Event-Package/internal/player"
)

// CraftRequest identifies the player and the recipe to craft.
type CraftRequest struct {
	DiscordID string `json:"discord_id"`
	Username  string `json:"username"`
	Recipe    string `json:"recipe"`
}

// CraftResponse is the structured result of a craft attempt.
type CraftResponse struct {
	Success           bool   `json:"success"`
	Kind              string `json:"kind"`
	Message           string `json:"message"`
	Result            string `json:"result,omitempty"`
	RetryAfterSeconds int    `json:"retry_after_seconds,omitempty"`
}

// AutoCraftResponse reports a completed auto-craft session.
type AutoCraftResponse struct {
	Crafted     int           `json:"crafted"`
	LastAttempt CraftResponse `json:"last_attempt"`
}

func decodeCraftRequest(r *http.Request) (*CraftRequest, bool) {
	var req CraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, false
	}
	req.Recipe = strings.TrimSpace(req.Recipe)
	if req.DiscordID == "" || req.Recipe == "" {
		return nil, false
	}
	return &req, true
}

func toCraftResponse(outcome crafting.Outcome) CraftResponse {
	resp := CraftResponse{
		Success: outcome.Success,
		Kind:    string(outcome.Kind),
		Message: outcome.Message,
		Result:  outcome.Result,
	}
	if outcome.RetryAfter != nil {
		resp.RetryAfterSeconds = int(outcome.RetryAfter.Seconds())
	}
	return resp
}

// HandleCraft runs one manual craft attempt
func HandleCraft(craftingSvc crafting.Service, playerSvc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		req, ok := decodeCraftRequest(r)
		if !ok {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		p, err := playerSvc.Resolve(r.Context(), req.DiscordID, req.Username)
		if err != nil {
			log.Error("Failed to resolve player", "error", err, "discord_id", req.DiscordID)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		outcome, err := craftingSvc.Craft(r.Context(), p.ID, req.Recipe)
		if err != nil {
			log.Error("Craft attempt errored", "error", err, "recipe", req.Recipe)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, toCraftResponse(outcome))
	}
}

// HandleAutoCraft enables auto-crafting and runs the bounded loop
func HandleAutoCraft(craftingSvc crafting.Service, playerSvc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		req, ok := decodeCraftRequest(r)
		if !ok {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		p, err := playerSvc.Resolve(r.Context(), req.DiscordID, req.Username)
		if err != nil {
			log.Error("Failed to resolve player", "error", err, "discord_id", req.DiscordID)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		crafted, last, err := craftingSvc.CraftAuto(r.Context(), p.ID, req.Recipe)
		if err != nil {
			log.Error("Auto-craft session errored", "error", err, "recipe", req.Recipe)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		log.Info("Auto-craft session completed", "recipe", req.Recipe, "crafted", crafted)
		respondJSON(w, http.StatusOK, AutoCraftResponse{
			Crafted:     crafted,
			LastAttempt: toCraftResponse(last),
		})
	}
}

// HandleAutoCraftStop turns the per-recipe auto-craft flag off
func HandleAutoCraftStop(craftingSvc crafting.Service, playerSvc player.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		req, ok := decodeCraftRequest(r)
		if !ok {
			respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestError)
			return
		}

		p, err := playerSvc.Resolve(r.Context(), req.DiscordID, req.Username)
		if err != nil {
			log.Error("Failed to resolve player", "error", err, "discord_id", req.DiscordID)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		if err := craftingSvc.SetAutoCraft(r.Context(), p.ID, req.Recipe, false); err != nil {
			log.Error("Failed to stop auto-craft", "error", err, "recipe", req.Recipe)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}

		respondJSON(w, http.StatusOK, SuccessResponse{Message: "Auto-crafting turned off"})
	}
}

// HandleGetRecipes returns the recipe catalog
func HandleGetRecipes(craftingSvc crafting.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		recipes, err := craftingSvc.ListRecipes(r.Context())
		if err != nil {
			logger.FromContext(r.Context()).Error("Failed to list recipes", "error", err)
			status, msg := mapServiceErrorToUserMessage(err)
			respondError(w, status, msg)
			return
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{"recipes": recipes})
	}
}
