package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Haymooed/BallsDex-Event-Package/internal/domain"
)

// Standard response types for consistent API responses

// SuccessResponse represents a simple successful operation message
type SuccessResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response with the given status code and payload
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// Headers are already sent, nothing more to do for the client
		slog.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{Error: message})
}

// User-facing error messages for service errors
const (
	ErrMsgGenericServerError  = "Something went wrong"
	ErrMsgUnknownError        = "Unknown error"
	ErrMsgInvalidRequestError = "Invalid request. Please check your inputs."

	ErrMsgPlayerNotFoundError    = "Player not found"
	ErrMsgRecipeNotFoundError    = "Recipe not found"
	ErrMsgCraftingDisabledError  = "Crafting is currently disabled"
	ErrMsgRecipeDisabledError    = "That recipe is currently disabled"
	ErrMsgAutoDisabledError      = "Auto-crafting is currently disabled"
	ErrMsgRecipeNoAutoError      = "That recipe cannot be auto-crafted"
	ErrMsgInsufficientItemsError = "Not enough ingredients"
	ErrMsgEventNotFoundError     = "Event not found"
)

// mapServiceErrorToUserMessage maps domain errors to user-friendly HTTP
// responses.
func mapServiceErrorToUserMessage(err error) (int, string) {
	if err == nil {
		return http.StatusInternalServerError, ErrMsgUnknownError
	}

	switch {
	case errors.Is(err, domain.ErrPlayerNotFound):
		return http.StatusBadRequest, ErrMsgPlayerNotFoundError
	case errors.Is(err, domain.ErrRecipeNotFound):
		return http.StatusBadRequest, ErrMsgRecipeNotFoundError
	case errors.Is(err, domain.ErrCraftingDisabled):
		return http.StatusForbidden, ErrMsgCraftingDisabledError
	case errors.Is(err, domain.ErrRecipeDisabled):
		return http.StatusForbidden, ErrMsgRecipeDisabledError
	case errors.Is(err, domain.ErrAutoCraftingDisabled):
		return http.StatusForbidden, ErrMsgAutoDisabledError
	case errors.Is(err, domain.ErrRecipeAutoDisabled):
		return http.StatusForbidden, ErrMsgRecipeNoAutoError
	case errors.Is(err, domain.ErrInsufficientQuantity):
		return http.StatusBadRequest, ErrMsgInsufficientItemsError
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, ErrMsgInvalidRequestError
	}

	return http.StatusInternalServerError, ErrMsgGenericServerError
}
