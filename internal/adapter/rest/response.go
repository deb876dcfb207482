package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Abdurahmanit/GroupProject/car-listing-service/internal/listing/domain"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

type listResponse struct {
	Success bool               `json:"success"`
	Count   int                `json:"count"`
	Cars    []domain.Transport `json:"cars"`
}

type itemResponse struct {
	Success bool             `json:"success"`
	Car     domain.Transport `json:"car"`
}

type messageResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	CarID             string `json:"car_id,omitempty"`
	ExternalListingID string `json:"external_listing_id,omitempty"`
}

func (h *ListingHandler) writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *ListingHandler) badRequest(w http.ResponseWriter, op, message string) {
	h.rejectBody(w, op, http.StatusBadRequest, message)
}

func (h *ListingHandler) rejectBody(w http.ResponseWriter, op string, status int, message string) {
	kind := "bad_request"
	if status == http.StatusRequestEntityTooLarge {
		kind = "body_too_large"
	}
	h.metrics.ObserveError(op, kind)
	h.writeJSON(w, status, errorResponse{Error: message})
}

// writeError maps an operation error onto its HTTP status and body.
func (h *ListingHandler) writeError(w http.ResponseWriter, op string, err error) {
	status, kind, body := classify(err)
	h.metrics.ObserveError(op, kind)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Operation failed", zap.String("operation", op), zap.Error(err))
	} else {
		h.logger.Debug("Operation rejected", zap.String("operation", op), zap.Error(err))
	}
	h.writeJSON(w, status, body)
}

func classify(err error) (int, string, errorResponse) {
	var vErr *domain.ValidationError
	var pErr *domain.ExternalPublishError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, "validation", errorResponse{Error: "Validation failed", Details: vErr.Errors}
	case errors.Is(err, domain.ErrValidationFailed):
		return http.StatusBadRequest, "validation", errorResponse{Error: "Validation failed"}
	case errors.Is(err, domain.ErrInvalidID):
		return http.StatusBadRequest, "invalid_id", errorResponse{Error: "Invalid car ID"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "not_found", errorResponse{Error: "Car not found"}
	case errors.Is(err, domain.ErrStoreUnavailable):
		return http.StatusInternalServerError, "store_unavailable", errorResponse{Error: "Database connection failed"}
	case errors.As(err, &pErr):
		return http.StatusBadGateway, "publish_failed", errorResponse{Error: pErr.Message}
	default:
		return http.StatusInternalServerError, "internal", errorResponse{Error: "Internal server error"}
	}
}
