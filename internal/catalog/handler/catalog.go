package handler

import (
	"net/http"
	"strconv"

	apperrors "shopbooking/pkg/errors"
	httputil "shopbooking/pkg/http"
	"shopbooking/pkg/logger"
	"shopbooking/pkg/model"
)

type activeRequest struct {
	Active *bool `json:"active"`
}

type moveRequest struct {
	Direction model.MoveDirection `json:"direction"`
}

// activeOnly reads the optional ?active=true filter.
func activeOnly(r *http.Request) (bool, error) {
	raw := r.URL.Query().Get("active")
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.InvalidInput("invalid active parameter: " + raw)
	}
	return v, nil
}

func decodeActive(r *http.Request) (bool, error) {
	var req activeRequest
	if err := httputil.DecodeJSON(r, &req); err != nil {
		return false, err
	}
	if req.Active == nil {
		return false, apperrors.InvalidInput("active is required")
	}
	return *req.Active, nil
}

func writeError(log *logger.Logger, w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		log.Error("failed to write error response", "handler", handler, "operation", "WriteError", "error", writeErr)
	}
}
