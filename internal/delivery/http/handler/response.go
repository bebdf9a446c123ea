package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gdugdh24/location-insights/internal/delivery/http/middleware"
	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/infrastructure/obs"
	"github.com/gdugdh24/location-insights/internal/usecase/distanceprofile"
	"github.com/gin-gonic/gin"
)

// ErrorResponse represents error response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse represents success response
type SuccessResponse struct {
	Message string `json:"message"`
}

// writeError maps engine errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	status, resp := errorResponse(err)
	if status >= http.StatusInternalServerError {
		log.Printf("req_id=%s method=%s path=%s status=%d err=%v",
			obs.RequestID(c.Request.Context()), c.Request.Method, c.FullPath(), status, err)
	}
	c.JSON(status, resp)
}

func errorResponse(err error) (int, ErrorResponse) {
	switch {
	case errors.Is(err, domain.ErrMissingCoordinates):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "missing_coordinates"}
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation_error"}
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"}
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Code: "unauthorized"}
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, ErrorResponse{Error: "forbidden", Code: "forbidden"}
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict, ErrorResponse{Error: "concurrent update, retry the request", Code: "conflict"}
	case errors.Is(err, domain.ErrProviderNotConfigured):
		return http.StatusInternalServerError, ErrorResponse{Error: "location provider is not configured", Code: "provider_not_configured"}
	case errors.Is(err, domain.ErrProviderUnavailable):
		return http.StatusInternalServerError, ErrorResponse{Error: "location provider unavailable", Code: "provider_unavailable"}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error(), Code: "validation_error"})
}

// callerFrom reads the identity set by the auth middleware.
func callerFrom(c *gin.Context) (distanceprofile.Caller, bool) {
	realtorID := c.GetString(middleware.RealtorIDKey)
	if realtorID == "" {
		writeError(c, domain.ErrUnauthorized)
		return distanceprofile.Caller{}, false
	}
	return distanceprofile.Caller{
		RealtorID: realtorID,
		IsAdmin:   c.GetString(middleware.RoleKey) == middleware.RoleAdmin,
	}, true
}
