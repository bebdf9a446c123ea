package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gdugdh24/location-insights/internal/delivery/http/middleware"
	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gin-gonic/gin"
)

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{domain.ErrMissingCoordinates, http.StatusBadRequest, "missing_coordinates"},
		{fmt.Errorf("%w: schools", domain.ErrInvalidRadius), http.StatusBadRequest, "validation_error"},
		{domain.ErrProfileNotFound, http.StatusNotFound, "not_found"},
		{middleware.ErrInvalidToken, http.StatusUnauthorized, "unauthorized"},
		{domain.ErrForbidden, http.StatusForbidden, "forbidden"},
		{fmt.Errorf("%w: distance_profiles_one_active_per_property", domain.ErrConflict), http.StatusConflict, "conflict"},
		{domain.ErrProviderNotConfigured, http.StatusInternalServerError, "provider_not_configured"},
		{domain.ErrProviderUnavailable, http.StatusInternalServerError, "provider_unavailable"},
		{errors.New("boom"), http.StatusInternalServerError, ""},
	}

	for _, tt := range tests {
		status, resp := errorResponse(tt.err)
		if status != tt.status || resp.Code != tt.code {
			t.Errorf("errorResponse(%v) = %d %q, want %d %q", tt.err, status, resp.Code, tt.status, tt.code)
		}
	}
}

func TestCallerFromWithoutIdentity(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	if _, ok := callerFrom(c); ok {
		t.Fatal("expected no caller")
	}
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
}
