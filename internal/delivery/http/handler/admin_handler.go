package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	service DistanceProfileService
}

func NewAdminHandler(service DistanceProfileService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// CleanupProfiles handles POST /admin/cleanup-profiles
// @Summary Clean up old profiles
// @Description Deactivates stale ad-hoc profiles and deletes expired inactive ones
// @Tags admin
// @Security BearerAuth
// @Produce json
// @Success 200 {object} distanceprofile.CleanupResult
// @Failure 403 {object} ErrorResponse
// @Router /admin/cleanup-profiles [post]
func (h *AdminHandler) CleanupProfiles(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	result, err := h.service.CleanupOldDeactivated(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
