package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gdugdh24/location-insights/internal/usecase/distanceprofile"
	"github.com/gin-gonic/gin"
)

type DistanceProfileHandler struct {
	service DistanceProfileService
}

func NewDistanceProfileHandler(service DistanceProfileService) *DistanceProfileHandler {
	return &DistanceProfileHandler{
		service: service,
	}
}

// Generate handles POST /properties/:propertyId/distance-profile
// @Summary Generate distance profile
// @Description Generate a new distance profile for a property, or refresh the active one
// @Tags distance-profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param propertyId path string true "Property ID"
// @Param request body GenerateProfileRequest false "Generation options"
// @Success 200 {object} domain.DistanceProfile
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /properties/{propertyId}/distance-profile [post]
func (h *DistanceProfileHandler) Generate(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req GenerateProfileRequest
	// An empty body means all defaults.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err)
		return
	}

	categories, err := toCategorySet(req.Categories)
	if err != nil {
		writeError(c, err)
		return
	}
	distances, err := toRadiusMap(req.Distances)
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := h.service.Generate(c.Request.Context(), caller, distanceprofile.GenerateParams{
		PropertyID:  c.Param("propertyId"),
		ProfileName: req.ProfileName,
		Categories:  categories,
		Distances:   distances,
		Priorities:  req.Priorities,
		Refresh:     req.Refresh,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetActive handles GET /properties/:propertyId/distance-profile
// @Summary Get active distance profile
// @Tags distance-profile
// @Security BearerAuth
// @Produce json
// @Param propertyId path string true "Property ID"
// @Success 200 {object} domain.DistanceProfile
// @Failure 404 {object} ErrorResponse
// @Router /properties/{propertyId}/distance-profile [get]
func (h *DistanceProfileHandler) GetActive(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	profile, err := h.service.GetActive(c.Request.Context(), caller, c.Param("propertyId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteActive handles DELETE /properties/:propertyId/distance-profile
// @Summary Delete active distance profile
// @Description Deleting a missing profile succeeds
// @Tags distance-profile
// @Security BearerAuth
// @Produce json
// @Param propertyId path string true "Property ID"
// @Success 200 {object} SuccessResponse
// @Router /properties/{propertyId}/distance-profile [delete]
func (h *DistanceProfileHandler) DeleteActive(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	if err := h.service.DeleteActive(c.Request.Context(), caller, c.Param("propertyId")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "distance profile deleted",
	})
}

// ListReports handles GET /properties/:propertyId/distance-profile/reports
// @Summary List distance profile history
// @Description All profiles of a property, newest first
// @Tags distance-profile
// @Security BearerAuth
// @Produce json
// @Param propertyId path string true "Property ID"
// @Success 200 {object} ProfileListResponse
// @Router /properties/{propertyId}/distance-profile/reports [get]
func (h *DistanceProfileHandler) ListReports(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	profiles, err := h.service.ListByProperty(c.Request.Context(), caller, c.Param("propertyId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProfileList(profiles))
}

// GetReport handles GET /properties/:propertyId/distance-profile/:reportId
// @Summary Get a distance profile report
// @Tags distance-profile
// @Security BearerAuth
// @Produce json
// @Param propertyId path string true "Property ID"
// @Param reportId path string true "Report ID"
// @Success 200 {object} domain.DistanceProfile
// @Failure 404 {object} ErrorResponse
// @Router /properties/{propertyId}/distance-profile/{reportId} [get]
func (h *DistanceProfileHandler) GetReport(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	profile, err := h.service.GetByID(c.Request.Context(), caller, h.scope(c), c.Param("reportId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// DeleteReport handles DELETE /properties/:propertyId/distance-profile/:reportId
// @Summary Delete a distance profile report
// @Tags distance-profile
// @Security BearerAuth
// @Produce json
// @Param propertyId path string true "Property ID"
// @Param reportId path string true "Report ID"
// @Success 200 {object} SuccessResponse
// @Router /properties/{propertyId}/distance-profile/{reportId} [delete]
func (h *DistanceProfileHandler) DeleteReport(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(c.Request.Context(), caller, h.scope(c), c.Param("reportId")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "distance profile deleted",
	})
}

// UpdateRadius handles POST /properties/:propertyId/distance-profile/:reportId/update-radius
// @Summary Update search radii
// @Description Merges radii and re-queries only the affected categories
// @Tags distance-profile
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param propertyId path string true "Property ID"
// @Param reportId path string true "Report ID"
// @Param request body UpdateRadiusRequest true "Radii"
// @Success 200 {object} domain.DistanceProfile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /properties/{propertyId}/distance-profile/{reportId}/update-radius [post]
func (h *DistanceProfileHandler) UpdateRadius(c *gin.Context) {
	updateRadius(c, h.service, h.scope(c), c.Param("reportId"))
}

// Summarize handles POST /properties/:propertyId/distance-profile/:reportId/summary
// @Summary Generate location summary
// @Tags distance-profile
// @Security BearerAuth
// @Produce json
// @Param propertyId path string true "Property ID"
// @Param reportId path string true "Report ID"
// @Success 200 {object} domain.DistanceProfile
// @Failure 404 {object} ErrorResponse
// @Router /properties/{propertyId}/distance-profile/{reportId}/summary [post]
func (h *DistanceProfileHandler) Summarize(c *gin.Context) {
	summarize(c, h.service, h.scope(c), c.Param("reportId"))
}

func (h *DistanceProfileHandler) scope(c *gin.Context) distanceprofile.Scope {
	return distanceprofile.Scope{PropertyID: c.Param("propertyId")}
}

func updateRadius(c *gin.Context, service DistanceProfileService, scope distanceprofile.Scope, id string) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req UpdateRadiusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	distances, err := toRadiusMap(req.Distances)
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := service.UpdateRadius(c.Request.Context(), caller, scope, id, distances, req.Refresh)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func summarize(c *gin.Context, service DistanceProfileService, scope distanceprofile.Scope, id string) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	profile, err := service.Summarize(c.Request.Context(), caller, scope, id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
