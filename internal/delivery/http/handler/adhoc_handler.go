package handler

import (
	"net/http"

	"github.com/gdugdh24/location-insights/internal/domain"
	"github.com/gdugdh24/location-insights/internal/usecase/distanceprofile"
	"github.com/gin-gonic/gin"
)

var adHocScope = distanceprofile.Scope{AdHoc: true}

type AdHocHandler struct {
	service DistanceProfileService
}

func NewAdHocHandler(service DistanceProfileService) *AdHocHandler {
	return &AdHocHandler{
		service: service,
	}
}

// Create handles POST /location-insights/adhoc
// @Summary Create ad-hoc distance profile
// @Description Generate a profile for arbitrary coordinates, or an address that is geocoded first
// @Tags location-insights
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body AdHocProfileRequest true "Location and options"
// @Success 201 {object} domain.DistanceProfile
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /location-insights/adhoc [post]
func (h *AdHocHandler) Create(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	var req AdHocProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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
		IsAdHoc:        true,
		AdHocAddress:   req.Address,
		AdHocLatitude:  req.Latitude,
		AdHocLongitude: req.Longitude,
		ProfileName:    req.ProfileName,
		Categories:     categories,
		Distances:      distances,
		Priorities:     req.Priorities,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// List handles GET /location-insights/adhoc
// @Summary List my ad-hoc profiles
// @Tags location-insights
// @Security BearerAuth
// @Produce json
// @Success 200 {object} ProfileListResponse
// @Router /location-insights/adhoc [get]
func (h *AdHocHandler) List(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	profiles, err := h.service.ListAdHoc(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, newProfileList(profiles))
}

// Get handles GET /location-insights/adhoc/:profileId
// @Summary Get an ad-hoc profile
// @Tags location-insights
// @Security BearerAuth
// @Produce json
// @Param profileId path string true "Profile ID"
// @Success 200 {object} domain.DistanceProfile
// @Failure 404 {object} ErrorResponse
// @Router /location-insights/adhoc/{profileId} [get]
func (h *AdHocHandler) Get(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	profile, err := h.service.GetByID(c.Request.Context(), caller, adHocScope, c.Param("profileId"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// Delete handles DELETE /location-insights/adhoc/:profileId
// @Summary Delete an ad-hoc profile
// @Tags location-insights
// @Security BearerAuth
// @Produce json
// @Param profileId path string true "Profile ID"
// @Success 200 {object} SuccessResponse
// @Router /location-insights/adhoc/{profileId} [delete]
func (h *AdHocHandler) Delete(c *gin.Context) {
	caller, ok := callerFrom(c)
	if !ok {
		return
	}

	if err := h.service.DeleteByID(c.Request.Context(), caller, adHocScope, c.Param("profileId")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "ad-hoc profile deleted",
	})
}

// UpdateRadius handles POST /location-insights/adhoc/:profileId/update-radius
// @Summary Update ad-hoc profile radii
// @Description Re-queries only categories whose radius changed, or every supplied one with refresh
// @Tags location-insights
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param profileId path string true "Profile ID"
// @Param request body UpdateRadiusRequest true "Radius overrides"
// @Success 200 {object} domain.DistanceProfile
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /location-insights/adhoc/{profileId}/update-radius [post]
func (h *AdHocHandler) UpdateRadius(c *gin.Context) {
	updateRadius(c, h.service, adHocScope, c.Param("profileId"))
}

// Summarize handles POST /location-insights/adhoc/:profileId/summary
// @Summary Summarize an ad-hoc profile
// @Tags location-insights
// @Security BearerAuth
// @Produce json
// @Param profileId path string true "Profile ID"
// @Success 200 {object} domain.DistanceProfile
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /location-insights/adhoc/{profileId}/summary [post]
func (h *AdHocHandler) Summarize(c *gin.Context) {
	summarize(c, h.service, adHocScope, c.Param("profileId"))
}

// Categories handles GET /location-insights/categories
// @Summary List categories
// @Description Category vocabulary with default flags and radii
// @Tags location-insights
// @Produce json
// @Success 200 {array} domain.CategoryInfo
// @Router /location-insights/categories [get]
func (h *AdHocHandler) Categories(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"categories":        domain.Vocabulary,
		"min_radius_meters": domain.MinRadiusMeters,
		"max_radius_meters": domain.MaxRadiusMeters,
	})
}
