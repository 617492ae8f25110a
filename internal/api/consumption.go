package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/service"
	"github.com/digestlib/backend/internal/types"
)

// ConsumptionHandler handles profile, goals, ingestion, and summary requests
type ConsumptionHandler struct {
	profileService   service.IProfileService
	ingestService    service.IIngestService
	analyticsService service.IAnalyticsService
}

// NewConsumptionHandler creates a new ConsumptionHandler
func NewConsumptionHandler(profileService service.IProfileService, ingestService service.IIngestService, analyticsService service.IAnalyticsService) *ConsumptionHandler {
	return &ConsumptionHandler{
		profileService:   profileService,
		ingestService:    ingestService,
		analyticsService: analyticsService,
	}
}

// RegisterRoutes registers the consumption routes
func (h *ConsumptionHandler) RegisterRoutes(router *gin.RouterGroup) {
	consumption := router.Group("/consumption")
	{
		consumption.POST("/profiles", h.CreateProfile)
		consumption.GET("/profiles", h.ListProfiles)
		consumption.GET("/profiles/:id", h.GetProfile)
		consumption.PUT("/profiles/:id", h.UpdateProfile)
		consumption.DELETE("/profiles/:id", h.DeleteProfile)
		consumption.GET("/profiles/:id/goals", h.GetGoals)
		consumption.PUT("/profiles/:id/goals", h.UpdateGoals)
		consumption.POST("/profiles/:id/ingest/snapcalorie", h.IngestSnapCalorie)
		consumption.GET("/profiles/:id/summary/:date", h.GetDailySummary)
		consumption.GET("/profiles/:id/summaries", h.ListSummaries)
	}
}

// CreateProfile creates a new profile
func (h *ConsumptionHandler) CreateProfile(c *gin.Context) {
	var req types.CreateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), &req)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, profile)
}

// ListProfiles lists all profiles
func (h *ConsumptionHandler) ListProfiles(c *gin.Context) {
	profiles, err := h.profileService.ListProfiles(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list profiles"})
		return
	}
	c.JSON(http.StatusOK, profiles)
}

// GetProfile returns one profile with derived age/BMI display fields
func (h *ConsumptionHandler) GetProfile(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	detail, err := h.profileService.GetProfileDetail(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// UpdateProfile updates profile fields
func (h *ConsumptionHandler) UpdateProfile(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var req types.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), id, &req)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// DeleteProfile deletes a profile and everything it owns
func (h *ConsumptionHandler) DeleteProfile(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	err := h.profileService.DeleteProfile(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete profile"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "profile deleted"})
}

// GetGoals returns the profile's goals
func (h *ConsumptionHandler) GetGoals(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	goals, err := h.profileService.GetGoals(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no goals set for this profile"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get goals"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

// UpdateGoals creates or replaces the profile's goals
func (h *ConsumptionHandler) UpdateGoals(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}

	var req types.UpdateGoalsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	goals, err := h.profileService.UpsertGoals(c.Request.Context(), id, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update goals"})
		return
	}
	c.JSON(http.StatusOK, goals)
}

// IngestSnapCalorie accepts a SnapCalorie CSV export as a multipart
// file upload and returns the structured ingestion outcome. The outcome
// is returned even when every row was skipped.
func (h *ConsumptionHandler) IngestSnapCalorie(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to open uploaded file"})
		return
	}
	defer file.Close()

	result, err := h.ingestService.IngestSnapCalorie(c.Request.Context(), id, file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetDailySummary returns the rollup for one date, 404 when the day was
// never logged.
func (h *ConsumptionHandler) GetDailySummary(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}
	day, err := time.Parse("2006-01-02", c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}

	summary, err := h.analyticsService.DailySummary(c.Request.Context(), id, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for this date"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get summary"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// ListSummaries lists rollups, optionally bounded by ?start and ?end
func (h *ConsumptionHandler) ListSummaries(c *gin.Context) {
	id, ok := profileID(c)
	if !ok {
		return
	}

	var start, end *time.Time
	if v := c.Query("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
			return
		}
		start = &t
	}
	if v := c.Query("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
			return
		}
		end = &t
	}

	summaries, err := h.analyticsService.Summaries(c.Request.Context(), id, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list summaries"})
		return
	}
	c.JSON(http.StatusOK, summaries)
}

// requireProfile parses the :id param and 404s when the profile does
// not exist.
func (h *ConsumptionHandler) requireProfile(c *gin.Context) (uuid.UUID, bool) {
	id, ok := profileID(c)
	if !ok {
		return uuid.Nil, false
	}
	_, err := h.profileService.GetProfile(c.Request.Context(), id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
		return uuid.Nil, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get profile"})
		return uuid.Nil, false
	}
	return id, true
}

// profileID parses the :id path param
func profileID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid profile id"})
		return uuid.Nil, false
	}
	return id, true
}
