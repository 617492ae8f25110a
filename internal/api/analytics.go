package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/models"
	"github.com/digestlib/backend/internal/service"
)

// defaultMetrics is the metric list used when the caller supplies none.
const defaultMetrics = "calories,protein_g,carbs_g,fat_g"

// defaultAveragesMetrics mirrors the overview's core metric subset.
const defaultAveragesMetrics = "calories,protein_g,carbs_g,fat_g,fiber_g,sodium_mg,water_ml,caffeine_mg"

// AnalyticsHandler handles read-only analytics requests
type AnalyticsHandler struct {
	profileService   service.IProfileService
	analyticsService service.IAnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler
func NewAnalyticsHandler(profileService service.IProfileService, analyticsService service.IAnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		profileService:   profileService,
		analyticsService: analyticsService,
	}
}

// RegisterRoutes registers the analytics routes
func (h *AnalyticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	profiles := router.Group("/consumption/profiles/:id")
	{
		profiles.GET("/overview", h.Overview)
		profiles.GET("/trends", h.Trends)
		profiles.GET("/averages", h.Averages)
		profiles.GET("/favorites", h.Favorites)
		profiles.GET("/meal-patterns", h.MealPatterns)
		profiles.GET("/recent", h.Recent)
	}
}

// Overview returns the 30-day digest ending at ?today (default: today)
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}

	refDate := models.DateOnly(time.Now())
	if v := c.Query("today"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid today date, expected YYYY-MM-DD"})
			return
		}
		refDate = t
	}

	overview, err := h.analyticsService.Overview(c.Request.Context(), id, refDate)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute overview"})
		return
	}
	c.JSON(http.StatusOK, overview)
}

// Trends returns the dense per-day series for the requested metrics
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	trend, err := h.analyticsService.Trend(c.Request.Context(), id, start, end, metricList(c, defaultMetrics))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, trend)
}

// Averages returns per-logged-day averages for the requested metrics
func (h *AnalyticsHandler) Averages(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	averages, err := h.analyticsService.Averages(c.Request.Context(), id, start, end, metricList(c, defaultAveragesMetrics))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, averages)
}

// Favorites returns the most-logged foods in range
func (h *AnalyticsHandler) Favorites(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}
	limit, ok := limitParam(c, 20)
	if !ok {
		return
	}

	favorites, err := h.analyticsService.FavoriteFoods(c.Request.Context(), id, start, end, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute favorites"})
		return
	}
	c.JSON(http.StatusOK, favorites)
}

// MealPatterns returns the per-meal breakdown in range
func (h *AnalyticsHandler) MealPatterns(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}
	start, end, ok := dateRange(c)
	if !ok {
		return
	}

	patterns, err := h.analyticsService.MealPatterns(c.Request.Context(), id, start, end)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute meal patterns"})
		return
	}
	c.JSON(http.StatusOK, patterns)
}

// Recent returns the most recent entries, newest first
func (h *AnalyticsHandler) Recent(c *gin.Context) {
	id, ok := h.requireProfile(c)
	if !ok {
		return
	}
	limit, ok := limitParam(c, 20)
	if !ok {
		return
	}

	entries, err := h.analyticsService.RecentEntries(c.Request.Context(), id, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list entries"})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *AnalyticsHandler) requireProfile(c *gin.Context) (uuid.UUID, bool) {
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

// dateRange parses ?start and ?end with the default 30-day window
// ending today.
func dateRange(c *gin.Context) (time.Time, time.Time, bool) {
	end := models.DateOnly(time.Now())
	if v := c.Query("end"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end date, expected YYYY-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		end = t
	}
	start := end.AddDate(0, 0, -29)
	if v := c.Query("start"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start date, expected YYYY-MM-DD"})
			return time.Time{}, time.Time{}, false
		}
		start = t
	}
	return start, end, true
}

// metricList splits the ?metrics query, falling back to the default
func metricList(c *gin.Context, fallback string) []string {
	raw := c.DefaultQuery("metrics", fallback)
	parts := strings.Split(raw, ",")
	metrics := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			metrics = append(metrics, p)
		}
	}
	return metrics
}

// limitParam parses ?limit with bounds 1..100
func limitParam(c *gin.Context, fallback int) (int, bool) {
	raw := c.DefaultQuery("limit", strconv.Itoa(fallback))
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 100"})
		return 0, false
	}
	return limit, true
}
