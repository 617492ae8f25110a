package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/models"
)

func createEntry(t *testing.T, db *gorm.DB, profileID uuid.UUID, day time.Time, name string, calories, sodium *float64) {
	entry := models.ConsumptionEntry{
		ProfileID:   profileID,
		LoggedAt:    day.Add(12 * time.Hour),
		LogDate:     models.DateOnly(day),
		MealContext: models.MealLunch,
		ItemName:    name,
		Category:    "food",
		Calories:    calories,
		SodiumMg:    sodium,
		Source:      "manual",
	}
	require.NoError(t, db.Create(&entry).Error)
}

func TestRecomputeDaySumsWithNilAsZero(t *testing.T) {
	db := setupTestDB(t)
	profileID := createTestProfile(t, db)
	svc := NewRollupService(db)
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	createEntry(t, db, profileID, day, "oatmeal", float64Ptr(300), float64Ptr(150))
	createEntry(t, db, profileID, day, "black coffee", float64Ptr(5), nil)
	createEntry(t, db, profileID, day, "mystery snack", nil, float64Ptr(200))

	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))

	var summary models.DailySummary
	require.NoError(t, db.Where("profile_id = ? AND log_date = ?", profileID, day).First(&summary).Error)
	assert.Equal(t, 3, summary.EntryCount)
	assert.InDelta(t, 305.0, summary.TotalCalories, 0.001)
	assert.InDelta(t, 350.0, summary.TotalSodiumMg, 0.001)
	assert.InDelta(t, 0.0, summary.TotalProteinG, 0.001)
}

func TestRecomputeDayIsIdempotent(t *testing.T) {
	db := setupTestDB(t)
	profileID := createTestProfile(t, db)
	svc := NewRollupService(db)
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	createEntry(t, db, profileID, day, "oatmeal", float64Ptr(300), nil)

	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))

	var count int64
	require.NoError(t, db.Model(&models.DailySummary{}).
		Where("profile_id = ? AND log_date = ?", profileID, day).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var summary models.DailySummary
	require.NoError(t, db.Where("profile_id = ? AND log_date = ?", profileID, day).First(&summary).Error)
	assert.Equal(t, 1, summary.EntryCount)
	assert.InDelta(t, 300.0, summary.TotalCalories, 0.001)
}

func TestRecomputeDayPicksUpNewEntries(t *testing.T) {
	db := setupTestDB(t)
	profileID := createTestProfile(t, db)
	svc := NewRollupService(db)
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	createEntry(t, db, profileID, day, "oatmeal", float64Ptr(300), nil)
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))

	createEntry(t, db, profileID, day, "banana", float64Ptr(105), nil)
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))

	var summary models.DailySummary
	require.NoError(t, db.Where("profile_id = ? AND log_date = ?", profileID, day).First(&summary).Error)
	assert.Equal(t, 2, summary.EntryCount)
	assert.InDelta(t, 405.0, summary.TotalCalories, 0.001)
}

func TestRecomputeDayWithNoEntriesZeroesSummary(t *testing.T) {
	db := setupTestDB(t)
	profileID := createTestProfile(t, db)
	svc := NewRollupService(db)
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	createEntry(t, db, profileID, day, "oatmeal", float64Ptr(300), float64Ptr(150))
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))

	require.NoError(t, db.Where("profile_id = ? AND log_date = ?", profileID, models.DateOnly(day)).
		Delete(&models.ConsumptionEntry{}).Error)
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day))

	// The summary row survives with zeroed totals, marking the day as
	// "logged then emptied" rather than "never logged".
	var summary models.DailySummary
	require.NoError(t, db.Where("profile_id = ? AND log_date = ?", profileID, day).First(&summary).Error)
	assert.Equal(t, 0, summary.EntryCount)
	assert.InDelta(t, 0.0, summary.TotalCalories, 0.001)
	assert.InDelta(t, 0.0, summary.TotalSodiumMg, 0.001)
}

func TestRecomputeDayNormalizesTimestamp(t *testing.T) {
	db := setupTestDB(t)
	profileID := createTestProfile(t, db)
	svc := NewRollupService(db)
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	createEntry(t, db, profileID, day, "oatmeal", float64Ptr(300), nil)

	// Passing a mid-day timestamp must hit the same summary row.
	require.NoError(t, svc.RecomputeDay(context.Background(), profileID, day.Add(17*time.Hour+30*time.Minute)))

	var count int64
	require.NoError(t, db.Model(&models.DailySummary{}).Where("profile_id = ?", profileID).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	var summary models.DailySummary
	require.NoError(t, db.Where("profile_id = ?", profileID).First(&summary).Error)
	assert.True(t, summary.LogDate.Equal(day))
	assert.Equal(t, 1, summary.EntryCount)
}

func TestRecomputeDayScopedToProfile(t *testing.T) {
	db := setupTestDB(t)
	first := createTestProfile(t, db)
	second := createTestProfile(t, db)
	svc := NewRollupService(db)
	day := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)

	createEntry(t, db, first, day, "oatmeal", float64Ptr(300), nil)
	createEntry(t, db, second, day, "steak", float64Ptr(600), nil)

	require.NoError(t, svc.RecomputeDay(context.Background(), first, day))

	var summary models.DailySummary
	require.NoError(t, db.Where("profile_id = ?", first).First(&summary).Error)
	assert.InDelta(t, 300.0, summary.TotalCalories, 0.001)

	var count int64
	require.NoError(t, db.Model(&models.DailySummary{}).Where("profile_id = ?", second).Count(&count).Error)
	assert.EqualValues(t, 0, count)
}
