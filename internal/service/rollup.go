package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/models"
)

// RollupService recomputes per-day summaries from scratch. It is the
// only writer of the daily_summaries table; every other component
// treats the summary as a derived cache that is safe to discard and
// rebuild from entries.
type RollupService struct {
	db *gorm.DB
}

var _ IRollupService = (*RollupService)(nil)

// NewRollupService creates a new RollupService instance
func NewRollupService(db *gorm.DB) *RollupService {
	return &RollupService{db: db}
}

// RecomputeDay rebuilds the summary for the given (profile, date) pair
// by reading every entry on that day and summing each nutrient with nil
// counted as zero. A full recompute, not an incremental delta, so
// redundant calls are harmless. A day left with zero entries keeps its
// summary row with zeroed totals and entry_count 0, preserving the
// distinction between "not logged" (no row) and "logged then emptied".
func (s *RollupService) RecomputeDay(ctx context.Context, profileID uuid.UUID, day time.Time) error {
	day = models.DateOnly(day)

	var entries []models.ConsumptionEntry
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND log_date = ?", profileID, day).
		Find(&entries).Error; err != nil {
		return err
	}

	var summary models.DailySummary
	err := s.db.WithContext(ctx).
		Where("profile_id = ? AND log_date = ?", profileID, day).
		First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		summary = models.DailySummary{ProfileID: profileID, LogDate: day}
	} else if err != nil {
		return err
	}

	summary.TotalCalories = 0
	summary.TotalProteinG = 0
	summary.TotalCarbsG = 0
	summary.TotalFatG = 0
	summary.TotalSaturatesG = 0
	summary.TotalFiberG = 0
	summary.TotalSugarG = 0
	summary.TotalCholesterolMg = 0
	summary.TotalSodiumMg = 0
	summary.TotalPotassiumMg = 0
	summary.TotalWaterMl = 0
	summary.TotalCaffeineMg = 0

	add := func(total *float64, v *float64) {
		if v != nil {
			*total += *v
		}
	}
	for i := range entries {
		e := &entries[i]
		add(&summary.TotalCalories, e.Calories)
		add(&summary.TotalProteinG, e.ProteinG)
		add(&summary.TotalCarbsG, e.CarbsG)
		add(&summary.TotalFatG, e.FatG)
		add(&summary.TotalSaturatesG, e.SaturatesG)
		add(&summary.TotalFiberG, e.FiberG)
		add(&summary.TotalSugarG, e.SugarG)
		add(&summary.TotalCholesterolMg, e.CholesterolMg)
		add(&summary.TotalSodiumMg, e.SodiumMg)
		add(&summary.TotalPotassiumMg, e.PotassiumMg)
		add(&summary.TotalWaterMl, e.WaterMl)
		add(&summary.TotalCaffeineMg, e.CaffeineMg)
	}
	summary.EntryCount = len(entries)
	summary.UpdatedAt = time.Now().UTC()

	return s.db.WithContext(ctx).Save(&summary).Error
}
