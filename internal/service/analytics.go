package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/models"
)

// TrendData is a dense date axis with per-metric series aligned to it.
// A nil value marks a day with no summary row: "ate nothing logged" is
// not the same as "ate zero".
type TrendData struct {
	Dates  []string              `json:"dates"`
	Series map[string][]*float64 `json:"series"`
}

// RollingAverages reports per-logged-day averages over a range. A nil
// average marks a metric with no readings rather than a misleading
// zero. DaysLogged and TotalDays let callers compute logging density.
type RollingAverages struct {
	Averages   map[string]*float64 `json:"averages"`
	DaysLogged int                 `json:"days_logged"`
	TotalDays  int                 `json:"total_days"`
}

// FavoriteFood is one group in the most-logged-foods breakdown.
type FavoriteFood struct {
	Food        string   `json:"food"`
	Count       int      `json:"count"`
	AvgCalories *float64 `json:"avg_calories"`
	AvgProteinG *float64 `json:"avg_protein_g"`
}

// MealPattern is one meal-context group with its top items.
type MealPattern struct {
	Meal        string   `json:"meal"`
	EntryCount  int      `json:"entry_count"`
	AvgCalories *float64 `json:"avg_calories"`
	TopFoods    []string `json:"top_foods"`
}

// MetricTrend is the current-vs-previous direction for one metric.
type MetricTrend struct {
	Direction string  `json:"direction"`
	Pct       float64 `json:"pct"`
}

// Period is an inclusive date range.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// SodiumDay is the day with the highest sodium total in a range.
type SodiumDay struct {
	Date     string  `json:"date"`
	SodiumMg float64 `json:"sodium_mg"`
}

// CalorieDay is the day with the lowest calorie total among logged days.
type CalorieDay struct {
	Date     string  `json:"date"`
	Calories float64 `json:"calories"`
}

// Overview is the fixed 30-day "state of you" digest.
type Overview struct {
	Period           Period                 `json:"period"`
	Averages         map[string]*float64    `json:"averages"`
	Trends           map[string]MetricTrend `json:"trends"`
	Goals            *models.ProfileGoals   `json:"goals"`
	DaysLogged       int                    `json:"days_logged"`
	TotalDays        int                    `json:"total_days"`
	Streak           int                    `json:"streak"`
	MostLoggedFood   *string                `json:"most_logged_food"`
	HighestSodiumDay *SodiumDay             `json:"highest_sodium_day"`
	LowestCalorieDay *CalorieDay            `json:"lowest_calorie_day"`
}

// AnalyticsService combines summaries and raw entries into trend
// series, rolling averages, breakdowns, and the overview digest. Every
// method is a read-only function of the stored data plus its arguments;
// reads run lock-free and may observe a summary mid-recompute, but a
// missing row is always "no data", never an error.
type AnalyticsService struct {
	db    *gorm.DB
	cache *OverviewCache
}

var _ IAnalyticsService = (*AnalyticsService)(nil)

// NewAnalyticsService creates a new AnalyticsService instance. cache
// may be nil when no Redis is configured.
func NewAnalyticsService(db *gorm.DB, cache *OverviewCache) *AnalyticsService {
	return &AnalyticsService{db: db, cache: cache}
}

// Trend returns a gap-free date axis over [start, end] and, per
// requested metric, values aligned to that axis with nil for unlogged
// days. Unknown metric names are dropped.
func (s *AnalyticsService) Trend(ctx context.Context, profileID uuid.UUID, start, end time.Time, metrics []string) (*TrendData, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)
	if start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	valid := validMetrics(metrics)

	var summaries []models.DailySummary
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND log_date >= ? AND log_date <= ?", profileID, start, end).
		Find(&summaries).Error; err != nil {
		return nil, err
	}
	byDate := make(map[string]*models.DailySummary, len(summaries))
	for i := range summaries {
		byDate[summaries[i].LogDate.Format("2006-01-02")] = &summaries[i]
	}

	trend := &TrendData{Series: make(map[string][]*float64, len(valid))}
	for _, m := range valid {
		trend.Series[m] = []*float64{}
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		key := d.Format("2006-01-02")
		trend.Dates = append(trend.Dates, key)
		summary := byDate[key]
		for _, m := range valid {
			if summary == nil {
				trend.Series[m] = append(trend.Series[m], nil)
			} else {
				trend.Series[m] = append(trend.Series[m], float64Ptr(summaryMetric(summary, m)))
			}
		}
	}
	return trend, nil
}

// Averages computes per-metric means over logged days only (summary
// rows with entry_count > 0), ignoring calendar days with no logging.
// Averages are rounded to one decimal place.
func (s *AnalyticsService) Averages(ctx context.Context, profileID uuid.UUID, start, end time.Time, metrics []string) (*RollingAverages, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)
	if start.After(end) {
		return nil, fmt.Errorf("start date %s is after end date %s", start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	valid := validMetrics(metrics)

	var summaries []models.DailySummary
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND log_date >= ? AND log_date <= ? AND entry_count > 0", profileID, start, end).
		Find(&summaries).Error; err != nil {
		return nil, err
	}

	result := &RollingAverages{
		Averages:   make(map[string]*float64, len(valid)),
		DaysLogged: len(summaries),
		TotalDays:  int(end.Sub(start).Hours()/24) + 1,
	}
	for _, m := range valid {
		if len(summaries) == 0 {
			result.Averages[m] = nil
			continue
		}
		var total float64
		for i := range summaries {
			total += summaryMetric(&summaries[i], m)
		}
		result.Averages[m] = float64Ptr(round1(total / float64(len(summaries))))
	}
	return result, nil
}

type favoriteRow struct {
	Food        string
	Count       int
	AvgCalories *float64
	AvgProteinG *float64
}

// FavoriteFoods groups entries by lower-cased item name so "Coffee" and
// "coffee" merge, ordered by descending count and truncated to limit.
// Ties in count keep the store's deterministic default order.
func (s *AnalyticsService) FavoriteFoods(ctx context.Context, profileID uuid.UUID, start, end time.Time, limit int) ([]FavoriteFood, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)

	var rows []favoriteRow
	if err := s.db.WithContext(ctx).
		Model(&models.ConsumptionEntry{}).
		Select("lower(item_name) AS food, COUNT(id) AS count, AVG(calories) AS avg_calories, AVG(protein_g) AS avg_protein_g").
		Where("profile_id = ? AND log_date >= ? AND log_date <= ?", profileID, start, end).
		Group("lower(item_name)").
		Order("COUNT(id) DESC").
		Limit(limit).
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	favorites := make([]FavoriteFood, 0, len(rows))
	for _, r := range rows {
		favorites = append(favorites, FavoriteFood{
			Food:        r.Food,
			Count:       r.Count,
			AvgCalories: roundPtr(r.AvgCalories),
			AvgProteinG: roundPtr(r.AvgProteinG),
		})
	}
	return favorites, nil
}

type mealRow struct {
	MealContext string
	EntryCount  int
	AvgCalories *float64
}

// MealPatterns groups entries by meal-context label, ordered by
// descending mean calories, with each group's top 3 item names by
// case-insensitive frequency.
func (s *AnalyticsService) MealPatterns(ctx context.Context, profileID uuid.UUID, start, end time.Time) ([]MealPattern, error) {
	start, end = models.DateOnly(start), models.DateOnly(end)

	var rows []mealRow
	if err := s.db.WithContext(ctx).
		Model(&models.ConsumptionEntry{}).
		Select("meal_context, COUNT(id) AS entry_count, AVG(calories) AS avg_calories").
		Where("profile_id = ? AND log_date >= ? AND log_date <= ?", profileID, start, end).
		Group("meal_context").
		Order("AVG(calories) DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	patterns := make([]MealPattern, 0, len(rows))
	for _, row := range rows {
		var topRows []favoriteRow
		if err := s.db.WithContext(ctx).
			Model(&models.ConsumptionEntry{}).
			Select("lower(item_name) AS food, COUNT(id) AS count").
			Where("profile_id = ? AND log_date >= ? AND log_date <= ? AND meal_context = ?", profileID, start, end, row.MealContext).
			Group("lower(item_name)").
			Order("COUNT(id) DESC").
			Limit(3).
			Scan(&topRows).Error; err != nil {
			return nil, err
		}
		topFoods := make([]string, 0, len(topRows))
		for _, t := range topRows {
			topFoods = append(topFoods, t.Food)
		}
		patterns = append(patterns, MealPattern{
			Meal:        row.MealContext,
			EntryCount:  row.EntryCount,
			AvgCalories: roundPtr(row.AvgCalories),
			TopFoods:    topFoods,
		})
	}
	return patterns, nil
}

// DailySummary returns the rollup for one (profile, date) pair.
// gorm.ErrRecordNotFound surfaces when the day was never logged.
func (s *AnalyticsService) DailySummary(ctx context.Context, profileID uuid.UUID, day time.Time) (*models.DailySummary, error) {
	var summary models.DailySummary
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND log_date = ?", profileID, models.DateOnly(day)).
		First(&summary).Error; err != nil {
		return nil, err
	}
	return &summary, nil
}

// Summaries lists the profile's rollups ordered by date, optionally
// bounded by an inclusive range.
func (s *AnalyticsService) Summaries(ctx context.Context, profileID uuid.UUID, start, end *time.Time) ([]models.DailySummary, error) {
	q := s.db.WithContext(ctx).Where("profile_id = ?", profileID)
	if start != nil {
		q = q.Where("log_date >= ?", models.DateOnly(*start))
	}
	if end != nil {
		q = q.Where("log_date <= ?", models.DateOnly(*end))
	}
	summaries := []models.DailySummary{}
	if err := q.Order("log_date").Find(&summaries).Error; err != nil {
		return nil, err
	}
	return summaries, nil
}

// RecentEntries returns the most recent entries, newest first.
func (s *AnalyticsService) RecentEntries(ctx context.Context, profileID uuid.UUID, limit int) ([]models.ConsumptionEntry, error) {
	entries := []models.ConsumptionEntry{}
	if err := s.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("logged_at DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// Overview builds the 30-day digest ending at refDate: core-metric
// averages compared against the preceding 30-day window, the logging
// streak, and highlight days. Results are cached per (profile, date)
// when a cache is configured.
func (s *AnalyticsService) Overview(ctx context.Context, profileID uuid.UUID, refDate time.Time) (*Overview, error) {
	refDate = models.DateOnly(refDate)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, profileID, refDate)
		if err != nil {
			log.Printf("overview cache read failed for %s: %v", profileID, err)
		} else if cached != nil {
			return cached, nil
		}
	}

	end := refDate
	start := end.AddDate(0, 0, -29)
	prevEnd := end.AddDate(0, 0, -30)
	prevStart := end.AddDate(0, 0, -59)

	current, err := s.Averages(ctx, profileID, start, end, coreMetrics)
	if err != nil {
		return nil, err
	}
	previous, err := s.Averages(ctx, profileID, prevStart, prevEnd, coreMetrics)
	if err != nil {
		return nil, err
	}

	var goals *models.ProfileGoals
	var goalsRow models.ProfileGoals
	err = s.db.WithContext(ctx).Where("profile_id = ?", profileID).First(&goalsRow).Error
	if err == nil {
		goals = &goalsRow
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// Direction per metric vs the prior period. Missing data or a
	// non-positive previous average defaults to flat with 0% so the
	// percentage is always well defined.
	trends := make(map[string]MetricTrend, len(coreMetrics))
	for _, m := range coreMetrics {
		cur, prv := current.Averages[m], previous.Averages[m]
		if cur != nil && prv != nil && *prv > 0 {
			pct := round1((*cur - *prv) / *prv * 100)
			direction := "flat"
			if pct > 0 {
				direction = "up"
			} else if pct < 0 {
				direction = "down"
			}
			if pct < 0 {
				pct = -pct
			}
			trends[m] = MetricTrend{Direction: direction, Pct: pct}
		} else {
			trends[m] = MetricTrend{Direction: "flat", Pct: 0}
		}
	}

	streak, err := s.loggingStreak(ctx, profileID, refDate)
	if err != nil {
		return nil, err
	}

	var mostLogged *string
	favorites, err := s.FavoriteFoods(ctx, profileID, start, end, 1)
	if err != nil {
		return nil, err
	}
	if len(favorites) > 0 {
		mostLogged = &favorites[0].Food
	}

	// Highlight days come from logged days only: an unlogged day is not
	// a qualifying minimum.
	var logged []models.DailySummary
	if err := s.db.WithContext(ctx).
		Where("profile_id = ? AND log_date >= ? AND log_date <= ? AND entry_count > 0", profileID, start, end).
		Order("log_date").
		Find(&logged).Error; err != nil {
		return nil, err
	}
	var highestSodium *SodiumDay
	var lowestCalorie *CalorieDay
	for i := range logged {
		day := &logged[i]
		if highestSodium == nil || day.TotalSodiumMg > highestSodium.SodiumMg {
			highestSodium = &SodiumDay{Date: day.LogDate.Format("2006-01-02"), SodiumMg: day.TotalSodiumMg}
		}
		if lowestCalorie == nil || day.TotalCalories < lowestCalorie.Calories {
			lowestCalorie = &CalorieDay{Date: day.LogDate.Format("2006-01-02"), Calories: day.TotalCalories}
		}
	}

	overview := &Overview{
		Period:           Period{Start: start.Format("2006-01-02"), End: end.Format("2006-01-02")},
		Averages:         current.Averages,
		Trends:           trends,
		Goals:            goals,
		DaysLogged:       current.DaysLogged,
		TotalDays:        current.TotalDays,
		Streak:           streak,
		MostLoggedFood:   mostLogged,
		HighestSodiumDay: highestSodium,
		LowestCalorieDay: lowestCalorie,
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, profileID, refDate, overview); err != nil {
			log.Printf("overview cache write failed for %s: %v", profileID, err)
		}
	}
	return overview, nil
}

// loggingStreak walks backward one calendar day at a time from refDate,
// counting while a summary exists with entry_count > 0. The reference
// date itself must be logged for the streak to be nonzero.
func (s *AnalyticsService) loggingStreak(ctx context.Context, profileID uuid.UUID, refDate time.Time) (int, error) {
	streak := 0
	for check := refDate; ; check = check.AddDate(0, 0, -1) {
		var summary models.DailySummary
		err := s.db.WithContext(ctx).
			Where("profile_id = ? AND log_date = ?", profileID, check).
			First(&summary).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return streak, nil
		}
		if err != nil {
			return 0, err
		}
		if summary.EntryCount == 0 {
			return streak, nil
		}
		streak++
	}
}

func roundPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	return float64Ptr(round1(*v))
}
