package service

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/models"
)

// SourceSnapCalorie tags entries created by the SnapCalorie CSV importer.
const SourceSnapCalorie = "snapcalorie"

// SnapCalorie export columns. Headers embed the unit in parentheses.
// Blank cells mean "not reported". The format carries no caffeine or
// water columns, so those fields are always nil for this source.
const (
	colDate        = "Date"
	colTime        = "Time"
	colFood        = "Food"
	colQty         = "Quantity"
	colUnit        = "Unit"
	colCalories    = "Calories (kcal)"
	colProtein     = "Protein (g)"
	colCarbs       = "Carbs (g)"
	colFat         = "Fat (g)"
	colSaturates   = "Saturates (g)"
	colFiber       = "Fiber (g)"
	colSugar       = "Sugar (g)"
	colCholesterol = "Cholesterol (mg)"
	colSodium      = "Sodium (mg)"
	colPotassium   = "Potassium (mg)"

	// Optional columns some exports carry; propagated directly when
	// present instead of being inferred.
	colMeal     = "Meal"
	colBrand    = "Brand"
	colCategory = "Category"
)

// snapCalorieTimeFormats are tried in order; first success wins.
var snapCalorieTimeFormats = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// IngestResult is the structured outcome of one ingestion run. It is
// returned even when every row failed.
type IngestResult struct {
	Inserted int      `json:"inserted"`
	Skipped  int      `json:"skipped"`
	Dates    []string `json:"dates"`
	Errors   []string `json:"errors"`
}

// IngestService normalizes external tabular exports into canonical
// consumption entries and triggers the per-day rollup recompute.
type IngestService struct {
	db     *gorm.DB
	rollup IRollupService
	locks  *recomputeLocks
	cache  *OverviewCache
}

var _ IIngestService = (*IngestService)(nil)

// NewIngestService creates a new IngestService instance. cache may be
// nil when no Redis is configured.
func NewIngestService(db *gorm.DB, rollup IRollupService, cache *OverviewCache) *IngestService {
	return &IngestService{
		db:     db,
		rollup: rollup,
		locks:  newRecomputeLocks(),
		cache:  cache,
	}
}

// IngestSnapCalorie parses a SnapCalorie CSV export and writes entries
// for the given profile. Rows are processed independently: a bad row is
// skipped with a diagnostic and never aborts the batch. After the batch
// insert, the rollup recompute runs once per distinct calendar date
// touched. No deduplication is performed: re-ingesting the same export
// re-inserts every row, so callers must avoid overlapping date ranges
// across repeated imports.
func (s *IngestService) IngestSnapCalorie(ctx context.Context, profileID uuid.UUID, r io.Reader) (*IngestResult, error) {
	result := &IngestResult{Dates: []string{}, Errors: []string{}}

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return result, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}

	var entries []models.ConsumptionEntry
	touched := make(map[time.Time]bool)

	// Row numbers are 1-indexed and include the header, so the first
	// data row is row 2.
	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: unreadable row - %v", rowNum, err))
			continue
		}

		entry, diag := s.normalizeRow(profileID, cols, record, rowNum)
		if diag != "" {
			result.Skipped++
			result.Errors = append(result.Errors, diag)
			continue
		}

		entries = append(entries, *entry)
		touched[entry.LogDate] = true
		result.Inserted++
	}

	if len(entries) > 0 {
		if err := s.db.WithContext(ctx).CreateInBatches(entries, 100).Error; err != nil {
			return nil, fmt.Errorf("failed to insert entries: %w", err)
		}
	}

	dates := make([]time.Time, 0, len(touched))
	for d := range touched {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	for _, d := range dates {
		unlock := s.locks.Lock(profileID, d)
		err := s.rollup.RecomputeDay(ctx, profileID, d)
		unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to recompute summary for %s: %w", d.Format("2006-01-02"), err)
		}
		result.Dates = append(result.Dates, d.Format("2006-01-02"))
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, profileID); err != nil {
			log.Printf("failed to invalidate overview cache for %s: %v", profileID, err)
		}
	}

	return result, nil
}

// normalizeRow converts one CSV record into a canonical entry. Returns
// a non-empty diagnostic instead of an entry when the row must be
// skipped. Unexpected failures are recovered into a generic diagnostic
// so the batch continues.
func (s *IngestService) normalizeRow(profileID uuid.UUID, cols map[string]int, record []string, rowNum int) (entry *models.ConsumptionEntry, diag string) {
	defer func() {
		if r := recover(); r != nil {
			entry = nil
			diag = fmt.Sprintf("Row %d: unexpected error - %v", rowNum, r)
		}
	}()

	field := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	itemName := field(colFood)
	if itemName == "" {
		return nil, fmt.Sprintf("Row %d: blank food name - skipped", rowNum)
	}

	loggedAt, err := parseSnapCalorieTimestamp(field(colDate), field(colTime))
	if err != nil {
		return nil, fmt.Sprintf("Row %d (%q): %v", rowNum, itemName, err)
	}
	logDate := models.DateOnly(loggedAt)

	mealContext := field(colMeal)
	if mealContext == "" {
		mealContext = inferMealContext(loggedAt)
	}
	category := field(colCategory)
	if category == "" {
		category = "food"
	}

	return &models.ConsumptionEntry{
		ProfileID:     profileID,
		LoggedAt:      loggedAt,
		LogDate:       logDate,
		MealContext:   mealContext,
		ItemName:      itemName,
		Brand:         field(colBrand),
		Category:      category,
		Calories:      parseOptionalFloat(field(colCalories)),
		ProteinG:      parseOptionalFloat(field(colProtein)),
		CarbsG:        parseOptionalFloat(field(colCarbs)),
		FatG:          parseOptionalFloat(field(colFat)),
		SaturatesG:    parseOptionalFloat(field(colSaturates)),
		FiberG:        parseOptionalFloat(field(colFiber)),
		SugarG:        parseOptionalFloat(field(colSugar)),
		CholesterolMg: parseOptionalFloat(field(colCholesterol)),
		SodiumMg:      parseOptionalFloat(field(colSodium)),
		PotassiumMg:   parseOptionalFloat(field(colPotassium)),
		ServingQty:    parseOptionalFloat(field(colQty)),
		ServingSize:   field(colUnit),
		Source:        SourceSnapCalorie,
	}, ""
}

// parseSnapCalorieTimestamp combines the separate date and time columns
// and tries each accepted layout in order.
func parseSnapCalorieTimestamp(dateStr, timeStr string) (time.Time, error) {
	combined := strings.TrimSpace(dateStr + " " + timeStr)
	for _, layout := range snapCalorieTimeFormats {
		if t, err := time.ParseInLocation(layout, combined, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse date/time: %q", combined)
}

// inferMealContext buckets a timestamp's hour of day into a coarse meal
// label. Fallback for sources that carry no explicit meal column.
func inferMealContext(loggedAt time.Time) string {
	switch hour := loggedAt.Hour(); {
	case hour >= 5 && hour < 10:
		return models.MealBreakfast
	case hour >= 10 && hour < 15:
		return models.MealLunch
	case hour >= 15 && hour < 21:
		return models.MealDinner
	case hour >= 21 && hour <= 23:
		return models.MealLateNight
	default:
		return models.MealOther
	}
}

// parseOptionalFloat parses a nutrient cell. Blank cells become nil,
// never zero: nil means "not reported", zero means "reported as zero".
// Cells that fail numeric parsing also become nil rather than aborting
// the row.
func parseOptionalFloat(value string) *float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil
	}
	return &f
}
