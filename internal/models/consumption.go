package models

import (
	"time"

	"github.com/google/uuid"
)

// Meal-context labels. Inferred from time of day when the source
// carries no explicit meal label.
const (
	MealBreakfast = "breakfast"
	MealLunch     = "lunch"
	MealDinner    = "dinner"
	MealLateNight = "late_night"
	MealOther     = "other"
)

// ConsumptionEntry is one logged item for a profile. Entries are
// append-only: they are created by ingestion and removed only by the
// profile cascade delete. Nutrient fields are pointers because no
// source reports every field; nil means "not reported", zero means
// "reported as zero".
type ConsumptionEntry struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;index:idx_entries_profile_date,priority:1" json:"profile_id"`

	LoggedAt    time.Time `gorm:"not null" json:"logged_at"`
	LogDate     time.Time `gorm:"type:date;not null;index:idx_entries_profile_date,priority:2" json:"log_date"`
	MealContext string    `gorm:"size:20" json:"meal_context"`

	ItemName string `gorm:"size:255;not null" json:"item_name"`
	Brand    string `gorm:"size:255" json:"brand"`
	Category string `gorm:"size:50" json:"category"`

	Calories      *float64 `json:"calories"`
	ProteinG      *float64 `json:"protein_g"`
	CarbsG        *float64 `json:"carbs_g"`
	FatG          *float64 `json:"fat_g"`
	SaturatesG    *float64 `json:"saturates_g"`
	FiberG        *float64 `json:"fiber_g"`
	SugarG        *float64 `json:"sugar_g"`
	CholesterolMg *float64 `json:"cholesterol_mg"`
	SodiumMg      *float64 `json:"sodium_mg"`
	PotassiumMg   *float64 `json:"potassium_mg"`
	WaterMl       *float64 `json:"water_ml"`
	CaffeineMg    *float64 `json:"caffeine_mg"`

	ServingQty  *float64 `json:"serving_qty"`
	ServingSize string   `gorm:"size:50" json:"serving_size"`

	Source   string `gorm:"size:50" json:"source"`
	SourceID string `gorm:"size:255" json:"source_id"`
	Notes    string `gorm:"type:text" json:"notes"`

	CreatedAt time.Time `json:"created_at"`
}

// DailySummary is the per-(profile, date) rollup. Fully derived state:
// every total equals the sum of that nutrient across the day's entries
// with nil counted as zero, and it is always safe to discard and
// rebuild. Only the rollup recompute writes this table.
type DailySummary struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	ProfileID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_summaries_profile_date" json:"profile_id"`
	LogDate   time.Time `gorm:"type:date;not null;uniqueIndex:idx_summaries_profile_date" json:"log_date"`

	TotalCalories      float64 `json:"total_calories"`
	TotalProteinG      float64 `json:"total_protein_g"`
	TotalCarbsG        float64 `json:"total_carbs_g"`
	TotalFatG          float64 `json:"total_fat_g"`
	TotalSaturatesG    float64 `json:"total_saturates_g"`
	TotalFiberG        float64 `json:"total_fiber_g"`
	TotalSugarG        float64 `json:"total_sugar_g"`
	TotalCholesterolMg float64 `json:"total_cholesterol_mg"`
	TotalSodiumMg      float64 `json:"total_sodium_mg"`
	TotalPotassiumMg   float64 `json:"total_potassium_mg"`
	TotalWaterMl       float64 `json:"total_water_ml"`
	TotalCaffeineMg    float64 `json:"total_caffeine_mg"`

	EntryCount int       `gorm:"not null;default:0" json:"entry_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// DateOnly truncates t to its calendar day in UTC. Both LogDate columns
// store values normalized through this so day-level equality works the
// same on postgres and sqlite.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
