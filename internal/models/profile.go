package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is a person being tracked. It owns all consumption entries,
// daily summaries, and goals for its ID.
type Profile struct {
	ID            uuid.UUID  `gorm:"type:varchar(36);primarykey" json:"id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	DateOfBirth   *time.Time `json:"date_of_birth"`
	WeightLbs     *float64   `json:"weight_lbs"`
	HeightInches  *float64   `json:"height_inches"`
	BiologicalSex string     `gorm:"size:20" json:"biological_sex"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// BeforeCreate assigns a UUID when one was not supplied.
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProfileGoals holds per-profile nutrient targets, at most one row per
// profile. Every target is independently optional; goals are only a
// comparison baseline for analytics.
type ProfileGoals struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	ProfileID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex" json:"profile_id"`
	Calories   *float64  `json:"calories"`
	ProteinG   *float64  `json:"protein_g"`
	CarbsG     *float64  `json:"carbs_g"`
	FatG       *float64  `json:"fat_g"`
	FiberG     *float64  `json:"fiber_g"`
	WaterMl    *float64  `json:"water_ml"`
	CaffeineMg *float64  `json:"caffeine_mg"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
