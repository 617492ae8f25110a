package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/digestlib/backend/internal/models"
	"github.com/digestlib/backend/internal/types"
)

// ProfileDetail is a profile with its derived display fields.
type ProfileDetail struct {
	models.Profile
	Age *int     `json:"age"`
	BMI *float64 `json:"bmi"`
}

// ProfileService handles profile and goals operations
type ProfileService struct {
	db *gorm.DB
}

var _ IProfileService = (*ProfileService)(nil)

// NewProfileService creates a new ProfileService instance
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// CreateProfile creates a new tracked profile
func (s *ProfileService) CreateProfile(ctx context.Context, req *types.CreateProfileRequest) (*models.Profile, error) {
	profile := models.Profile{Name: req.Name}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth %q: %w", *req.DateOfBirth, err)
		}
		profile.DateOfBirth = &dob
	}
	profile.WeightLbs = req.WeightLbs
	profile.HeightInches = req.HeightInches
	if req.BiologicalSex != nil {
		profile.BiologicalSex = *req.BiologicalSex
	}

	if err := s.db.WithContext(ctx).Create(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// ListProfiles lists all profiles
func (s *ProfileService) ListProfiles(ctx context.Context) ([]models.Profile, error) {
	profiles := []models.Profile{}
	if err := s.db.WithContext(ctx).Order("created_at").Find(&profiles).Error; err != nil {
		return nil, err
	}
	return profiles, nil
}

// GetProfile retrieves a profile by ID
func (s *ProfileService) GetProfile(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetProfileDetail retrieves a profile with its derived age and BMI.
func (s *ProfileService) GetProfileDetail(ctx context.Context, id uuid.UUID) (*ProfileDetail, error) {
	profile, err := s.GetProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	detail := &ProfileDetail{Profile: *profile}
	if profile.DateOfBirth != nil {
		age := yearsSince(*profile.DateOfBirth, time.Now())
		detail.Age = &age
	}
	if profile.WeightLbs != nil && profile.HeightInches != nil && *profile.HeightInches > 0 {
		bmi := round1(703 * *profile.WeightLbs / (*profile.HeightInches * *profile.HeightInches))
		detail.BMI = &bmi
	}
	return detail, nil
}

// UpdateProfile updates the provided fields, leaving nil ones unchanged
func (s *ProfileService) UpdateProfile(ctx context.Context, id uuid.UUID, req *types.UpdateProfileRequest) (*models.Profile, error) {
	var profile models.Profile
	if err := s.db.WithContext(ctx).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}

	if req.Name != nil {
		profile.Name = *req.Name
	}
	if req.DateOfBirth != nil {
		dob, err := time.Parse("2006-01-02", *req.DateOfBirth)
		if err != nil {
			return nil, fmt.Errorf("invalid date_of_birth %q: %w", *req.DateOfBirth, err)
		}
		profile.DateOfBirth = &dob
	}
	if req.WeightLbs != nil {
		profile.WeightLbs = req.WeightLbs
	}
	if req.HeightInches != nil {
		profile.HeightInches = req.HeightInches
	}
	if req.BiologicalSex != nil {
		profile.BiologicalSex = *req.BiologicalSex
	}

	if err := s.db.WithContext(ctx).Save(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteProfile deletes a profile and cascades to its entries,
// summaries, and goals in one transaction.
func (s *ProfileService) DeleteProfile(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.ConsumptionEntry{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.DailySummary{}).Error; err != nil {
			return err
		}
		if err := tx.Where("profile_id = ?", id).Delete(&models.ProfileGoals{}).Error; err != nil {
			return err
		}
		return tx.Delete(&profile).Error
	})
}

// UpsertGoals creates or replaces the profile's single goals row.
func (s *ProfileService) UpsertGoals(ctx context.Context, id uuid.UUID, req *types.UpdateGoalsRequest) (*models.ProfileGoals, error) {
	var goals models.ProfileGoals
	err := s.db.WithContext(ctx).Where("profile_id = ?", id).First(&goals).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goals = models.ProfileGoals{ProfileID: id}
	} else if err != nil {
		return nil, err
	}

	goals.Calories = req.Calories
	goals.ProteinG = req.ProteinG
	goals.CarbsG = req.CarbsG
	goals.FatG = req.FatG
	goals.FiberG = req.FiberG
	goals.WaterMl = req.WaterMl
	goals.CaffeineMg = req.CaffeineMg

	if err := s.db.WithContext(ctx).Save(&goals).Error; err != nil {
		return nil, err
	}
	return &goals, nil
}

// GetGoals retrieves the profile's goals row
func (s *ProfileService) GetGoals(ctx context.Context, id uuid.UUID) (*models.ProfileGoals, error) {
	var goals models.ProfileGoals
	if err := s.db.WithContext(ctx).Where("profile_id = ?", id).First(&goals).Error; err != nil {
		return nil, err
	}
	return &goals, nil
}

func yearsSince(birth, now time.Time) int {
	years := now.Year() - birth.Year()
	anniversary := birth.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	return years
}
