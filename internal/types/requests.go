package types

// CreateProfileRequest creates a new tracked profile. Biometric fields
// are optional and feed only the derived age/BMI display.
type CreateProfileRequest struct {
	Name          string   `json:"name" binding:"required"`
	DateOfBirth   *string  `json:"date_of_birth"`
	WeightLbs     *float64 `json:"weight_lbs"`
	HeightInches  *float64 `json:"height_inches"`
	BiologicalSex *string  `json:"biological_sex"`
}

// UpdateProfileRequest updates profile fields; nil fields are left
// unchanged.
type UpdateProfileRequest struct {
	Name          *string  `json:"name"`
	DateOfBirth   *string  `json:"date_of_birth"`
	WeightLbs     *float64 `json:"weight_lbs"`
	HeightInches  *float64 `json:"height_inches"`
	BiologicalSex *string  `json:"biological_sex"`
}

// UpdateGoalsRequest replaces the profile's nutrient targets. Every
// target is independently optional.
type UpdateGoalsRequest struct {
	Calories   *float64 `json:"calories"`
	ProteinG   *float64 `json:"protein_g"`
	CarbsG     *float64 `json:"carbs_g"`
	FatG       *float64 `json:"fat_g"`
	FiberG     *float64 `json:"fiber_g"`
	WaterMl    *float64 `json:"water_ml"`
	CaffeineMg *float64 `json:"caffeine_mg"`
}
