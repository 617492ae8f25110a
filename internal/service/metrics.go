package service

import (
	"math"

	"github.com/digestlib/backend/internal/models"
)

// MetricNames is the full set of nutrient metrics the analytics engine
// understands. Requested metric names outside this set are dropped.
var MetricNames = []string{
	"calories", "protein_g", "carbs_g", "fat_g", "saturates_g",
	"fiber_g", "sugar_g", "cholesterol_mg", "sodium_mg", "potassium_mg",
	"water_ml", "caffeine_mg",
}

// coreMetrics is the fixed subset used by the overview digest.
var coreMetrics = []string{
	"calories", "protein_g", "carbs_g", "fat_g", "fiber_g",
	"sodium_mg", "water_ml", "caffeine_mg",
}

var knownMetrics = func() map[string]bool {
	m := make(map[string]bool, len(MetricNames))
	for _, name := range MetricNames {
		m[name] = true
	}
	return m
}()

// validMetrics filters the requested names down to known metrics,
// preserving request order. Unknown names are silently dropped: partial
// results are more useful than a hard failure.
func validMetrics(requested []string) []string {
	valid := make([]string, 0, len(requested))
	for _, name := range requested {
		if knownMetrics[name] {
			valid = append(valid, name)
		}
	}
	return valid
}

// summaryMetric reads the given metric's running total off a summary.
func summaryMetric(s *models.DailySummary, metric string) float64 {
	switch metric {
	case "calories":
		return s.TotalCalories
	case "protein_g":
		return s.TotalProteinG
	case "carbs_g":
		return s.TotalCarbsG
	case "fat_g":
		return s.TotalFatG
	case "saturates_g":
		return s.TotalSaturatesG
	case "fiber_g":
		return s.TotalFiberG
	case "sugar_g":
		return s.TotalSugarG
	case "cholesterol_mg":
		return s.TotalCholesterolMg
	case "sodium_mg":
		return s.TotalSodiumMg
	case "potassium_mg":
		return s.TotalPotassiumMg
	case "water_ml":
		return s.TotalWaterMl
	case "caffeine_mg":
		return s.TotalCaffeineMg
	}
	return 0
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func float64Ptr(v float64) *float64 {
	return &v
}
