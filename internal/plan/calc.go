// Package plan computes nutrition targets and drives AI diet-plan
// generation, both directly and as background jobs.
package plan

import (
	"math"

	"github.com/biotrack/biotrack-cli/internal/model"
)

// Default profile values used when the user never filled in their data.
const (
	defaultWeight = 70.0 // kg
	defaultHeight = 170.0
	defaultAge    = 30
	defaultGender = "male"
)

// BMR computes basal metabolic rate with the Mifflin-St Jeor equation.
func BMR(weight, height float64, age int, gender string) float64 {
	base := 10*weight + 6.25*height - 5*float64(age)
	if gender == "female" {
		return base - 161
	}
	return base + 5
}

// activityMultiplier maps the activity level to its TDEE factor. Unknown
// levels get the lightly-active factor.
func activityMultiplier(level string) float64 {
	switch level {
	case "sedentary":
		return 1.2
	case "lightly_active":
		return 1.375
	case "very_active":
		return 1.725
	case "extremely_active":
		return 1.9
	default:
		return 1.375
	}
}

// TDEE computes total daily energy expenditure from a rounded BMR.
func TDEE(bmr float64, activityLevel string) int {
	return int(math.Round(bmr * activityMultiplier(activityLevel)))
}

// TargetCalories applies the goal delta to the TDEE: a 500 kcal deficit for
// weight loss, a 300 kcal surplus for muscle gain, no change otherwise.
func TargetCalories(tdee int, goal string) (target, delta int) {
	switch goal {
	case "weight_loss":
		return tdee - 500, -500
	case "muscle_gain":
		return tdee + 300, 300
	default:
		return tdee, 0
	}
}

// Macros splits the calorie target into protein/carb/fat gram targets.
// Meal preference overrides the goal-based split; carbs absorb the
// remainder and never go negative.
func Macros(targetCalories int, goal, preference string, weight float64) model.MacroTargets {
	var proteinPerKg, fatPct float64

	switch preference {
	case "high_protein":
		proteinPerKg, fatPct = 2.2, 0.20
	case "low_carb":
		proteinPerKg, fatPct = 1.8, 0.45
	case "vegetarian":
		proteinPerKg, fatPct = 1.4, 0.30
	default:
		switch goal {
		case "weight_loss":
			proteinPerKg, fatPct = 2.0, 0.25
		case "muscle_gain":
			proteinPerKg, fatPct = 2.2, 0.25
		default:
			proteinPerKg, fatPct = 1.6, 0.30
		}
	}

	proteinGrams := int(math.Round(weight * proteinPerKg))
	proteinCalories := proteinGrams * 4
	fatCalories := int(math.Round(float64(targetCalories) * fatPct))
	fatGrams := int(math.Round(float64(fatCalories) / 9))
	carbCalories := targetCalories - proteinCalories - fatCalories
	if carbCalories < 0 {
		carbCalories = 0
	}
	carbGrams := int(math.Round(float64(carbCalories) / 4))

	pct := func(calories int) int {
		if targetCalories == 0 {
			return 0
		}
		return int(math.Round(float64(calories) / float64(targetCalories) * 100))
	}

	return model.MacroTargets{
		Protein: model.MacroTarget{Grams: proteinGrams, Percentage: pct(proteinCalories)},
		Carbs:   model.MacroTarget{Grams: carbGrams, Percentage: pct(carbCalories)},
		Fats:    model.MacroTarget{Grams: fatGrams, Percentage: pct(fatCalories)},
	}
}

// Targets computes the full energy budget for a profile, falling back to
// defaults for missing physicals.
func Targets(p model.Profile) model.CalorieTargets {
	weight, height, age, gender := p.Weight, p.Height, p.Age, p.Gender
	if weight == 0 {
		weight = defaultWeight
	}
	if height == 0 {
		height = defaultHeight
	}
	if age == 0 {
		age = defaultAge
	}
	if gender == "" {
		gender = defaultGender
	}

	bmr := int(math.Round(BMR(weight, height, age, gender)))
	tdee := TDEE(float64(bmr), p.ActivityLevel)
	target, delta := TargetCalories(tdee, p.FitnessGoal)

	return model.CalorieTargets{
		BMR:              bmr,
		TDEE:             tdee,
		Target:           target,
		DeficitOrSurplus: delta,
	}
}

// BMI computes body mass index from a profile, using the same defaults as
// Targets.
func BMI(p model.Profile) float64 {
	weight, height := p.Weight, p.Height
	if weight == 0 {
		weight = defaultWeight
	}
	if height == 0 {
		height = defaultHeight
	}
	meters := height / 100
	return weight / (meters * meters)
}
