package model

// Profile holds the physical data and preferences a diet plan is built
// from. Zero-value fields fall back to generator defaults.
type Profile struct {
	UserID         string   `json:"user_id"`
	Weight         float64  `json:"weight"` // kg
	Height         float64  `json:"height"` // cm
	Age            int      `json:"age"`
	Gender         string   `json:"gender"` // "male" or "female"
	FitnessGoal    string   `json:"fitness_goal"`
	ActivityLevel  string   `json:"activity_level"`
	MealPreference string   `json:"meal_preference"`
	Allergies      []string `json:"allergies,omitempty"`
}

// CalorieTargets holds the computed energy budget for a plan.
type CalorieTargets struct {
	BMR              int `json:"bmr"`
	TDEE             int `json:"tdee"`
	Target           int `json:"target"`
	DeficitOrSurplus int `json:"deficit_or_surplus"`
}

// MacroTarget is one macronutrient's daily target.
type MacroTarget struct {
	Grams      int `json:"grams"`
	Percentage int `json:"percentage"`
}

// MacroTargets holds the daily macronutrient split.
type MacroTargets struct {
	Protein MacroTarget `json:"protein"`
	Carbs   MacroTarget `json:"carbs"`
	Fats    MacroTarget `json:"fats"`
}

// Meal is a single meal option within a plan.
type Meal struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Calories    int    `json:"calories"`
	Benefits    string `json:"benefits"`
}

// MealPlan groups meal options by slot. Each main slot carries multiple
// options so the user can rotate daily.
type MealPlan struct {
	Breakfast []Meal `json:"breakfast"`
	Lunch     []Meal `json:"lunch"`
	Dinner    []Meal `json:"dinner"`
	Snacks    []Meal `json:"snacks"`
}

// Deficiency describes one lab deficiency and the foods that address it.
type Deficiency struct {
	Name    string   `json:"name"`
	Current string   `json:"current"`
	Target  string   `json:"target"`
	Foods   []string `json:"foods"`
}

// ConditionTip carries advice for one detected health condition.
type ConditionTip struct {
	Condition  string   `json:"condition"`
	Advice     []string `json:"advice"`
	AvoidFoods []string `json:"avoidFoods"`
}

// DietPlan is the finished generation result.
type DietPlan struct {
	Summary         string         `json:"summary"`
	GoalDescription string         `json:"goalDescription"`
	Calories        CalorieTargets `json:"calories"`
	Macros          MacroTargets   `json:"macros"`
	Deficiencies    []Deficiency   `json:"deficiencies"`
	MealPlan        MealPlan       `json:"mealPlan"`
	Tips            []string       `json:"tips"`
	Warnings        []string       `json:"warnings"`
	ConditionTips   []ConditionTip `json:"conditionTips"`
}
