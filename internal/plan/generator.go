package plan

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/pkg/anthropic"
)

const (
	defaultPlanModel = "claude-sonnet-4-5-20250929"
	planMaxTokens    = 6000
	planTemperature  = 0.7
)

// ErrPlanParse means the model reply contained no usable plan JSON.
var ErrPlanParse = eris.New("plan: could not parse generated plan")

// Generator produces diet plans from a profile and lab history.
type Generator struct {
	client anthropic.Client
	model  string
}

// NewGenerator creates a Generator. An empty model uses the default.
func NewGenerator(client anthropic.Client, planModel string) *Generator {
	if planModel == "" {
		planModel = defaultPlanModel
	}
	return &Generator{client: client, model: planModel}
}

// Generate builds the localized prompt, calls the model, and returns the
// parsed plan with the locally computed calorie and macro targets stamped
// in. Language is "ar" or "en"; anything else falls back to English.
func (g *Generator) Generate(ctx context.Context, profile model.Profile, results []model.TestResult, language string) (*model.DietPlan, error) {
	weight := profile.Weight
	if weight == 0 {
		weight = defaultWeight
	}

	calories := Targets(profile)
	macros := Macros(calories.Target, profile.FitnessGoal, profile.MealPreference, weight)
	conditions := DetectConditions(results)

	in := promptInputs{
		profile:    profile,
		lang:       language,
		goal:       orDefault(profile.FitnessGoal, "maintain"),
		activity:   orDefault(profile.ActivityLevel, "sedentary"),
		preference: orDefault(profile.MealPreference, "balanced"),
		calories:   calories,
		macros:     macros,
		bmi:        BMI(profile),
		conditions: conditions,
		results:    results,
	}

	temp := planTemperature
	resp, err := g.client.CreateMessage(ctx, anthropic.MessageRequest{
		Model:       g.model,
		MaxTokens:   planMaxTokens,
		Temperature: &temp,
		System: []anthropic.SystemBlock{
			{Text: buildSystemPrompt(in)},
		},
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(in)},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "plan: generate")
	}

	resp.Usage.LogCost(resp.Model, "plan")

	plan, err := parsePlan(resp.Text())
	if err != nil {
		return nil, err
	}

	// Calories and macros are computed locally, never trusted from the model.
	plan.Calories = calories
	plan.Macros = macros

	if plan.GoalDescription == "" {
		plan.GoalDescription = label(goalDescriptions, in.goal, language)
	}

	zap.L().Info("diet plan generated",
		zap.String("user_id", profile.UserID),
		zap.String("language", language),
		zap.Int("conditions", len(conditions)),
		zap.Int("target_calories", calories.Target),
	)
	return plan, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// parsePlan extracts the first JSON object from the reply and decodes it.
func parsePlan(text string) (*model.DietPlan, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrPlanParse
	}

	var plan model.DietPlan
	if err := json.Unmarshal([]byte(text[start:end+1]), &plan); err != nil {
		zap.L().Debug("plan JSON did not decode", zap.Error(err))
		return nil, ErrPlanParse
	}
	return &plan, nil
}
