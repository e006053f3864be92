package plan

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/biotrack/biotrack-cli/internal/model"
	"github.com/biotrack/biotrack-cli/pkg/anthropic"
)

const samplePlanJSON = `{
  "summary": "Balanced plan addressing vitamin D deficiency.",
  "goalDescription": "Weight loss with muscle preservation.",
  "calories": {"bmr": 1, "tdee": 2, "target": 3, "deficit_or_surplus": 4},
  "macros": {"protein": {"grams": 999, "percentage": 99}, "carbs": {"grams": 0, "percentage": 0}, "fats": {"grams": 0, "percentage": 0}},
  "deficiencies": [{"name": "Vitamin D", "current": "12", "target": "30-100", "foods": ["salmon", "eggs"]}],
  "mealPlan": {
    "breakfast": [{"name": "Oats", "description": "Oats with milk", "calories": 400, "benefits": "Fiber"}],
    "lunch": [{"name": "Chicken bowl", "description": "Chicken and rice", "calories": 550, "benefits": "Protein"}],
    "dinner": [{"name": "Salmon", "description": "Grilled salmon", "calories": 450, "benefits": "Vitamin D"}],
    "snacks": [{"name": "Yogurt", "description": "Greek yogurt", "calories": 150, "benefits": "Protein"}]
  },
  "tips": ["Get sunlight"],
  "warnings": [],
  "conditionTips": [{"condition": "vitamin_d_deficiency", "advice": ["Supplement daily"], "avoidFoods": []}]
}`

func planResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Model:   "claude-sonnet-4-5-20250929",
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

func testProfile() model.Profile {
	return model.Profile{
		UserID: "user-1", Weight: 80, Height: 180, Age: 30, Gender: "male",
		FitnessGoal: "weight_loss", ActivityLevel: "sedentary", MealPreference: "balanced",
	}
}

func TestGenerate_StampsLocalCaloriesAndMacros(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).Return(planResponse(samplePlanJSON), nil)

	g := NewGenerator(mc, "")
	plan, err := g.Generate(context.Background(), testProfile(), nil, "en")
	require.NoError(t, err)

	// The model's numbers are discarded in favor of local computation.
	expected := Targets(testProfile())
	assert.Equal(t, expected, plan.Calories)
	assert.NotEqual(t, 999, plan.Macros.Protein.Grams)
	assert.Equal(t, 160, plan.Macros.Protein.Grams) // 80kg * 2.0 for weight_loss

	assert.Equal(t, "Balanced plan addressing vitamin D deficiency.", plan.Summary)
	require.Len(t, plan.MealPlan.Breakfast, 1)
	assert.Equal(t, "Oats", plan.MealPlan.Breakfast[0].Name)
}

func TestGenerate_PromptCarriesResultsAndConditions(t *testing.T) {
	mc := new(anthropic.MockClient)
	var captured anthropic.MessageRequest
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(planResponse(samplePlanJSON), nil)

	v := 12.0
	results := []model.TestResult{
		{MetricID: "vitamin-d", Value: &v, Status: model.StatusLow},
	}

	g := NewGenerator(mc, "")
	_, err := g.Generate(context.Background(), testProfile(), results, "en")
	require.NoError(t, err)

	require.Len(t, captured.System, 1)
	assert.Contains(t, captured.System[0].Text, "vitamin_d_deficiency")
	require.Len(t, captured.Messages, 1)
	assert.Contains(t, captured.Messages[0].Content, "Vitamin D")
	assert.Contains(t, captured.Messages[0].Content, "[LOW]")
}

func TestGenerate_ArabicPrompt(t *testing.T) {
	mc := new(anthropic.MockClient)
	var captured anthropic.MessageRequest
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			captured = args.Get(1).(anthropic.MessageRequest)
		}).
		Return(planResponse(samplePlanJSON), nil)

	g := NewGenerator(mc, "")
	_, err := g.Generate(context.Background(), testProfile(), nil, "ar")
	require.NoError(t, err)

	assert.Contains(t, captured.System[0].Text, "خبير تغذية")
	assert.Contains(t, captured.Messages[0].Content, "بيانات المستخدم")
}

func TestGenerate_ParseFailure(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(planResponse("Sorry, I cannot produce a plan."), nil)

	g := NewGenerator(mc, "")
	_, err := g.Generate(context.Background(), testProfile(), nil, "en")
	assert.True(t, eris.Is(err, ErrPlanParse))
}

func TestGenerate_APIError(t *testing.T) {
	mc := new(anthropic.MockClient)
	mc.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("rate limited"))

	g := NewGenerator(mc, "")
	_, err := g.Generate(context.Background(), testProfile(), nil, "en")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "plan: generate")
}

func TestParsePlan_ExtractsEmbeddedObject(t *testing.T) {
	text := "Here is your plan:\n" + samplePlanJSON + "\nEnjoy!"
	plan, err := parsePlan(text)
	require.NoError(t, err)
	assert.Equal(t, "Weight loss with muscle preservation.", plan.GoalDescription)
}

func TestBuildUserPrompt_CountsNormalAndAbnormal(t *testing.T) {
	v1, v2, v3 := 45.0, 12.0, 140.0
	in := promptInputs{
		profile: testProfile(),
		lang:    "en",
		goal:    "maintain",
		results: []model.TestResult{
			{MetricID: "vitamin-d", Value: &v1, Status: model.StatusNormal},
			{MetricID: "ferritin", Value: &v2, Status: model.StatusLow},
			{MetricID: "glucose", Value: &v3, Status: model.StatusHigh},
		},
	}
	prompt := buildUserPrompt(in)
	assert.True(t, strings.Contains(prompt, "Normal tests: 1"))
	assert.True(t, strings.Contains(prompt, "Abnormal tests: 2"))
}
