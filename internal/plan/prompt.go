package plan

import (
	"fmt"
	"strings"

	"github.com/biotrack/biotrack-cli/internal/catalog"
	"github.com/biotrack/biotrack-cli/internal/model"
)

// bilingual pairs an English and an Arabic rendering of the same label.
type bilingual struct {
	en, ar string
}

func (b bilingual) in(lang string) string {
	if lang == "ar" {
		return b.ar
	}
	return b.en
}

var goalDescriptions = map[string]bilingual{
	"weight_loss": {
		en: "Weight Loss - Low calorie diet to lose fat while preserving muscle",
		ar: "نزول الوزن - نظام منخفض السعرات لخسارة الدهون مع الحفاظ على العضلات",
	},
	"maintain": {
		en: "Weight Maintenance - Balanced diet to maintain current weight and correct deficiencies",
		ar: "ثبات الوزن - نظام متوازن للحفاظ على الوزن الحالي وتعديل النواقص",
	},
	"muscle_gain": {
		en: "Muscle Gain - Clean calorie surplus for building lean muscle with healthy food sources only",
		ar: "زيادة الوزن (عضل) - زيادة سعرات من مصادر نظيفة وصحية لبناء العضلات فقط",
	},
}

var activityLabels = map[string]bilingual{
	"sedentary":        {en: "Sedentary", ar: "قليل الحركة"},
	"lightly_active":   {en: "Lightly Active", ar: "نشيط بشكل خفيف"},
	"very_active":      {en: "Very Active", ar: "نشيط بشكل عالي"},
	"extremely_active": {en: "Extremely Active", ar: "نشيط بشكل عالي جداً"},
}

var preferenceLabels = map[string]bilingual{
	"high_protein":  {en: "High Protein", ar: "عالية البروتين"},
	"balanced":      {en: "Balanced", ar: "متوازنة"},
	"low_carb":      {en: "Low Carb", ar: "لو-كارب"},
	"vegetarian":    {en: "Vegetarian", ar: "نباتية"},
	"custom_macros": {en: "Custom Macros", ar: "ماكروز مخصصة"},
}

var allergyNames = map[string]bilingual{
	"eggs":    {en: "Eggs", ar: "بيض"},
	"dairy":   {en: "Dairy", ar: "مشتقات الألبان"},
	"peanuts": {en: "Peanuts", ar: "فول سوداني"},
	"nuts":    {en: "Nuts", ar: "مكسرات"},
	"seafood": {en: "Seafood", ar: "مأكولات بحرية"},
	"soy":     {en: "Soy", ar: "صويا"},
	"sesame":  {en: "Sesame", ar: "سمسم"},
	"wheat":   {en: "Wheat", ar: "قمح"},
	"fish":    {en: "Fish", ar: "سمك"},
}

func label(m map[string]bilingual, key, lang string) string {
	if b, ok := m[key]; ok {
		return b.in(lang)
	}
	return key
}

// promptInputs carries everything the prompt builders need, precomputed by
// the generator.
type promptInputs struct {
	profile    model.Profile
	lang       string
	goal       string
	activity   string
	preference string
	calories   model.CalorieTargets
	macros     model.MacroTargets
	bmi        float64
	conditions []string
	results    []model.TestResult
}

// describeResults renders one line per valued result: name, value, unit,
// status flag, and the normal range when known.
func describeResults(results []model.TestResult, lang string) string {
	var sb strings.Builder
	for _, r := range results {
		if r.Value == nil {
			continue
		}
		metric, ok := catalog.Get(r.MetricID)
		if !ok {
			continue
		}
		statusText := strings.ToUpper(string(r.Status))
		rangeText := ""
		if metric.NormalRange != nil {
			rangeText = fmt.Sprintf("(normal: %g-%g %s)", metric.NormalRange.Min, metric.NormalRange.Max, metric.Unit)
		}
		fmt.Fprintf(&sb, "- %s: %g %s [%s] %s\n", metric.Name(lang), *r.Value, metric.Unit, statusText, rangeText)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func allergyList(p model.Profile, lang string) string {
	if len(p.Allergies) == 0 {
		return ""
	}
	names := make([]string, len(p.Allergies))
	for i, a := range p.Allergies {
		names[i] = label(allergyNames, a, lang)
	}
	return strings.Join(names, ", ")
}

// planJSONContract is the reply shape both language prompts demand.
const planJSONContract = `{
  "summary": "...",
  "goalDescription": "...",
  "deficiencies": [{"name": "...", "current": "...", "target": "...", "foods": ["..."]}],
  "mealPlan": {
    "breakfast": [{"name": "...", "description": "...", "calories": 400, "benefits": "..."}],
    "lunch": [{"name": "...", "description": "...", "calories": 500, "benefits": "..."}],
    "dinner": [{"name": "...", "description": "...", "calories": 400, "benefits": "..."}],
    "snacks": [{"name": "...", "description": "...", "calories": 200, "benefits": "..."}]
  },
  "tips": ["..."],
  "warnings": ["..."],
  "conditionTips": [{"condition": "...", "advice": ["..."], "avoidFoods": ["..."]}]
}`

func buildSystemPrompt(in promptInputs) string {
	conditionsStr := "none detected"
	if len(in.conditions) > 0 {
		conditionsStr = strings.Join(in.conditions, ", ")
	}
	allergies := allergyList(in.profile, in.lang)

	if in.lang == "ar" {
		var sb strings.Builder
		sb.WriteString("أنت خبير تغذية طبية متخصص. مهمتك تصميم نظام غذائي مخصص بناءً على نتائج التحاليل الطبية والبيانات الجسدية للمستخدم.\n\n")
		fmt.Fprintf(&sb, "الهدف: %s\n", label(goalDescriptions, in.goal, "ar"))
		fmt.Fprintf(&sb, "مستوى النشاط: %s\n", label(activityLabels, in.activity, "ar"))
		fmt.Fprintf(&sb, "نوع الوجبات المفضل: %s\n\n", label(preferenceLabels, in.preference, "ar"))
		fmt.Fprintf(&sb, "السعرات المستهدفة: %d سعرة حرارية يومياً\n", in.calories.Target)
		fmt.Fprintf(&sb, "البروتين: %dجم | الكاربوهيدرات: %dجم | الدهون: %dجم\n\n",
			in.macros.Protein.Grams, in.macros.Carbs.Grams, in.macros.Fats.Grams)
		sb.WriteString("تعليمات مهمة:\n")
		sb.WriteString("- صمم الوجبات بحيث تتوافق مع السعرات والماكرو المحدد أعلاه\n")
		sb.WriteString("- قدم 3 خيارات مختلفة ومتنوعة لكل وجبة (فطور، غداء، عشاء) لكي يختار المستخدم ما يناسبه ويغير يومياً\n")
		sb.WriteString("- ركز على الأطعمة التي تحسّن النواقص الموجودة في التحاليل\n")
		sb.WriteString("- قدم وجبات عملية وسهلة التحضير ومتوفرة في المنطقة العربية\n")
		sb.WriteString("- اذكر السعرات التقريبية لكل وجبة والفوائد الصحية لها\n")
		if allergies != "" {
			fmt.Fprintf(&sb, "- المستخدم لديه حساسية تجاه: %s. تجنب هذه المكونات تماماً في جميع الوجبات.\n", allergies)
		}
		fmt.Fprintf(&sb, "- بناءً على التحاليل، تم اكتشاف هذه الحالات: %s. أضف نصائح مخصصة لكل حالة في \"conditionTips\" مع ذكر الأطعمة التي يجب تجنبها.\n", conditionsStr)
		sb.WriteString("- أضف تحذيرات إذا كانت هناك قيم خطرة تحتاج مراجعة طبيب\n")
		sb.WriteString("- جميع الردود يجب أن تكون باللغة العربية\n\n")
		sb.WriteString("أرجع JSON بالشكل التالي:\n")
		sb.WriteString(planJSONContract)
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString("You are a medical nutrition expert. Design a personalized diet plan based on the user's lab results and physical data.\n\n")
	fmt.Fprintf(&sb, "Goal: %s\n", label(goalDescriptions, in.goal, "en"))
	fmt.Fprintf(&sb, "Activity Level: %s\n", label(activityLabels, in.activity, "en"))
	fmt.Fprintf(&sb, "Meal Preference: %s\n\n", label(preferenceLabels, in.preference, "en"))
	fmt.Fprintf(&sb, "Target Calories: %d kcal/day\n", in.calories.Target)
	fmt.Fprintf(&sb, "Protein: %dg | Carbs: %dg | Fats: %dg\n\n",
		in.macros.Protein.Grams, in.macros.Carbs.Grams, in.macros.Fats.Grams)
	sb.WriteString("Important instructions:\n")
	sb.WriteString("- Design meals that align with the calorie and macro targets above\n")
	sb.WriteString("- Provide 3 DIFFERENT varied options for each meal (breakfast, lunch, dinner) so the user can choose and rotate daily\n")
	sb.WriteString("- Focus on foods that address deficiencies found in lab results\n")
	sb.WriteString("- Provide practical, easy-to-prepare meals with approximate calories and health benefits\n")
	if allergies != "" {
		fmt.Fprintf(&sb, "- User has allergies to: %s. Completely avoid these ingredients in all meals.\n", allergies)
	}
	fmt.Fprintf(&sb, "- Based on lab results, these conditions were detected: %s. Add personalized tips for each condition in \"conditionTips\" with foods to avoid.\n", conditionsStr)
	sb.WriteString("- Add warnings if there are dangerous values requiring doctor consultation\n")
	sb.WriteString("- All responses must be in English\n\n")
	sb.WriteString("Return JSON in this format:\n")
	sb.WriteString(planJSONContract)
	return sb.String()
}

func buildUserPrompt(in promptInputs) string {
	tests := describeResults(in.results, in.lang)
	allergies := allergyList(in.profile, in.lang)

	weight, height, age, gender := in.profile.Weight, in.profile.Height, in.profile.Age, in.profile.Gender
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

	var normal, abnormal int
	for _, r := range in.results {
		if r.Status.Abnormal() {
			abnormal++
		} else {
			normal++
		}
	}

	if in.lang == "ar" {
		var sb strings.Builder
		sb.WriteString("بيانات المستخدم:\n")
		fmt.Fprintf(&sb, "- العمر: %d سنة\n", age)
		genderAR := "ذكر"
		if gender == "female" {
			genderAR = "أنثى"
		}
		fmt.Fprintf(&sb, "- الجنس: %s\n", genderAR)
		fmt.Fprintf(&sb, "- الوزن: %g كجم\n- الطول: %g سم\n", weight, height)
		fmt.Fprintf(&sb, "- مؤشر كتلة الجسم (BMI): %.1f\n", in.bmi)
		fmt.Fprintf(&sb, "- السعرات المستهدفة: %d سعرة/يوم\n", in.calories.Target)
		if allergies != "" {
			fmt.Fprintf(&sb, "- الحساسيات الغذائية: %s\n", allergies)
		} else {
			sb.WriteString("- لا يوجد حساسيات غذائية\n")
		}
		sb.WriteString("\nنتائج التحاليل:\n")
		if tests == "" {
			sb.WriteString("لا توجد نتائج تحاليل متوفرة\n")
		} else {
			sb.WriteString(tests + "\n")
		}
		fmt.Fprintf(&sb, "\nملخص:\n- فحوصات طبيعية: %d\n- فحوصات غير طبيعية: %d\n", normal, abnormal)
		sb.WriteString("\nصمم نظام غذائي مخصص يتناسب مع هدف المستخدم ويحسّن هذه النتائج. قدم 3 خيارات لكل وجبة.")
		return sb.String()
	}

	var sb strings.Builder
	sb.WriteString("User data:\n")
	fmt.Fprintf(&sb, "- Age: %d years\n- Gender: %s\n- Weight: %g kg\n- Height: %g cm\n", age, gender, weight, height)
	fmt.Fprintf(&sb, "- BMI: %.1f\n", in.bmi)
	fmt.Fprintf(&sb, "- Target Calories: %d kcal/day\n", in.calories.Target)
	fmt.Fprintf(&sb, "- Protein: %dg | Carbs: %dg | Fats: %dg\n",
		in.macros.Protein.Grams, in.macros.Carbs.Grams, in.macros.Fats.Grams)
	if allergies != "" {
		fmt.Fprintf(&sb, "- Food Allergies: %s\n", allergies)
	} else {
		sb.WriteString("- No food allergies\n")
	}
	sb.WriteString("\nLab Results:\n")
	if tests == "" {
		sb.WriteString("No lab results available\n")
	} else {
		sb.WriteString(tests + "\n")
	}
	fmt.Fprintf(&sb, "\nSummary:\n- Normal tests: %d\n- Abnormal tests: %d\n", normal, abnormal)
	if len(in.conditions) > 0 {
		fmt.Fprintf(&sb, "- Detected conditions: %s\n", strings.Join(in.conditions, ", "))
	}
	sb.WriteString("\nDesign a personalized diet plan that matches the user's goal and improves these results. Provide 3 options for each meal.")
	return sb.String()
}
