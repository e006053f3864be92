// Package catalog holds the fixed table of canonical lab metrics and the
// free-text name variants that resolve to them. Both tables are immutable
// and loaded once at process start; variant table order is part of the
// lookup contract (first entry wins).
package catalog

import (
	"github.com/biotrack/biotrack-cli/internal/model"
)

// Category groups metrics for presentation and plan prompts.
type Category string

const (
	CategoryVitamins        Category = "vitamins"
	CategoryMinerals        Category = "minerals"
	CategoryHormones        Category = "hormones"
	CategoryOrganFunctions  Category = "organ_functions"
	CategoryLipids          Category = "lipids"
	CategoryImmunity        Category = "immunity"
	CategoryBlood           Category = "blood"
	CategoryCoagulation     Category = "coagulation"
	CategoryBodyComposition Category = "body_composition"
	CategorySpecial         Category = "special"
)

// Metric is one canonical catalog entry.
type Metric struct {
	ID            string       `json:"id" yaml:"id"`
	NameEN        string       `json:"name_en" yaml:"name_en"`
	NameAR        string       `json:"name_ar" yaml:"name_ar"`
	Category      Category     `json:"category" yaml:"category"`
	Level         int          `json:"level" yaml:"level"`
	Unit          string       `json:"unit" yaml:"unit"`
	NormalRange   *model.Range `json:"normal_range,omitempty" yaml:"normal_range,omitempty"`
	RecheckMonths int          `json:"recheck_months" yaml:"recheck_months"`
}

// Name returns the metric name in the requested language ("ar" or anything
// else for English).
func (m Metric) Name(lang string) string {
	if lang == "ar" && m.NameAR != "" {
		return m.NameAR
	}
	return m.NameEN
}

func rng(min, max float64) *model.Range {
	return &model.Range{Min: min, Max: max}
}

// metrics is the canonical catalog, ordered by importance level. Entries
// without a NormalRange are recognized and stored but never classified
// low/high.
var metrics = []Metric{
	// Level 1: essential
	{ID: "vitamin-d", NameEN: "Vitamin D", NameAR: "فيتامين د", Category: CategoryVitamins, Level: 1, Unit: "ng/mL", NormalRange: rng(30, 100), RecheckMonths: 3},
	{ID: "hemoglobin", NameEN: "Hemoglobin", NameAR: "الهيموجلوبين", Category: CategoryBlood, Level: 1, Unit: "g/dL", NormalRange: rng(12, 17), RecheckMonths: 3},
	{ID: "glucose", NameEN: "Fasting Glucose", NameAR: "السكر الصائم", Category: CategoryOrganFunctions, Level: 1, Unit: "mg/dL", NormalRange: rng(70, 100), RecheckMonths: 3},
	{ID: "total-cholesterol", NameEN: "Total Cholesterol", NameAR: "الكولسترول الكلي", Category: CategoryLipids, Level: 1, Unit: "mg/dL", NormalRange: rng(0, 200), RecheckMonths: 6},
	{ID: "tsh", NameEN: "TSH", NameAR: "هرمون الغدة الدرقية", Category: CategoryHormones, Level: 1, Unit: "mIU/L", NormalRange: rng(0.4, 4.0), RecheckMonths: 6},

	// Level 2: general health
	{ID: "vitamin-b12", NameEN: "Vitamin B12", NameAR: "فيتامين ب12", Category: CategoryVitamins, Level: 2, Unit: "pg/mL", NormalRange: rng(200, 900), RecheckMonths: 6},
	{ID: "iron", NameEN: "Serum Iron", NameAR: "الحديد", Category: CategoryMinerals, Level: 2, Unit: "mcg/dL", NormalRange: rng(60, 170), RecheckMonths: 6},
	{ID: "ferritin", NameEN: "Ferritin", NameAR: "الفيريتين", Category: CategoryMinerals, Level: 2, Unit: "ng/mL", NormalRange: rng(12, 300), RecheckMonths: 6},
	{ID: "hba1c", NameEN: "HbA1c", NameAR: "السكر التراكمي", Category: CategoryOrganFunctions, Level: 2, Unit: "%", NormalRange: rng(4, 5.7), RecheckMonths: 3},
	{ID: "creatinine", NameEN: "Creatinine", NameAR: "الكرياتينين", Category: CategoryOrganFunctions, Level: 2, Unit: "mg/dL", NormalRange: rng(0.7, 1.3), RecheckMonths: 12},
	{ID: "ldl", NameEN: "LDL Cholesterol", NameAR: "الكولسترول الضار", Category: CategoryLipids, Level: 2, Unit: "mg/dL", NormalRange: rng(0, 100), RecheckMonths: 6},
	{ID: "hdl", NameEN: "HDL Cholesterol", NameAR: "الكولسترول النافع", Category: CategoryLipids, Level: 2, Unit: "mg/dL", NormalRange: rng(40, 100), RecheckMonths: 6},
	{ID: "triglycerides", NameEN: "Triglycerides", NameAR: "الدهون الثلاثية", Category: CategoryLipids, Level: 2, Unit: "mg/dL", NormalRange: rng(0, 150), RecheckMonths: 6},

	// Level 3: hormones and performance
	{ID: "t3", NameEN: "T3 (Triiodothyronine)", NameAR: "هرمون T3", Category: CategoryHormones, Level: 3, Unit: "ng/dL", NormalRange: rng(80, 200), RecheckMonths: 6},
	{ID: "t4", NameEN: "T4 (Thyroxine)", NameAR: "هرمون T4", Category: CategoryHormones, Level: 3, Unit: "mcg/dL", NormalRange: rng(5, 12), RecheckMonths: 6},
	{ID: "free-t4", NameEN: "Free T4", NameAR: "T4 الحر", Category: CategoryHormones, Level: 3, Unit: "ng/dL", NormalRange: rng(0.8, 1.8), RecheckMonths: 6},
	{ID: "testosterone", NameEN: "Testosterone", NameAR: "التستوستيرون", Category: CategoryHormones, Level: 3, Unit: "ng/dL", NormalRange: rng(300, 1000), RecheckMonths: 6},
	{ID: "cortisol", NameEN: "Cortisol", NameAR: "الكورتيزول", Category: CategoryHormones, Level: 3, Unit: "mcg/dL", NormalRange: rng(6, 23), RecheckMonths: 6},
	{ID: "insulin", NameEN: "Fasting Insulin", NameAR: "الأنسولين الصائم", Category: CategoryHormones, Level: 3, Unit: "uIU/mL", NormalRange: rng(2, 25), RecheckMonths: 6},
	{ID: "folate", NameEN: "Folate", NameAR: "حمض الفوليك", Category: CategoryVitamins, Level: 3, Unit: "ng/mL", NormalRange: rng(3, 20), RecheckMonths: 6},

	// Level 4: immunity and inflammation
	{ID: "crp", NameEN: "C-Reactive Protein", NameAR: "بروتين سي التفاعلي", Category: CategoryImmunity, Level: 4, Unit: "mg/L", NormalRange: rng(0, 10), RecheckMonths: 6},
	{ID: "hs-crp", NameEN: "High-Sensitivity CRP", NameAR: "CRP عالي الحساسية", Category: CategoryImmunity, Level: 4, Unit: "mg/L", NormalRange: rng(0, 3), RecheckMonths: 6},
	{ID: "wbc", NameEN: "White Blood Cells", NameAR: "كريات الدم البيضاء", Category: CategoryBlood, Level: 4, Unit: "K/uL", NormalRange: rng(4, 11), RecheckMonths: 12},
	{ID: "esr", NameEN: "ESR", NameAR: "سرعة الترسيب", Category: CategoryImmunity, Level: 4, Unit: "mm/hr", NormalRange: rng(0, 20), RecheckMonths: 6},
	{ID: "alt", NameEN: "ALT", NameAR: "إنزيم الكبد ALT", Category: CategoryOrganFunctions, Level: 4, Unit: "U/L", NormalRange: rng(7, 56), RecheckMonths: 12},
	{ID: "ast", NameEN: "AST", NameAR: "إنزيم الكبد AST", Category: CategoryOrganFunctions, Level: 4, Unit: "U/L", NormalRange: rng(10, 40), RecheckMonths: 12},

	// Level 5: advanced vitamins and minerals
	{ID: "calcium", NameEN: "Calcium", NameAR: "الكالسيوم", Category: CategoryMinerals, Level: 5, Unit: "mg/dL", NormalRange: rng(8.6, 10.3), RecheckMonths: 12},
	{ID: "magnesium", NameEN: "Magnesium", NameAR: "المغنيسيوم", Category: CategoryMinerals, Level: 5, Unit: "mg/dL", NormalRange: rng(1.7, 2.2), RecheckMonths: 12},
	{ID: "zinc", NameEN: "Zinc", NameAR: "الزنك", Category: CategoryMinerals, Level: 5, Unit: "mcg/dL", NormalRange: rng(60, 120), RecheckMonths: 12},
	{ID: "vitamin-a", NameEN: "Vitamin A", NameAR: "فيتامين أ", Category: CategoryVitamins, Level: 5, Unit: "mcg/dL", NormalRange: rng(30, 80), RecheckMonths: 12},
	{ID: "vitamin-e", NameEN: "Vitamin E", NameAR: "فيتامين هـ", Category: CategoryVitamins, Level: 5, Unit: "mg/L", NormalRange: rng(5, 20), RecheckMonths: 12},
	{ID: "vitamin-c", NameEN: "Vitamin C", NameAR: "فيتامين ج", Category: CategoryVitamins, Level: 5, Unit: "mg/dL", NormalRange: rng(0.4, 2.0), RecheckMonths: 12},
	{ID: "sodium", NameEN: "Sodium", NameAR: "الصوديوم", Category: CategoryMinerals, Level: 5, Unit: "mEq/L", NormalRange: rng(136, 145), RecheckMonths: 12},
	{ID: "potassium", NameEN: "Potassium", NameAR: "البوتاسيوم", Category: CategoryMinerals, Level: 5, Unit: "mEq/L", NormalRange: rng(3.5, 5.0), RecheckMonths: 12},

	// Level 6: heart and coagulation
	{ID: "pt", NameEN: "Prothrombin Time", NameAR: "زمن البروثرومبين", Category: CategoryCoagulation, Level: 6, Unit: "seconds", NormalRange: rng(11, 13.5), RecheckMonths: 12},
	{ID: "inr", NameEN: "INR", NameAR: "معدل التخثر الدولي", Category: CategoryCoagulation, Level: 6, Unit: "", NormalRange: rng(0.8, 1.2), RecheckMonths: 12},
	{ID: "ptt", NameEN: "PTT", NameAR: "زمن الثرومبوبلاستين", Category: CategoryCoagulation, Level: 6, Unit: "seconds", NormalRange: rng(25, 35), RecheckMonths: 12},
	{ID: "d-dimer", NameEN: "D-Dimer", NameAR: "دي-دايمر", Category: CategoryCoagulation, Level: 6, Unit: "ng/mL", NormalRange: rng(0, 500), RecheckMonths: 12},
	{ID: "fibrinogen", NameEN: "Fibrinogen", NameAR: "الفيبرينوجين", Category: CategoryCoagulation, Level: 6, Unit: "mg/dL", NormalRange: rng(200, 400), RecheckMonths: 12},
	{ID: "rbc", NameEN: "Red Blood Cells", NameAR: "كريات الدم الحمراء", Category: CategoryBlood, Level: 6, Unit: "M/uL", NormalRange: rng(4.5, 5.5), RecheckMonths: 12},
	{ID: "platelets", NameEN: "Platelets", NameAR: "الصفائح الدموية", Category: CategoryBlood, Level: 6, Unit: "K/uL", NormalRange: rng(150, 400), RecheckMonths: 12},

	// Level 7: special
	{ID: "estradiol", NameEN: "Estradiol", NameAR: "الإستراديول", Category: CategoryHormones, Level: 7, Unit: "pg/mL", NormalRange: rng(15, 350), RecheckMonths: 6},
	{ID: "progesterone", NameEN: "Progesterone", NameAR: "البروجسترون", Category: CategoryHormones, Level: 7, Unit: "ng/mL", NormalRange: rng(0.1, 25), RecheckMonths: 6},
	{ID: "prolactin", NameEN: "Prolactin", NameAR: "البرولاكتين", Category: CategoryHormones, Level: 7, Unit: "ng/mL", NormalRange: rng(2, 29), RecheckMonths: 6},
	{ID: "dhea", NameEN: "DHEA-S", NameAR: "DHEA-S", Category: CategoryHormones, Level: 7, Unit: "mcg/dL", NormalRange: rng(35, 430), RecheckMonths: 12},
	{ID: "pth", NameEN: "Parathyroid Hormone", NameAR: "هرمون الجار درقية", Category: CategoryHormones, Level: 7, Unit: "pg/mL", NormalRange: rng(15, 65), RecheckMonths: 12},
	{ID: "bun", NameEN: "Blood Urea Nitrogen", NameAR: "نيتروجين يوريا الدم", Category: CategoryOrganFunctions, Level: 7, Unit: "mg/dL", NormalRange: rng(7, 20), RecheckMonths: 12},
	{ID: "uric-acid", NameEN: "Uric Acid", NameAR: "حمض اليوريك", Category: CategoryOrganFunctions, Level: 7, Unit: "mg/dL", NormalRange: rng(3.5, 7.2), RecheckMonths: 12},
	{ID: "bilirubin", NameEN: "Total Bilirubin", NameAR: "البيليروبين الكلي", Category: CategoryOrganFunctions, Level: 7, Unit: "mg/dL", NormalRange: rng(0.1, 1.2), RecheckMonths: 12},
	{ID: "albumin", NameEN: "Albumin", NameAR: "الألبومين", Category: CategoryOrganFunctions, Level: 7, Unit: "g/dL", NormalRange: rng(3.5, 5.5), RecheckMonths: 12},

	// Recognized but without reference ranges; stored, never flagged.
	{ID: "growth-hormone", NameEN: "Growth Hormone", NameAR: "هرمون النمو", Category: CategoryHormones, Level: 7, Unit: "ng/mL", RecheckMonths: 12},
	{ID: "vitamin-k", NameEN: "Vitamin K", NameAR: "فيتامين ك", Category: CategoryVitamins, Level: 7, Unit: "ng/mL", RecheckMonths: 12},
	{ID: "phosphorus", NameEN: "Phosphorus", NameAR: "الفوسفور", Category: CategoryMinerals, Level: 7, Unit: "mg/dL", NormalRange: rng(2.5, 4.5), RecheckMonths: 12},
	{ID: "copper", NameEN: "Copper", NameAR: "النحاس", Category: CategoryMinerals, Level: 7, Unit: "mcg/dL", RecheckMonths: 12},
	{ID: "selenium", NameEN: "Selenium", NameAR: "السيلينيوم", Category: CategoryMinerals, Level: 7, Unit: "mcg/L", RecheckMonths: 12},
	{ID: "ggt", NameEN: "GGT", NameAR: "إنزيم GGT", Category: CategoryOrganFunctions, Level: 7, Unit: "U/L", NormalRange: rng(9, 48), RecheckMonths: 12},
	{ID: "alp", NameEN: "Alkaline Phosphatase", NameAR: "الفوسفاتيز القلوي", Category: CategoryOrganFunctions, Level: 7, Unit: "U/L", NormalRange: rng(44, 147), RecheckMonths: 12},
	{ID: "total-protein", NameEN: "Total Protein", NameAR: "البروتين الكلي", Category: CategoryOrganFunctions, Level: 7, Unit: "g/dL", NormalRange: rng(6, 8.3), RecheckMonths: 12},
	{ID: "vldl", NameEN: "VLDL", NameAR: "الكولسترول VLDL", Category: CategoryLipids, Level: 7, Unit: "mg/dL", NormalRange: rng(2, 30), RecheckMonths: 6},
	{ID: "hematocrit", NameEN: "Hematocrit", NameAR: "الهيماتوكريت", Category: CategoryBlood, Level: 7, Unit: "%", NormalRange: rng(36, 50), RecheckMonths: 12},
	{ID: "mcv", NameEN: "MCV", NameAR: "متوسط حجم الكرية", Category: CategoryBlood, Level: 7, Unit: "fL", NormalRange: rng(80, 100), RecheckMonths: 12},
	{ID: "mch", NameEN: "MCH", NameAR: "متوسط هيموجلوبين الكرية", Category: CategoryBlood, Level: 7, Unit: "pg", NormalRange: rng(27, 33), RecheckMonths: 12},
	{ID: "mchc", NameEN: "MCHC", NameAR: "تركيز هيموجلوبين الكرية", Category: CategoryBlood, Level: 7, Unit: "g/dL", NormalRange: rng(32, 36), RecheckMonths: 12},
	{ID: "rdw", NameEN: "RDW", NameAR: "توزع حجم الكريات", Category: CategoryBlood, Level: 7, Unit: "%", NormalRange: rng(11.5, 14.5), RecheckMonths: 12},

	// Body composition (InBody reports).
	{ID: "inbody-weight", NameEN: "Weight", NameAR: "الوزن", Category: CategoryBodyComposition, Level: 1, Unit: "kg", RecheckMonths: 1},
	{ID: "inbody-total-body-water", NameEN: "Total Body Water", NameAR: "ماء الجسم", Category: CategoryBodyComposition, Level: 2, Unit: "L", RecheckMonths: 1},
	{ID: "inbody-body-fat-percentage", NameEN: "Body Fat Percentage", NameAR: "نسبة الدهون", Category: CategoryBodyComposition, Level: 1, Unit: "%", RecheckMonths: 1},
	{ID: "inbody-skeletal-muscle-mass", NameEN: "Skeletal Muscle Mass", NameAR: "كتلة العضلات", Category: CategoryBodyComposition, Level: 1, Unit: "kg", RecheckMonths: 1},
	{ID: "inbody-bmi", NameEN: "BMI", NameAR: "مؤشر كتلة الجسم", Category: CategoryBodyComposition, Level: 1, Unit: "kg/m2", NormalRange: rng(18.5, 24.9), RecheckMonths: 1},
	{ID: "inbody-visceral-fat-level", NameEN: "Visceral Fat Level", NameAR: "الدهون الحشوية", Category: CategoryBodyComposition, Level: 2, Unit: "level", NormalRange: rng(1, 9), RecheckMonths: 1},
	{ID: "inbody-bmr", NameEN: "BMR", NameAR: "معدل الأيض الأساسي", Category: CategoryBodyComposition, Level: 2, Unit: "kcal", RecheckMonths: 1},
}
