package catalog

// variant maps one lower-cased free-text name to a canonical metric id.
type variant struct {
	name string
	id   string
}

// variants is the priority-ordered lookup table. Lookup scans it twice:
// first for an exact match, then for containment in either direction, and
// the first hit in table order wins, so ordering here is deliberate
// (specific names before generic ones, e.g. "hdl cholesterol" resolves via
// exact match before "cholesterol" containment could claim it).
var variants = []variant{
	// Vitamins
	{"vitamin d", "vitamin-d"},
	{"vitamin d3", "vitamin-d"},
	{"25-oh vitamin d", "vitamin-d"},
	{"فيتامين د", "vitamin-d"},
	{"vitamin b12", "vitamin-b12"},
	{"cobalamin", "vitamin-b12"},
	{"فيتامين ب12", "vitamin-b12"},
	{"folate", "folate"},
	{"folic acid", "folate"},
	{"vitamin b9", "folate"},
	{"iron", "iron"},
	{"serum iron", "iron"},
	{"الحديد", "iron"},
	{"ferritin", "ferritin"},
	{"vitamin a", "vitamin-a"},
	{"retinol", "vitamin-a"},
	{"vitamin e", "vitamin-e"},
	{"tocopherol", "vitamin-e"},
	{"vitamin k", "vitamin-k"},
	{"vitamin c", "vitamin-c"},
	{"ascorbic acid", "vitamin-c"},

	// Minerals
	{"calcium", "calcium"},
	{"الكالسيوم", "calcium"},
	{"magnesium", "magnesium"},
	{"zinc", "zinc"},
	{"sodium", "sodium"},
	{"potassium", "potassium"},
	{"phosphorus", "phosphorus"},
	{"copper", "copper"},
	{"selenium", "selenium"},

	// Hormones
	{"tsh", "tsh"},
	{"thyroid stimulating hormone", "tsh"},
	{"t3", "t3"},
	{"triiodothyronine", "t3"},
	{"t4", "t4"},
	{"thyroxine", "t4"},
	{"free t4", "free-t4"},
	{"ft4", "free-t4"},
	{"testosterone", "testosterone"},
	{"cortisol", "cortisol"},
	{"insulin", "insulin"},
	{"estradiol", "estradiol"},
	{"progesterone", "progesterone"},
	{"prolactin", "prolactin"},
	{"dhea", "dhea"},
	{"dhea-s", "dhea"},
	{"growth hormone", "growth-hormone"},
	{"gh", "growth-hormone"},
	{"pth", "pth"},
	{"parathyroid hormone", "pth"},

	// Organ functions
	{"glucose", "glucose"},
	{"fasting glucose", "glucose"},
	{"blood sugar", "glucose"},
	{"السكر الصائم", "glucose"},
	{"hba1c", "hba1c"},
	{"hemoglobin a1c", "hba1c"},
	{"glycated hemoglobin", "hba1c"},
	{"creatinine", "creatinine"},
	{"bun", "bun"},
	{"blood urea nitrogen", "bun"},
	{"urea", "bun"},
	{"alt", "alt"},
	{"sgpt", "alt"},
	{"ast", "ast"},
	{"sgot", "ast"},
	{"ggt", "ggt"},
	{"gamma gt", "ggt"},
	{"alkaline phosphatase", "alp"},
	{"alp", "alp"},
	{"bilirubin", "bilirubin"},
	{"total bilirubin", "bilirubin"},
	{"albumin", "albumin"},
	{"total protein", "total-protein"},
	{"uric acid", "uric-acid"},

	// Lipids
	{"cholesterol", "total-cholesterol"},
	{"total cholesterol", "total-cholesterol"},
	{"الكولسترول", "total-cholesterol"},
	{"ldl", "ldl"},
	{"ldl cholesterol", "ldl"},
	{"hdl", "hdl"},
	{"hdl cholesterol", "hdl"},
	{"triglycerides", "triglycerides"},
	{"الدهون الثلاثية", "triglycerides"},
	{"vldl", "vldl"},

	// Blood
	{"hemoglobin", "hemoglobin"},
	{"hb", "hemoglobin"},
	{"الهيموجلوبين", "hemoglobin"},
	{"hematocrit", "hematocrit"},
	{"hct", "hematocrit"},
	{"rbc", "rbc"},
	{"red blood cells", "rbc"},
	{"wbc", "wbc"},
	{"white blood cells", "wbc"},
	{"platelets", "platelets"},
	{"plt", "platelets"},
	{"mcv", "mcv"},
	{"mch", "mch"},
	{"mchc", "mchc"},
	{"rdw", "rdw"},
	{"esr", "esr"},

	// Immunity
	{"crp", "crp"},
	{"c-reactive protein", "crp"},
	{"hs-crp", "hs-crp"},

	// Coagulation
	{"pt", "pt"},
	{"prothrombin time", "pt"},
	{"inr", "inr"},
	{"ptt", "ptt"},
	{"aptt", "ptt"},
	{"d-dimer", "d-dimer"},
	{"fibrinogen", "fibrinogen"},

	// Body composition
	{"weight", "inbody-weight"},
	{"body weight", "inbody-weight"},
	{"وزن", "inbody-weight"},
	{"الوزن", "inbody-weight"},
	{"total body water", "inbody-total-body-water"},
	{"tbw", "inbody-total-body-water"},
	{"ماء الجسم", "inbody-total-body-water"},
	{"total body water (%)", "inbody-total-body-water"},
	{"body fat percentage", "inbody-body-fat-percentage"},
	{"percent body fat", "inbody-body-fat-percentage"},
	{"pbf", "inbody-body-fat-percentage"},
	{"نسبة الدهون", "inbody-body-fat-percentage"},
	{"skeletal muscle mass", "inbody-skeletal-muscle-mass"},
	{"smm", "inbody-skeletal-muscle-mass"},
	{"كتلة العضلات", "inbody-skeletal-muscle-mass"},
	{"muscle mass", "inbody-skeletal-muscle-mass"},
	{"bmi", "inbody-bmi"},
	{"مؤشر كتلة الجسم", "inbody-bmi"},
	{"visceral fat level", "inbody-visceral-fat-level"},
	{"visceral fat", "inbody-visceral-fat-level"},
	{"دهون حشوية", "inbody-visceral-fat-level"},
	{"bmr", "inbody-bmr"},
	{"basal metabolic rate", "inbody-bmr"},
	{"معدل الأيض الأساسي", "inbody-bmr"},
}
