// Package scoring implements the partnership underwriting and venture
// economics calculators. Both are pure weighted-formula engines: fixed
// coefficients, threshold tables and closed-form arithmetic, no I/O.
package scoring

import "fmt"

// CreditTier is the applicant's credit band.
type CreditTier string

const (
	CreditExcellent CreditTier = "excellent" // 740+
	CreditGood      CreditTier = "good"      // 670-739
	CreditFair      CreditTier = "fair"      // 580-669
	CreditPoor      CreditTier = "poor"      // under 580
)

// PartnershipTier is the underwriting outcome band.
type PartnershipTier string

const (
	TierPlatinum    PartnershipTier = "platinum"
	TierGold        PartnershipTier = "gold"
	TierSilver      PartnershipTier = "silver"
	TierConditional PartnershipTier = "conditional"
	TierDeclined    PartnershipTier = "declined"
)

// UnderwritingInput holds the structured applicant figures.
type UnderwritingInput struct {
	// CapitalAvailable is liquid capital in dollars.
	CapitalAvailable float64 `json:"capital_available" validate:"gte=0"`
	// CreditTier is the applicant's credit band.
	CreditTier CreditTier `json:"credit_tier" validate:"required,oneof=excellent good fair poor"`
	// MonthlyIncome is gross monthly income in dollars.
	MonthlyIncome float64 `json:"monthly_income" validate:"gte=0"`
	// MonthlyObligations is fixed monthly obligations in dollars.
	MonthlyObligations float64 `json:"monthly_obligations" validate:"gte=0"`
	// YearsExperience is years of relevant business experience.
	YearsExperience float64 `json:"years_experience" validate:"gte=0"`
	// HoursPerWeek is committed weekly hours.
	HoursPerWeek float64 `json:"hours_per_week" validate:"gte=0,lte=100"`
}

// UnderwritingResult carries the category scores, the composite and the tier.
type UnderwritingResult struct {
	CapitalScore    float64         `json:"capital_score"`
	CreditScore     float64         `json:"credit_score"`
	IncomeScore     float64         `json:"income_score"`
	ExperienceScore float64         `json:"experience_score"`
	CommitmentScore float64         `json:"commitment_score"`
	Composite       float64         `json:"composite"`
	Tier            PartnershipTier `json:"tier"`
}

// Category weights. Composite = 0.30*capital + 0.25*credit +
// 0.20*income + 0.15*experience + 0.10*commitment, each category
// scored 0-100.
const (
	weightCapital    = 0.30
	weightCredit     = 0.25
	weightIncome     = 0.20
	weightExperience = 0.15
	weightCommitment = 0.10
)

// creditScores is the fixed credit band table.
var creditScores = map[CreditTier]float64{
	CreditExcellent: 100,
	CreditGood:      80,
	CreditFair:      55,
	CreditPoor:      25,
}

// Underwrite evaluates a partnership application.
func Underwrite(in UnderwritingInput) (UnderwritingResult, error) {
	creditScore, ok := creditScores[in.CreditTier]
	if !ok {
		return UnderwritingResult{}, fmt.Errorf("unknown credit tier %q", in.CreditTier)
	}

	r := UnderwritingResult{
		CapitalScore:    capitalScore(in.CapitalAvailable),
		CreditScore:     creditScore,
		IncomeScore:     incomeScore(in.MonthlyIncome, in.MonthlyObligations),
		ExperienceScore: experienceScore(in.YearsExperience),
		CommitmentScore: commitmentScore(in.HoursPerWeek),
	}

	r.Composite = weightCapital*r.CapitalScore +
		weightCredit*r.CreditScore +
		weightIncome*r.IncomeScore +
		weightExperience*r.ExperienceScore +
		weightCommitment*r.CommitmentScore

	r.Tier = tierFor(r.Composite)
	return r, nil
}

// capitalScore: 100 at $50k+, linear down to 0 at $0.
func capitalScore(capital float64) float64 {
	const fullAt = 50000
	if capital >= fullAt {
		return 100
	}
	if capital <= 0 {
		return 0
	}
	return capital / fullAt * 100
}

// incomeScore is driven by free cash flow ratio: (income - obligations) /
// income. 100 at ratio 0.5+, linear below, 0 when obligations consume
// income or income is zero.
func incomeScore(income, obligations float64) float64 {
	if income <= 0 {
		return 0
	}
	ratio := (income - obligations) / income
	if ratio <= 0 {
		return 0
	}
	if ratio >= 0.5 {
		return 100
	}
	return ratio / 0.5 * 100
}

// experienceScore: 100 at 10+ years, linear below.
func experienceScore(years float64) float64 {
	if years >= 10 {
		return 100
	}
	if years <= 0 {
		return 0
	}
	return years * 10
}

// commitmentScore: 100 at 20+ hours per week, linear below.
func commitmentScore(hours float64) float64 {
	if hours >= 20 {
		return 100
	}
	if hours <= 0 {
		return 0
	}
	return hours * 5
}

// tierFor maps the composite onto the threshold table.
//
//	85+  platinum
//	70+  gold
//	55+  silver
//	40+  conditional
//	else declined
func tierFor(composite float64) PartnershipTier {
	switch {
	case composite >= 85:
		return TierPlatinum
	case composite >= 70:
		return TierGold
	case composite >= 55:
		return TierSilver
	case composite >= 40:
		return TierConditional
	default:
		return TierDeclined
	}
}
