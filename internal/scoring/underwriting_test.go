package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnderwriteKnownComposite(t *testing.T) {
	// All categories maxed: composite is exactly 100 and tier platinum.
	in := UnderwritingInput{
		CapitalAvailable:   50000,
		CreditTier:         CreditExcellent,
		MonthlyIncome:      10000,
		MonthlyObligations: 2000, // ratio 0.8 -> capped 100
		YearsExperience:    10,
		HoursPerWeek:       20,
	}

	r, err := Underwrite(in)
	require.NoError(t, err)
	assert.InDelta(t, 100, r.Composite, 1e-9)
	assert.Equal(t, TierPlatinum, r.Tier)
}

func TestUnderwriteDocumentedWeightedSum(t *testing.T) {
	// Mid-range applicant, verify the documented weighted sum exactly:
	// capital  25000 -> 50
	// credit   good  -> 80
	// income   6000/3000 -> ratio 0.5 -> 100
	// exp      5y    -> 50
	// hours    10    -> 50
	// composite = .30*50 + .25*80 + .20*100 + .15*50 + .10*50 = 67.5
	in := UnderwritingInput{
		CapitalAvailable:   25000,
		CreditTier:         CreditGood,
		MonthlyIncome:      6000,
		MonthlyObligations: 3000,
		YearsExperience:    5,
		HoursPerWeek:       10,
	}

	r, err := Underwrite(in)
	require.NoError(t, err)

	assert.InDelta(t, 50, r.CapitalScore, 1e-9)
	assert.InDelta(t, 80, r.CreditScore, 1e-9)
	assert.InDelta(t, 100, r.IncomeScore, 1e-9)
	assert.InDelta(t, 50, r.ExperienceScore, 1e-9)
	assert.InDelta(t, 50, r.CommitmentScore, 1e-9)
	assert.InDelta(t, 67.5, r.Composite, 1e-9)
	assert.Equal(t, TierSilver, r.Tier)
}

func TestUnderwriteTierBoundaries(t *testing.T) {
	tests := []struct {
		composite float64
		want      PartnershipTier
	}{
		{100, TierPlatinum},
		{85, TierPlatinum},
		{84.999, TierGold},
		{70, TierGold},
		{69.999, TierSilver},
		{55, TierSilver},
		{54.999, TierConditional},
		{40, TierConditional},
		{39.999, TierDeclined},
		{0, TierDeclined},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tierFor(tt.composite), "composite %v", tt.composite)
	}
}

func TestUnderwriteEdgeInputs(t *testing.T) {
	t.Run("zero income zeroes income score", func(t *testing.T) {
		r, err := Underwrite(UnderwritingInput{
			CreditTier:    CreditPoor,
			MonthlyIncome: 0,
		})
		require.NoError(t, err)
		assert.Zero(t, r.IncomeScore)
		assert.Equal(t, TierDeclined, r.Tier)
	})

	t.Run("obligations above income zero the ratio", func(t *testing.T) {
		r, err := Underwrite(UnderwritingInput{
			CreditTier:         CreditFair,
			MonthlyIncome:      3000,
			MonthlyObligations: 4000,
		})
		require.NoError(t, err)
		assert.Zero(t, r.IncomeScore)
	})

	t.Run("unknown credit tier errors", func(t *testing.T) {
		_, err := Underwrite(UnderwritingInput{CreditTier: "stellar"})
		require.Error(t, err)
	})

	t.Run("categories cap at 100", func(t *testing.T) {
		r, err := Underwrite(UnderwritingInput{
			CapitalAvailable: 1_000_000,
			CreditTier:       CreditExcellent,
			MonthlyIncome:    50000,
			YearsExperience:  40,
			HoursPerWeek:     80,
		})
		require.NoError(t, err)
		assert.InDelta(t, 100, r.CapitalScore, 1e-9)
		assert.InDelta(t, 100, r.ExperienceScore, 1e-9)
		assert.InDelta(t, 100, r.CommitmentScore, 1e-9)
	})
}
