package scoring

import (
	"fmt"
	"math"
)

// EconomicsInput holds the venture model assumptions.
type EconomicsInput struct {
	// MonthlyLeads is expected leads per month.
	MonthlyLeads float64 `json:"monthly_leads" validate:"gte=0"`
	// ConversionRate is the lead-to-client conversion rate (0-1).
	ConversionRate float64 `json:"conversion_rate" validate:"gte=0,lte=1"`
	// PricePerClient is monthly revenue per client in dollars.
	PricePerClient float64 `json:"price_per_client" validate:"gte=0"`
	// ChurnRate is the monthly client churn rate (0-1).
	ChurnRate float64 `json:"churn_rate" validate:"gte=0,lte=1"`
	// FixedCosts is fixed monthly costs in dollars.
	FixedCosts float64 `json:"fixed_costs" validate:"gte=0"`
	// VariableCostPerClient is monthly variable cost per client in dollars.
	VariableCostPerClient float64 `json:"variable_cost_per_client" validate:"gte=0"`
	// AdSpend is monthly marketing spend in dollars.
	AdSpend float64 `json:"ad_spend" validate:"gte=0"`
	// InitialInvestment is the upfront investment in dollars.
	InitialInvestment float64 `json:"initial_investment" validate:"gte=0"`
}

// EconomicsResult carries the derived monthly figures.
type EconomicsResult struct {
	// SteadyStateClients is new clients per month divided by churn.
	SteadyStateClients float64 `json:"steady_state_clients"`
	MonthlyRevenue     float64 `json:"monthly_revenue"`
	MonthlyExpenses    float64 `json:"monthly_expenses"`
	MonthlyProfit      float64 `json:"monthly_profit"`
	// AnnualROI is 12-month profit over initial investment, as a ratio.
	AnnualROI float64 `json:"annual_roi"`
	// BreakEvenMonths is months to recover the initial investment.
	// Zero investment breaks even immediately; non-positive profit never
	// breaks even and is reported as -1.
	BreakEvenMonths float64 `json:"break_even_months"`
}

// SensitivityVariable names one swept assumption.
type SensitivityVariable string

const (
	VarPrice      SensitivityVariable = "price_per_client"
	VarConversion SensitivityVariable = "conversion_rate"
	VarChurn      SensitivityVariable = "churn_rate"
	VarAdSpend    SensitivityVariable = "ad_spend"
)

// sensitivitySteps is the fixed sweep grid applied to each variable.
var sensitivitySteps = []float64{-0.20, -0.10, 0, 0.10, 0.20}

// SensitivityPoint is one cell of the sweep.
type SensitivityPoint struct {
	// Delta is the relative change applied to the variable (-0.2..0.2).
	Delta         float64 `json:"delta"`
	MonthlyProfit float64 `json:"monthly_profit"`
}

// SensitivityRow is the sweep for one variable.
type SensitivityRow struct {
	Variable SensitivityVariable `json:"variable"`
	Points   []SensitivityPoint  `json:"points"`
}

// ComputeEconomics derives revenue, expenses, ROI and break-even from
// the model assumptions.
//
// Formulas:
//
//	newClients   = leads * conversion
//	steadyState  = newClients / churn        (churn 0 treated as 1 client-month horizon: steadyState = newClients * 12)
//	revenue      = steadyState * price
//	expenses     = fixed + adSpend + steadyState * variableCost
//	profit       = revenue - expenses
//	annualROI    = profit * 12 / investment
//	breakEven    = investment / profit       (months)
func ComputeEconomics(in EconomicsInput) (EconomicsResult, error) {
	if in.ConversionRate < 0 || in.ConversionRate > 1 {
		return EconomicsResult{}, fmt.Errorf("conversion rate %v out of range [0,1]", in.ConversionRate)
	}
	if in.ChurnRate < 0 || in.ChurnRate > 1 {
		return EconomicsResult{}, fmt.Errorf("churn rate %v out of range [0,1]", in.ChurnRate)
	}

	newClients := in.MonthlyLeads * in.ConversionRate

	var steadyState float64
	if in.ChurnRate > 0 {
		steadyState = newClients / in.ChurnRate
	} else {
		// No churn: cap the model at a 12-month accumulation horizon.
		steadyState = newClients * 12
	}

	revenue := steadyState * in.PricePerClient
	expenses := in.FixedCosts + in.AdSpend + steadyState*in.VariableCostPerClient
	profit := revenue - expenses

	r := EconomicsResult{
		SteadyStateClients: steadyState,
		MonthlyRevenue:     revenue,
		MonthlyExpenses:    expenses,
		MonthlyProfit:      profit,
	}

	if in.InitialInvestment > 0 {
		r.AnnualROI = profit * 12 / in.InitialInvestment
		if profit > 0 {
			r.BreakEvenMonths = in.InitialInvestment / profit
		} else {
			r.BreakEvenMonths = -1
		}
	}

	return r, nil
}

// Sensitivity sweeps price, conversion, churn and ad spend through the
// fixed grid and reports monthly profit at each point. Swept rates are
// clamped to [0,1] so the grid never produces an invalid model.
func Sensitivity(in EconomicsInput) ([]SensitivityRow, error) {
	if _, err := ComputeEconomics(in); err != nil {
		return nil, err
	}

	vars := []SensitivityVariable{VarPrice, VarConversion, VarChurn, VarAdSpend}
	rows := make([]SensitivityRow, 0, len(vars))

	for _, v := range vars {
		row := SensitivityRow{Variable: v, Points: make([]SensitivityPoint, 0, len(sensitivitySteps))}
		for _, delta := range sensitivitySteps {
			adjusted := applyDelta(in, v, delta)
			res, err := ComputeEconomics(adjusted)
			if err != nil {
				return nil, fmt.Errorf("sweeping %s at %+.0f%%: %w", v, delta*100, err)
			}
			row.Points = append(row.Points, SensitivityPoint{
				Delta:         delta,
				MonthlyProfit: res.MonthlyProfit,
			})
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// applyDelta returns a copy of in with one variable scaled by (1+delta).
func applyDelta(in EconomicsInput, v SensitivityVariable, delta float64) EconomicsInput {
	scale := 1 + delta
	switch v {
	case VarPrice:
		in.PricePerClient *= scale
	case VarConversion:
		in.ConversionRate = clampRate(in.ConversionRate * scale)
	case VarChurn:
		in.ChurnRate = clampRate(in.ChurnRate * scale)
	case VarAdSpend:
		in.AdSpend *= scale
	}
	return in
}

func clampRate(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
