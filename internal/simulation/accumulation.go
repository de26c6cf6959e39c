package simulation

import (
	"math"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// AccumulationSimulator compounds a portfolio balance over one scenario path,
// applying contributions, the pro-rated management fee, deferred tax on the
// realized gain and inflation adjustment of the final value.
type AccumulationSimulator struct {
	InitialAmount  float64
	MonthlyDeposit float64
	LumpSums       []domain.LumpSumDeposit
	DepositType    domain.DepositType

	AnnualFeePercent float64
	InflationRate    float64 // annual percent, used to index monthly deposits

	TaxRegime      domain.TaxRegime
	TaxRatePercent float64
}

// NewAccumulationSimulator builds a simulator from the validated parameters.
func NewAccumulationSimulator(p domain.SimulationParameters) *AccumulationSimulator {
	return &AccumulationSimulator{
		InitialAmount:    p.InitialAmount,
		MonthlyDeposit:   p.MonthlyDeposit,
		LumpSums:         p.LumpSumDeposits,
		DepositType:      p.DepositType,
		AnnualFeePercent: p.ManagementFee,
		InflationRate:    p.InflationRate,
		TaxRegime:        p.TaxRegime,
		TaxRatePercent:   p.TaxRate,
	}
}

// taxFreeAllowance is the flat gains allowance applied by the german regime
// (simplified Freibetrag).
const taxFreeAllowance = 1000.0

// Run simulates the accumulation phase over the given path and returns the
// trial outcome. The path is consumed read-only and may be discarded by the
// caller afterwards.
func (s *AccumulationSimulator) Run(path ScenarioPath) domain.TrialResult {
	months := len(path.Returns)
	balance := s.InitialAmount
	costBasis := s.InitialAmount
	monthlyFee := s.AnnualFeePercent / 12 / 100
	inflationFactorTotal := 1.0

	balances := make([]float64, months)

	for m := 0; m < months; m++ {
		balance *= 1 + (path.Returns[m] - monthlyFee)

		if s.DepositType == domain.DepositMonthly {
			// Contributions grow with inflation so the saver's real
			// contribution stays level.
			deposit := s.MonthlyDeposit * math.Pow(1+s.InflationRate/100, float64(m)/12)
			balance += deposit
			costBasis += deposit
		}
		for _, ls := range s.LumpSums {
			if ls.Month == m {
				balance += ls.Amount
				costBasis += ls.Amount
			}
		}

		// A pathological draw must not poison aggregate statistics.
		if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
			balance = 0
		}

		inflationFactorTotal *= 1 + path.Inflation[m]
		balances[m] = balance
	}

	quarter := months / 4
	if quarter == 0 {
		quarter = 1
	}
	early := 0.0
	for m := 0; m < quarter; m++ {
		early += path.Returns[m]
	}

	real := balance
	if inflationFactorTotal > 0 {
		real = balance / inflationFactorTotal
	}

	return domain.TrialResult{
		FinalBalance:    balance,
		RealBalance:     real,
		AfterTaxBalance: s.applyTax(balance, costBasis),
		TotalInvested:   costBasis,
		MonthlyBalances: balances,
		Success:         true,
		DepletionMonth:  -1,
		EarlyAvgReturn:  early / float64(quarter),
	}
}

// applyTax taxes the realized gain (balance above cost basis) according to
// the configured regime. Principal is never taxed.
func (s *AccumulationSimulator) applyTax(balance, costBasis float64) float64 {
	if s.TaxRegime == domain.TaxNone || balance <= costBasis {
		return balance
	}

	gain := balance - costBasis
	var tax float64
	switch s.TaxRegime {
	case domain.TaxGerman:
		taxable := math.Max(0, gain-taxFreeAllowance)
		tax = taxable * s.TaxRatePercent / 100
	case domain.TaxSimple:
		tax = gain * s.TaxRatePercent / 100
	}
	return balance - tax
}
