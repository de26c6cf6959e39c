package simulation

import (
	"math"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// WithdrawalSimulator draws down a starting balance over one scenario path
// and determines whether it survives the horizon. Withdrawals are always
// computed against the live balance, never a time-averaged one, so poor
// early returns combined with fixed withdrawals compound failure probability
// exactly as sequence-of-returns risk demands.
type WithdrawalSimulator struct {
	StartAmount float64
	Strategy    domain.WithdrawalStrategy
	TargetRate  float64 // annual percent

	AnnualFeePercent float64
	InflationRate    float64 // annual percent, used by the fixed_amount strategy
}

// NewWithdrawalSimulator builds a simulator for the given parameters and
// starting balance. In mixed mode the start amount is the trial's own
// accumulation outcome rather than a shared ensemble mean.
func NewWithdrawalSimulator(p domain.SimulationParameters, startAmount float64) *WithdrawalSimulator {
	return &WithdrawalSimulator{
		StartAmount:      startAmount,
		Strategy:         p.WithdrawalStrategy,
		TargetRate:       p.TargetWithdrawalRate,
		AnnualFeePercent: p.ManagementFee,
		InflationRate:    p.InflationRate,
	}
}

// Run simulates the withdrawal phase over the given path.
func (s *WithdrawalSimulator) Run(path ScenarioPath) domain.TrialResult {
	months := len(path.Returns)
	balance := s.StartAmount
	monthlyFee := s.AnnualFeePercent / 12 / 100
	baseWithdrawal := s.StartAmount * s.TargetRate / 100 / 12

	balances := make([]float64, months)
	incomes := make([]float64, months)

	totalWithdrawn := 0.0
	depletionMonth := -1

	for m := 0; m < months; m++ {
		if depletionMonth >= 0 {
			// Depleted: remaining months record zero balance and income.
			continue
		}

		balance *= 1 + (path.Returns[m] - monthlyFee)
		if math.IsNaN(balance) || math.IsInf(balance, 0) || balance < 0 {
			balance = 0
			depletionMonth = m
			continue
		}

		withdrawal := s.monthlyWithdrawal(balance, baseWithdrawal, m)
		if withdrawal >= balance {
			withdrawal = balance
			balance = 0
			depletionMonth = m
		} else {
			balance -= withdrawal
		}

		totalWithdrawn += withdrawal
		incomes[m] = withdrawal
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

	return domain.TrialResult{
		FinalBalance:    balance,
		Success:         depletionMonth < 0,
		DepletionMonth:  depletionMonth,
		TotalWithdrawn:  totalWithdrawn,
		MonthlyBalances: balances,
		MonthlyIncome:   incomes,
		EarlyAvgReturn:  early / float64(quarter),
	}
}

// monthlyWithdrawal derives this month's withdrawal from the strategy.
func (s *WithdrawalSimulator) monthlyWithdrawal(balance, base float64, month int) float64 {
	switch s.Strategy {
	case domain.StrategyFixedPercentage:
		return balance * s.TargetRate / 100 / 12
	case domain.StrategyDynamic:
		if month == 0 || s.StartAmount <= 0 {
			return base
		}
		factor := balance / s.StartAmount
		factor = math.Max(0.5, math.Min(1.5, factor))
		return base * factor
	default: // fixed_amount, indexed to inflation
		return base * math.Pow(1+s.InflationRate/100, float64(month)/12)
	}
}
