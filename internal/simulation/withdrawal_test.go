package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcgo/investment-calculator/internal/domain"
)

func TestWithdrawalSurvivesModestRate(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyFixedPercentage
	p.TargetWithdrawalRate = 4
	p.ManagementFee = 0

	// 0.6% monthly growth comfortably outruns a 4% annual withdrawal.
	result := NewWithdrawalSimulator(p, 500000).Run(flatPath(360, 0.006))

	assert.True(t, result.Success)
	assert.Equal(t, -1, result.DepletionMonth)
	assert.Greater(t, result.FinalBalance, 0.0)
	assert.Greater(t, result.TotalWithdrawn, 0.0)
}

func TestWithdrawalDepletesUnderExcessiveRate(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyFixedAmount
	p.TargetWithdrawalRate = 30
	p.ManagementFee = 0
	p.InflationRate = 0

	result := NewWithdrawalSimulator(p, 100000).Run(flatPath(360, 0))

	assert.False(t, result.Success)
	require.GreaterOrEqual(t, result.DepletionMonth, 0)
	assert.Less(t, result.DepletionMonth, 360)
	assert.InDelta(t, 0, result.FinalBalance, 1e-9)

	// Income after depletion stays at zero.
	for m := result.DepletionMonth + 1; m < 360; m++ {
		assert.Zero(t, result.MonthlyIncome[m], "month %d", m)
	}
	// Total withdrawn can never exceed what the portfolio plus growth held.
	assert.LessOrEqual(t, result.TotalWithdrawn, 100000.0+1e-6)
}

func TestWithdrawalFixedPercentageTracksLiveBalance(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyFixedPercentage
	p.TargetWithdrawalRate = 6
	p.ManagementFee = 0

	// A crash early in the horizon must immediately shrink withdrawals:
	// the strategy reads the live balance, never a smoothed one.
	path := flatPath(24, 0)
	path.Returns[1] = -0.5

	result := NewWithdrawalSimulator(p, 100000).Run(path)

	require.True(t, len(result.MonthlyIncome) >= 3)
	assert.Less(t, result.MonthlyIncome[1], result.MonthlyIncome[0]*0.6,
		"income after a 50%% crash should drop by roughly half")
}

func TestWithdrawalFixedAmountIndexedToInflation(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyFixedAmount
	p.TargetWithdrawalRate = 1 // small enough to survive the horizon
	p.ManagementFee = 0
	p.InflationRate = 5

	result := NewWithdrawalSimulator(p, 1000000).Run(flatPath(120, 0.01))

	require.True(t, result.Success)
	assert.Greater(t, result.MonthlyIncome[119], result.MonthlyIncome[0],
		"indexed withdrawals should grow with inflation")
}

func TestWithdrawalDynamicStrategyClampsAdjustment(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyDynamic
	p.TargetWithdrawalRate = 4
	p.ManagementFee = 0

	base := 100000 * 4.0 / 100 / 12

	// Strong growth: withdrawal capped at 1.5x base.
	up := NewWithdrawalSimulator(p, 100000).Run(flatPath(240, 0.02))
	require.True(t, up.Success)
	for m := 1; m < len(up.MonthlyIncome); m++ {
		assert.LessOrEqual(t, up.MonthlyIncome[m], base*1.5+1e-9)
	}

	// Steady decline: withdrawal floored at 0.5x base while funded.
	down := NewWithdrawalSimulator(p, 100000).Run(flatPath(240, -0.02))
	for m := 1; m < len(down.MonthlyIncome); m++ {
		if down.MonthlyBalances[m] == 0 {
			break // depleted; the last withdrawal is whatever remained
		}
		assert.GreaterOrEqual(t, down.MonthlyIncome[m], base*0.5-1e-9)
	}
}

func TestWithdrawalManagementFeeDragsOnSurvival(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyFixedAmount
	p.TargetWithdrawalRate = 7
	p.InflationRate = 0

	path := flatPath(360, 0.004)

	p.ManagementFee = 0
	noFee := NewWithdrawalSimulator(p, 500000).Run(path)

	p.ManagementFee = 2.0
	withFee := NewWithdrawalSimulator(p, 500000).Run(path)

	if noFee.Success && withFee.Success {
		assert.Less(t, withFee.FinalBalance, noFee.FinalBalance)
	} else {
		// The fee can only ever hurt.
		assert.True(t, noFee.Success || !withFee.Success)
	}
}

func TestWithdrawalClampsDegeneratePath(t *testing.T) {
	p := domain.DefaultParameters()
	p.WithdrawalStrategy = domain.StrategyFixedPercentage
	p.ManagementFee = 0

	path := flatPath(12, 0)
	path.Returns[2] = -2.0 // drives the balance negative before any clamp

	result := NewWithdrawalSimulator(p, 10000).Run(path)
	assert.False(t, result.Success)
	assert.False(t, math.IsNaN(result.FinalBalance))
	assert.Equal(t, 2, result.DepletionMonth)
}
