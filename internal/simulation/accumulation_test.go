package simulation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// flatPath builds a path with a constant monthly return and zero inflation.
func flatPath(months int, monthlyReturn float64) ScenarioPath {
	p := ScenarioPath{
		Returns:   make([]float64, months),
		Inflation: make([]float64, months),
	}
	for i := range p.Returns {
		p.Returns[i] = monthlyReturn
	}
	return p
}

func TestAccumulationMatchesClosedFormCompounding(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 10000
	p.MonthlyDeposit = 0
	p.ManagementFee = 0
	p.InflationRate = 0

	const months = 120
	const r = 0.005
	result := NewAccumulationSimulator(p).Run(flatPath(months, r))

	want := 10000 * math.Pow(1+r, months)
	assert.InDelta(t, want, result.FinalBalance, want*1e-9)
	assert.InDelta(t, 10000, result.TotalInvested, 1e-9)
}

func TestAccumulationTracksCostBasis(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 1000
	p.MonthlyDeposit = 100
	p.InflationRate = 0 // no deposit indexing
	p.ManagementFee = 0

	const months = 24
	result := NewAccumulationSimulator(p).Run(flatPath(months, 0))

	// With zero returns the balance equals exactly what was contributed.
	assert.InDelta(t, 1000+100*months, result.TotalInvested, 1e-9)
	assert.InDelta(t, result.TotalInvested, result.FinalBalance, 1e-9)
}

func TestAccumulationInflationIndexedDeposits(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 0
	p.MonthlyDeposit = 100
	p.InflationRate = 3
	p.ManagementFee = 0

	result := NewAccumulationSimulator(p).Run(flatPath(36, 0))

	// Indexed deposits must contribute strictly more than flat ones.
	assert.Greater(t, result.TotalInvested, 100.0*36)
	// Invested never exceeds what full indexing at the final month implies.
	assert.Less(t, result.TotalInvested, 100*math.Pow(1.03, 3)*36)
}

func TestAccumulationLumpSumDeposits(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 1000
	p.MonthlyDeposit = 0
	p.DepositType = domain.DepositLumpSum
	p.LumpSumDeposits = []domain.LumpSumDeposit{{Month: 5, Amount: 500}}
	p.ManagementFee = 0

	result := NewAccumulationSimulator(p).Run(flatPath(12, 0))

	assert.InDelta(t, 1500, result.FinalBalance, 1e-9)
	assert.InDelta(t, 1500, result.TotalInvested, 1e-9)
}

func TestAccumulationManagementFeeReducesBalance(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 10000
	p.MonthlyDeposit = 0
	p.InflationRate = 0

	p.ManagementFee = 0
	noFee := NewAccumulationSimulator(p).Run(flatPath(120, 0.005))

	p.ManagementFee = 1.0
	withFee := NewAccumulationSimulator(p).Run(flatPath(120, 0.005))

	assert.Less(t, withFee.FinalBalance, noFee.FinalBalance)
}

func TestAccumulationTaxRegimes(t *testing.T) {
	base := domain.DefaultParameters()
	base.InitialAmount = 10000
	base.MonthlyDeposit = 0
	base.ManagementFee = 0
	base.InflationRate = 0
	path := flatPath(120, 0.01)

	base.TaxRegime = domain.TaxNone
	none := NewAccumulationSimulator(base).Run(path)
	assert.InDelta(t, none.FinalBalance, none.AfterTaxBalance, 1e-9, "none regime applies zero tax")

	base.TaxRegime = domain.TaxSimple
	base.TaxRate = 25
	simple := NewAccumulationSimulator(base).Run(path)
	gain := simple.FinalBalance - simple.TotalInvested
	require.Greater(t, gain, 0.0)
	assert.InDelta(t, simple.FinalBalance-gain*0.25, simple.AfterTaxBalance, 1e-6)

	base.TaxRegime = domain.TaxGerman
	german := NewAccumulationSimulator(base).Run(path)
	// The allowance shields the first EUR 1000 of gains.
	assert.InDelta(t, german.FinalBalance-(gain-1000)*0.25, german.AfterTaxBalance, 1e-6)
	assert.Greater(t, german.AfterTaxBalance, simple.AfterTaxBalance)
}

func TestAccumulationNeverTaxesPrincipal(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 10000
	p.MonthlyDeposit = 0
	p.ManagementFee = 0
	p.InflationRate = 0
	p.TaxRegime = domain.TaxSimple
	p.TaxRate = 50

	// A losing path: balance ends below cost basis, so no tax applies.
	result := NewAccumulationSimulator(p).Run(flatPath(12, -0.01))
	assert.Less(t, result.FinalBalance, result.TotalInvested)
	assert.InDelta(t, result.FinalBalance, result.AfterTaxBalance, 1e-9)
}

func TestAccumulationRealBalanceDeflated(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 10000
	p.MonthlyDeposit = 0
	p.ManagementFee = 0
	p.InflationRate = 0

	path := flatPath(12, 0.01)
	for i := range path.Inflation {
		path.Inflation[i] = 0.002
	}

	result := NewAccumulationSimulator(p).Run(path)
	want := result.FinalBalance / math.Pow(1.002, 12)
	assert.InDelta(t, want, result.RealBalance, 1e-6)
}

func TestAccumulationClampsDegenerateBalance(t *testing.T) {
	p := domain.DefaultParameters()
	p.InitialAmount = 1000
	p.MonthlyDeposit = 0
	p.ManagementFee = 0
	p.InflationRate = 0

	// A catastrophic month wipes out more than the whole balance.
	path := flatPath(3, 0)
	path.Returns[1] = -1.5

	result := NewAccumulationSimulator(p).Run(path)
	assert.False(t, math.IsNaN(result.FinalBalance))
	assert.GreaterOrEqual(t, result.FinalBalance, 0.0)
}

func TestAccumulationRecordsMonthlyBalances(t *testing.T) {
	p := domain.DefaultParameters()
	result := NewAccumulationSimulator(p).Run(flatPath(36, 0.005))

	require.Len(t, result.MonthlyBalances, 36)
	assert.InDelta(t, result.MonthlyBalances[35], result.FinalBalance, 1e-9)
}
