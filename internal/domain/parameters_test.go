package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultParametersAreValid(t *testing.T) {
	p := DefaultParameters()
	require.NoError(t, p.Validate())
	assert.True(t, p.ConsiderSequenceRisk, "sequence risk defaults to enabled")
	assert.Equal(t, TaxNone, p.TaxRegime, "tax defaults to the none regime")
}

func TestValidateRejectsOutOfRangeFields(t *testing.T) {
	tests := []struct {
		name      string
		customize func(*SimulationParameters)
		field     string
	}{
		{
			name:      "unknown mode",
			customize: func(p *SimulationParameters) { p.Mode = "turbo" },
			field:     "mode",
		},
		{
			name:      "unknown strategy",
			customize: func(p *SimulationParameters) { p.WithdrawalStrategy = "yolo" },
			field:     "withdrawal_strategy",
		},
		{
			name:      "min above max",
			customize: func(p *SimulationParameters) { p.RateMin = 15; p.RateMean = 15 },
			field:     "rate_min",
		},
		{
			name:      "mean outside bounds",
			customize: func(p *SimulationParameters) { p.RateMean = 20 },
			field:     "rate_mean",
		},
		{
			name:      "volatility mean outside bounds",
			customize: func(p *SimulationParameters) { p.VolatilityMean = 99 },
			field:     "volatility_mean",
		},
		{
			name:      "zero horizon",
			customize: func(p *SimulationParameters) { p.AccumulationMonths = 0 },
			field:     "accumulation_months",
		},
		{
			name:      "horizon above 100 years",
			customize: func(p *SimulationParameters) { p.AccumulationMonths = 1201 },
			field:     "accumulation_months",
		},
		{
			name:      "iterations below minimum",
			customize: func(p *SimulationParameters) { p.Iterations = 999 },
			field:     "iterations",
		},
		{
			name:      "iterations above maximum",
			customize: func(p *SimulationParameters) { p.Iterations = 50001 },
			field:     "iterations",
		},
		{
			name:      "negative initial amount",
			customize: func(p *SimulationParameters) { p.InitialAmount = -1 },
			field:     "initial_amount",
		},
		{
			name:      "tax rate above 100",
			customize: func(p *SimulationParameters) { p.TaxRate = 101 },
			field:     "tax_rate",
		},
		{
			name: "lump sum outside horizon",
			customize: func(p *SimulationParameters) {
				p.LumpSumDeposits = []LumpSumDeposit{{Month: 500, Amount: 100}}
			},
			field: "lump_sum_deposits",
		},
		{
			name: "withdrawal rate zero in withdrawal mode",
			customize: func(p *SimulationParameters) {
				p.Mode = ModeWithdrawal
				p.TargetWithdrawalRate = 0
			},
			field: "target_withdrawal_rate",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := DefaultParameters()
			tc.customize(&p)

			err := p.Validate()
			require.Error(t, err)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr), "expected a ValidationError, got %T", err)
			assert.Equal(t, tc.field, vErr.Field)
		})
	}
}

func TestValidateBoundaryIterations(t *testing.T) {
	p := DefaultParameters()
	p.Iterations = MinIterations
	assert.NoError(t, p.Validate())

	p.Iterations = MaxIterations
	assert.NoError(t, p.Validate())
}

func TestValidateWithdrawalModeIgnoresAccumulationHorizon(t *testing.T) {
	p := DefaultParameters()
	p.Mode = ModeWithdrawal
	p.AccumulationMonths = 0 // unused in withdrawal mode
	assert.NoError(t, p.Validate())
}
