package domain

import "fmt"

// CalculationMode selects which simulation phases are run.
type CalculationMode string

const (
	ModeAccumulation CalculationMode = "accumulation"
	ModeWithdrawal   CalculationMode = "withdrawal"
	ModeMixed        CalculationMode = "mixed"
)

// IsValid reports whether the mode is one of the supported values.
func (m CalculationMode) IsValid() bool {
	switch m {
	case ModeAccumulation, ModeWithdrawal, ModeMixed:
		return true
	}
	return false
}

// DepositType describes how contributions enter the portfolio.
type DepositType string

const (
	DepositMonthly DepositType = "monthly"
	DepositLumpSum DepositType = "lump_sum"
)

func (d DepositType) IsValid() bool {
	return d == DepositMonthly || d == DepositLumpSum
}

// TaxRegime selects how realized gains are taxed at the end of the
// accumulation phase.
type TaxRegime string

const (
	TaxNone   TaxRegime = "none"
	TaxSimple TaxRegime = "simple"
	TaxGerman TaxRegime = "german"
)

func (t TaxRegime) IsValid() bool {
	return t == TaxNone || t == TaxSimple || t == TaxGerman
}

// WithdrawalStrategy selects how the monthly withdrawal amount is derived.
type WithdrawalStrategy string

const (
	StrategyFixedPercentage WithdrawalStrategy = "fixed_percentage"
	StrategyFixedAmount     WithdrawalStrategy = "fixed_amount"
	StrategyDynamic         WithdrawalStrategy = "dynamic"
)

func (s WithdrawalStrategy) IsValid() bool {
	return s == StrategyFixedPercentage || s == StrategyFixedAmount || s == StrategyDynamic
}

// LumpSumDeposit is a one-off contribution applied at a specific month of the
// accumulation phase.
type LumpSumDeposit struct {
	Month  int     `yaml:"month" json:"month"`
	Amount float64 `yaml:"amount" json:"amount"`
}

// Simulation bounds. Iteration limits keep a single request within a
// predictable CPU budget; horizon limits are sanity bounds for human lifetimes.
const (
	MinIterations = 1000
	MaxIterations = 50000
	MinHorizon    = 1
	MaxHorizon    = 1200 // 100 years in months
)

// SimulationParameters is the validated input record for one engine run.
// Rates and volatilities are annual percentages (7.5 means 7.5% per year).
type SimulationParameters struct {
	Mode        CalculationMode `yaml:"mode" json:"mode"`
	DepositType DepositType     `yaml:"deposit_type" json:"deposit_type"`

	InitialAmount   float64          `yaml:"initial_amount" json:"initial_amount"`
	MonthlyDeposit  float64          `yaml:"monthly_deposit" json:"monthly_deposit"`
	LumpSumDeposits []LumpSumDeposit `yaml:"lump_sum_deposits,omitempty" json:"lump_sum_deposits,omitempty"`

	RateMin  float64 `yaml:"rate_min" json:"rate_min"`
	RateMean float64 `yaml:"rate_mean" json:"rate_mean"`
	RateMax  float64 `yaml:"rate_max" json:"rate_max"`

	VolatilityMin  float64 `yaml:"volatility_min" json:"volatility_min"`
	VolatilityMean float64 `yaml:"volatility_mean" json:"volatility_mean"`
	VolatilityMax  float64 `yaml:"volatility_max" json:"volatility_max"`

	AccumulationMonths int `yaml:"accumulation_months" json:"accumulation_months"`
	WithdrawalMonths   int `yaml:"withdrawal_months" json:"withdrawal_months"`

	InflationRate       float64 `yaml:"inflation_rate" json:"inflation_rate"`
	InflationVolatility float64 `yaml:"inflation_volatility" json:"inflation_volatility"`

	TaxRegime TaxRegime `yaml:"tax_regime" json:"tax_regime"`
	TaxRate   float64   `yaml:"tax_rate" json:"tax_rate"`

	ManagementFee float64 `yaml:"management_fee" json:"management_fee"`

	WithdrawalStrategy   WithdrawalStrategy `yaml:"withdrawal_strategy" json:"withdrawal_strategy"`
	TargetWithdrawalRate float64            `yaml:"target_withdrawal_rate" json:"target_withdrawal_rate"`

	ConsiderSequenceRisk bool    `yaml:"consider_sequence_risk" json:"consider_sequence_risk"`
	Autocorrelation      float64 `yaml:"autocorrelation" json:"autocorrelation"`

	Iterations int   `yaml:"iterations" json:"iterations"`
	Seed       int64 `yaml:"seed,omitempty" json:"seed,omitempty"`
}

// DefaultParameters returns a parameter set with documented defaults applied.
// Callers unmarshal user input over this value so that absent fields keep
// their defaults.
func DefaultParameters() SimulationParameters {
	return SimulationParameters{
		Mode:                 ModeAccumulation,
		DepositType:          DepositMonthly,
		InitialAmount:        10000,
		MonthlyDeposit:       500,
		RateMin:              5.0,
		RateMean:             8.0,
		RateMax:              12.0,
		VolatilityMin:        10.0,
		VolatilityMean:       15.0,
		VolatilityMax:        25.0,
		AccumulationMonths:   240,
		WithdrawalMonths:     360,
		InflationRate:        2.5,
		InflationVolatility:  1.0,
		TaxRegime:            TaxNone,
		TaxRate:              0,
		ManagementFee:        0.5,
		WithdrawalStrategy:   StrategyFixedPercentage,
		TargetWithdrawalRate: 4.0,
		ConsiderSequenceRisk: true,
		Autocorrelation:      0.1,
		Iterations:           10000,
	}
}

// ValidationError reports a single offending parameter field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Validate checks all parameter bounds and returns a field-specific error for
// the first violation found. It must pass before any trial runs.
func (p *SimulationParameters) Validate() error {
	if !p.Mode.IsValid() {
		return invalid("mode", "must be one of accumulation, withdrawal, mixed; got %q", p.Mode)
	}
	if !p.DepositType.IsValid() {
		return invalid("deposit_type", "must be one of monthly, lump_sum; got %q", p.DepositType)
	}
	if !p.TaxRegime.IsValid() {
		return invalid("tax_regime", "must be one of none, simple, german; got %q", p.TaxRegime)
	}
	if !p.WithdrawalStrategy.IsValid() {
		return invalid("withdrawal_strategy", "must be one of fixed_percentage, fixed_amount, dynamic; got %q", p.WithdrawalStrategy)
	}
	if p.InitialAmount < 0 {
		return invalid("initial_amount", "cannot be negative")
	}
	if p.MonthlyDeposit < 0 {
		return invalid("monthly_deposit", "cannot be negative")
	}
	for i, ls := range p.LumpSumDeposits {
		if ls.Month < 0 || ls.Month >= p.AccumulationMonths {
			return invalid("lump_sum_deposits", "deposit %d month %d outside accumulation horizon", i, ls.Month)
		}
		if ls.Amount < 0 {
			return invalid("lump_sum_deposits", "deposit %d amount cannot be negative", i)
		}
	}
	if p.RateMin > p.RateMax {
		return invalid("rate_min", "must not exceed rate_max (%.2f > %.2f)", p.RateMin, p.RateMax)
	}
	if p.RateMean < p.RateMin || p.RateMean > p.RateMax {
		return invalid("rate_mean", "must lie within [rate_min, rate_max]; got %.2f outside [%.2f, %.2f]",
			p.RateMean, p.RateMin, p.RateMax)
	}
	if p.VolatilityMin < 0 {
		return invalid("volatility_min", "cannot be negative")
	}
	if p.VolatilityMin > p.VolatilityMax {
		return invalid("volatility_min", "must not exceed volatility_max (%.2f > %.2f)", p.VolatilityMin, p.VolatilityMax)
	}
	if p.VolatilityMean < p.VolatilityMin || p.VolatilityMean > p.VolatilityMax {
		return invalid("volatility_mean", "must lie within [volatility_min, volatility_max]; got %.2f outside [%.2f, %.2f]",
			p.VolatilityMean, p.VolatilityMin, p.VolatilityMax)
	}
	if p.Mode != ModeWithdrawal {
		if p.AccumulationMonths < MinHorizon || p.AccumulationMonths > MaxHorizon {
			return invalid("accumulation_months", "must be within [%d, %d]; got %d", MinHorizon, MaxHorizon, p.AccumulationMonths)
		}
	}
	if p.Mode != ModeAccumulation {
		if p.WithdrawalMonths < MinHorizon || p.WithdrawalMonths > MaxHorizon {
			return invalid("withdrawal_months", "must be within [%d, %d]; got %d", MinHorizon, MaxHorizon, p.WithdrawalMonths)
		}
		if p.TargetWithdrawalRate <= 0 || p.TargetWithdrawalRate > 100 {
			return invalid("target_withdrawal_rate", "must be within (0, 100]; got %.2f", p.TargetWithdrawalRate)
		}
	}
	if p.InflationRate < -10 || p.InflationRate > 50 {
		return invalid("inflation_rate", "must be within [-10, 50]; got %.2f", p.InflationRate)
	}
	if p.InflationVolatility < 0 {
		return invalid("inflation_volatility", "cannot be negative")
	}
	if p.TaxRate < 0 || p.TaxRate > 100 {
		return invalid("tax_rate", "must be within [0, 100]; got %.2f", p.TaxRate)
	}
	if p.ManagementFee < 0 || p.ManagementFee > 10 {
		return invalid("management_fee", "must be within [0, 10]; got %.2f", p.ManagementFee)
	}
	if p.Autocorrelation < 0 || p.Autocorrelation >= 1 {
		return invalid("autocorrelation", "must be within [0, 1); got %.2f", p.Autocorrelation)
	}
	if p.Iterations < MinIterations || p.Iterations > MaxIterations {
		return invalid("iterations", "must be within [%d, %d]; got %d", MinIterations, MaxIterations, p.Iterations)
	}
	return nil
}
