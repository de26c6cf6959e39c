package domain

// TrialResult is the outcome of a single simulated path. It is produced once
// by a simulator, never mutated afterwards, and consumed by the aggregator.
type TrialResult struct {
	Index int `json:"index"`

	FinalBalance    float64 `json:"final_balance"`
	RealBalance     float64 `json:"real_balance"`
	AfterTaxBalance float64 `json:"after_tax_balance"`
	TotalInvested   float64 `json:"total_invested"`

	// Balance at the end of each simulated month, used for the monthly
	// progression bands.
	MonthlyBalances []float64 `json:"-"`

	// Withdrawal-phase fields.
	Success        bool      `json:"success"`
	DepletionMonth int       `json:"depletion_month"` // -1 when the balance never depleted
	TotalWithdrawn float64   `json:"total_withdrawn"`
	MonthlyIncome  []float64 `json:"-"`

	// Mean monthly return over the first quarter of the horizon, kept for
	// sequence-of-returns analysis.
	EarlyAvgReturn float64 `json:"-"`
}

// DistributionStats summarizes the distribution of one ensemble metric.
type DistributionStats struct {
	Mean        float64            `json:"mean"`
	Median      float64            `json:"median"`
	Std         float64            `json:"std"`
	Min         float64            `json:"min"`
	Max         float64            `json:"max"`
	Percentiles map[string]float64 `json:"percentiles"`
	Skewness    float64            `json:"skewness"`
	Kurtosis    float64            `json:"kurtosis"`
}

// MonthlyProgression carries per-month ensemble bands for charting.
type MonthlyProgression struct {
	Months       []int     `json:"months"`
	MeanBalance  []float64 `json:"mean_balance"`
	Percentile5  []float64 `json:"percentile_5"`
	Percentile25 []float64 `json:"percentile_25"`
	Percentile75 []float64 `json:"percentile_75"`
	Percentile95 []float64 `json:"percentile_95"`
}

// InflationImpact compares nominal against purchasing-power-adjusted value.
type InflationImpact struct {
	NominalValue        float64 `json:"nominal_value"`
	RealValue           float64 `json:"real_value"`
	PurchasingPowerLoss float64 `json:"purchasing_power_loss"`
	RealReturnPercent   float64 `json:"real_return_percent"`
}

// TaxImpact compares pre-tax against after-tax value.
type TaxImpact struct {
	PreTaxValue    float64 `json:"pre_tax_value"`
	AfterTaxValue  float64 `json:"after_tax_value"`
	TaxCost        float64 `json:"tax_cost"`
	TaxCostPercent float64 `json:"tax_cost_percent"`
}

// AccumulationRisk holds the risk metrics reported for the accumulation phase.
type AccumulationRisk struct {
	Volatility        float64 `json:"volatility"`
	DownsideDeviation float64 `json:"downside_deviation"`
	MaxDrawdown       float64 `json:"max_drawdown"`
	VaR95             float64 `json:"var_95"`
	CVaR95            float64 `json:"cvar_95"`
}

// WithdrawalRisk holds the risk metrics reported for the withdrawal phase.
type WithdrawalRisk struct {
	FailureProbability float64 `json:"failure_probability"`
	SequenceRiskScore  float64 `json:"sequence_risk_score"`
	EarlyReturnImpact  float64 `json:"early_return_impact"`
	IncomeVolatility   float64 `json:"income_volatility"`
}

// SWRAnalysis is the safe-withdrawal-rate curve over the candidate grid.
type SWRAnalysis struct {
	SuccessRatesBySWR map[string]float64 `json:"success_rates_by_swr"`
	SWR95Percent      float64            `json:"swr_95_percent"`
	SWR90Percent      float64            `json:"swr_90_percent"`
	SWR80Percent      float64            `json:"swr_80_percent"`
}

// MonthlyIncomeStats summarizes realized monthly income across trials.
type MonthlyIncomeStats struct {
	MeanMonthlyIncome   float64            `json:"mean_monthly_income"`
	MedianMonthlyIncome float64            `json:"median_monthly_income"`
	MinMonthlyIncome    float64            `json:"min_monthly_income"`
	MaxMonthlyIncome    float64            `json:"max_monthly_income"`
	IncomePercentiles   map[string]float64 `json:"income_percentiles"`
}

// AccumulationPhase is the aggregate output of the accumulation simulation.
type AccumulationPhase struct {
	FinalAmounts       []float64          `json:"final_amounts"` // bounded sample for charting
	MonthlyProgression MonthlyProgression `json:"monthly_progression"`
	NominalStats       DistributionStats  `json:"nominal_stats"`
	RealStats          DistributionStats  `json:"real_stats"`
	AfterTaxStats      DistributionStats  `json:"after_tax_stats"`
	TotalInvested      float64            `json:"total_invested"`
	InflationImpact    InflationImpact    `json:"inflation_impact"`
	TaxImpact          TaxImpact          `json:"tax_impact"`
	RiskMetrics        AccumulationRisk   `json:"risk_metrics"`
	FinalAmountMean    float64            `json:"final_amount_mean"`
}

// WithdrawalPhase is the aggregate output of the withdrawal simulation.
type WithdrawalPhase struct {
	StartAmount        float64            `json:"start_amount"`
	SuccessProbability float64            `json:"success_probability"`
	FinalAmounts       []float64          `json:"final_amounts"`
	WithdrawalAmounts  []float64          `json:"withdrawal_amounts"`
	MonthlyProgression MonthlyProgression `json:"monthly_progression"`
	SWRAnalysis        SWRAnalysis        `json:"swr_analysis"`
	RecommendedSWR     float64            `json:"recommended_swr"`
	MonthlyIncomeStats MonthlyIncomeStats `json:"monthly_income_stats"`
	RiskMetrics        WithdrawalRisk     `json:"risk_metrics"`
}

// CombinedAnalysis summarizes the full accumulation-then-withdrawal lifecycle.
type CombinedAnalysis struct {
	TotalInvested         float64 `json:"total_invested"`
	TotalWithdrawnMean    float64 `json:"total_withdrawn_mean"`
	LifetimeReturnPercent float64 `json:"lifetime_return_percent"`
	RiskAdjustedScore     float64 `json:"risk_adjusted_score"`
	SuccessProbability    float64 `json:"success_probability"`
}

// EngineOutput is the structure returned to the caller for one engine run.
// It is created per request and never persisted by the engine.
type EngineOutput struct {
	Parameters       SimulationParameters `json:"parameters"`
	Accumulation     *AccumulationPhase   `json:"accumulation_phase,omitempty"`
	Withdrawal       *WithdrawalPhase     `json:"withdrawal_phase,omitempty"`
	CombinedAnalysis *CombinedAnalysis    `json:"combined_analysis,omitempty"`
	ElapsedMillis    int64                `json:"elapsed_ms"`
}
