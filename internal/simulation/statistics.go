package simulation

import (
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// confidenceLevels is the percentile grid reported for every distribution.
var confidenceLevels = []float64{99, 95, 90, 75, 50, 25, 10, 5, 1}

// Describe computes the full distribution summary of one ensemble metric.
func Describe(values []float64) domain.DistributionStats {
	if len(values) == 0 {
		return domain.DistributionStats{Percentiles: map[string]float64{}}
	}

	percentiles := make(map[string]float64, len(confidenceLevels))
	for _, p := range confidenceLevels {
		v, err := stats.Percentile(values, p)
		if err != nil {
			v = values[0]
		}
		percentiles[strconv.FormatFloat(p, 'f', -1, 64)] = v
	}

	median, _ := stats.Median(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)

	ds := domain.DistributionStats{
		Mean:        stat.Mean(values, nil),
		Median:      median,
		Min:         min,
		Max:         max,
		Percentiles: percentiles,
	}
	if len(values) > 1 {
		ds.Std = stat.StdDev(values, nil)
		// A zero-variance ensemble (collapsed bounds, zero volatility) has
		// no defined shape moments; gonum would return ±Inf here, which
		// must never reach the JSON output.
		if ds.Std > 0 {
			ds.Skewness = stat.Skew(values, nil)
			ds.Kurtosis = stat.ExKurtosis(values, nil)
		}
	}
	return ds
}

// TailRisk returns VaR95 (the 5th percentile of outcomes) and CVaR95 (the
// mean of all outcomes at or below that threshold).
func TailRisk(values []float64) (var95, cvar95 float64) {
	if len(values) == 0 {
		return 0, 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	var95, _ = stats.Percentile(sorted, 5)

	sum, count := 0.0, 0
	for _, v := range sorted {
		if v > var95 {
			break
		}
		sum += v
		count++
	}
	if count == 0 {
		return var95, sorted[0]
	}
	return var95, sum / float64(count)
}

// DownsideDeviation is the semi-deviation of outcomes below the ensemble mean.
func DownsideDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := stat.Mean(values, nil)

	sum, count := 0.0, 0
	for _, v := range values {
		if v < mean {
			d := v - mean
			sum += d * d
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(count))
}

// MaxDrawdown returns the largest peak-to-trough percentage decline along a
// single balance trajectory.
func MaxDrawdown(balances []float64) float64 {
	if len(balances) == 0 {
		return 0
	}

	peak := balances[0]
	maxDD := 0.0
	for _, b := range balances {
		if b > peak {
			peak = b
		}
		if peak > 0 {
			dd := (peak - b) / peak * 100
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// AggregateProgression reduces per-trial monthly balance trajectories into
// mean and percentile bands per month.
func AggregateProgression(trials []domain.TrialResult) domain.MonthlyProgression {
	months := 0
	for _, tr := range trials {
		if len(tr.MonthlyBalances) > months {
			months = len(tr.MonthlyBalances)
		}
	}

	prog := domain.MonthlyProgression{
		Months:       make([]int, months),
		MeanBalance:  make([]float64, months),
		Percentile5:  make([]float64, months),
		Percentile25: make([]float64, months),
		Percentile75: make([]float64, months),
		Percentile95: make([]float64, months),
	}

	column := make([]float64, 0, len(trials))
	for m := 0; m < months; m++ {
		column = column[:0]
		for _, tr := range trials {
			if m < len(tr.MonthlyBalances) {
				column = append(column, tr.MonthlyBalances[m])
			}
		}

		prog.Months[m] = m
		prog.MeanBalance[m] = stat.Mean(column, nil)
		prog.Percentile5[m], _ = stats.Percentile(column, 5)
		prog.Percentile25[m], _ = stats.Percentile(column, 25)
		prog.Percentile75[m], _ = stats.Percentile(column, 75)
		prog.Percentile95[m], _ = stats.Percentile(column, 95)
	}
	return prog
}

// SequenceRiskScore captures how sensitive failures are to early-period
// return ordering: the failure-rate gap, in percentage points, between
// trials whose first-quartile returns fell below the ensemble median and
// those above it. Clamped to [0, 100].
func SequenceRiskScore(trials []domain.TrialResult) float64 {
	if len(trials) < 2 {
		return 0
	}

	early := make([]float64, len(trials))
	for i, tr := range trials {
		early[i] = tr.EarlyAvgReturn
	}
	median, _ := stats.Median(early)

	var failBelow, nBelow, failAbove, nAbove float64
	for _, tr := range trials {
		if tr.EarlyAvgReturn <= median {
			nBelow++
			if !tr.Success {
				failBelow++
			}
		} else {
			nAbove++
			if !tr.Success {
				failAbove++
			}
		}
	}
	if nBelow == 0 || nAbove == 0 {
		return 0
	}

	gap := (failBelow/nBelow - failAbove/nAbove) * 100
	return math.Min(100, math.Max(0, gap))
}

// EarlyReturnImpact is the correlation between early-period average returns
// and final balances across the ensemble.
func EarlyReturnImpact(trials []domain.TrialResult) float64 {
	if len(trials) < 2 {
		return 0
	}
	early := make([]float64, len(trials))
	finals := make([]float64, len(trials))
	for i, tr := range trials {
		early[i] = tr.EarlyAvgReturn
		finals[i] = tr.FinalBalance
	}
	r := stat.Correlation(early, finals, nil)
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// BuildAccumulationPhase reduces the accumulation ensemble into its
// aggregate statistics, truncating the raw sample to sampleSize trials.
func BuildAccumulationPhase(trials []domain.TrialResult, sampleSize int) *domain.AccumulationPhase {
	finals := make([]float64, len(trials))
	reals := make([]float64, len(trials))
	afterTax := make([]float64, len(trials))
	invested := make([]float64, len(trials))
	for i, tr := range trials {
		finals[i] = tr.FinalBalance
		reals[i] = tr.RealBalance
		afterTax[i] = tr.AfterTaxBalance
		invested[i] = tr.TotalInvested
	}

	nominal := Describe(finals)
	real := Describe(reals)
	tax := Describe(afterTax)
	totalInvested := stat.Mean(invested, nil)

	prog := AggregateProgression(trials)
	var95, cvar95 := TailRisk(finals)

	volatility := 0.0
	if nominal.Mean != 0 {
		volatility = nominal.Std / nominal.Mean * 100
	}

	ppLoss := 0.0
	if nominal.Mean > 0 {
		ppLoss = (1 - real.Mean/nominal.Mean) * 100
	}
	realReturn := 0.0
	if totalInvested > 0 {
		realReturn = (real.Mean/totalInvested - 1) * 100
	}

	taxCostPct := 0.0
	if nominal.Mean > 0 {
		taxCostPct = (1 - tax.Mean/nominal.Mean) * 100
	}

	return &domain.AccumulationPhase{
		FinalAmounts:       truncateSample(finals, sampleSize),
		MonthlyProgression: prog,
		NominalStats:       nominal,
		RealStats:          real,
		AfterTaxStats:      tax,
		TotalInvested:      totalInvested,
		InflationImpact: domain.InflationImpact{
			NominalValue:        nominal.Mean,
			RealValue:           real.Mean,
			PurchasingPowerLoss: ppLoss,
			RealReturnPercent:   realReturn,
		},
		TaxImpact: domain.TaxImpact{
			PreTaxValue:    nominal.Mean,
			AfterTaxValue:  tax.Mean,
			TaxCost:        nominal.Mean - tax.Mean,
			TaxCostPercent: taxCostPct,
		},
		RiskMetrics: domain.AccumulationRisk{
			Volatility:        volatility,
			DownsideDeviation: DownsideDeviation(finals),
			MaxDrawdown:       MaxDrawdown(prog.MeanBalance),
			VaR95:             var95,
			CVaR95:            cvar95,
		},
		FinalAmountMean: nominal.Mean,
	}
}

// BuildWithdrawalPhase reduces the withdrawal ensemble into its aggregate
// statistics. The SWR analysis is attached separately by the coordinator.
func BuildWithdrawalPhase(trials []domain.TrialResult, startAmount float64, sampleSize int, considerSequenceRisk bool) *domain.WithdrawalPhase {
	finals := make([]float64, len(trials))
	withdrawn := make([]float64, len(trials))
	avgIncomes := make([]float64, 0, len(trials))
	successes := 0
	for i, tr := range trials {
		finals[i] = tr.FinalBalance
		withdrawn[i] = tr.TotalWithdrawn
		if tr.Success {
			successes++
		}
		if len(tr.MonthlyIncome) > 0 {
			sum := 0.0
			for _, inc := range tr.MonthlyIncome {
				sum += inc
			}
			avgIncomes = append(avgIncomes, sum/float64(len(tr.MonthlyIncome)))
		}
	}

	successProbability := 0.0
	if len(trials) > 0 {
		successProbability = float64(successes) / float64(len(trials)) * 100
	}

	incomeStats := domain.MonthlyIncomeStats{IncomePercentiles: map[string]float64{}}
	if len(avgIncomes) > 0 {
		mean := stat.Mean(avgIncomes, nil)
		median, _ := stats.Median(avgIncomes)
		min, _ := stats.Min(avgIncomes)
		max, _ := stats.Max(avgIncomes)
		incomeStats = domain.MonthlyIncomeStats{
			MeanMonthlyIncome:   mean,
			MedianMonthlyIncome: median,
			MinMonthlyIncome:    min,
			MaxMonthlyIncome:    max,
			IncomePercentiles:   map[string]float64{},
		}
		for _, p := range []float64{5, 25, 75, 95} {
			v, _ := stats.Percentile(avgIncomes, p)
			incomeStats.IncomePercentiles[strconv.FormatFloat(p, 'f', -1, 64)] = v
		}
	}

	incomeVolatility := 0.0
	if m := stat.Mean(withdrawn, nil); m > 0 && len(withdrawn) > 1 {
		incomeVolatility = stat.StdDev(withdrawn, nil) / m * 100
	}

	risk := domain.WithdrawalRisk{
		FailureProbability: 100 - successProbability,
		IncomeVolatility:   incomeVolatility,
	}
	if considerSequenceRisk {
		risk.SequenceRiskScore = SequenceRiskScore(trials)
		risk.EarlyReturnImpact = EarlyReturnImpact(trials)
	}

	return &domain.WithdrawalPhase{
		StartAmount:        startAmount,
		SuccessProbability: successProbability,
		FinalAmounts:       truncateSample(finals, sampleSize),
		WithdrawalAmounts:  truncateSample(withdrawn, sampleSize),
		MonthlyProgression: AggregateProgression(trials),
		MonthlyIncomeStats: incomeStats,
		RiskMetrics:        risk,
	}
}

// BuildCombinedAnalysis summarizes the full lifecycle when both phases ran.
// Statistics are computed over the complete withdrawal ensemble; the bounded
// raw samples on the phase are for charting only.
func BuildCombinedAnalysis(acc *domain.AccumulationPhase, wd *domain.WithdrawalPhase, wdTrials []domain.TrialResult) *domain.CombinedAnalysis {
	if acc == nil || wd == nil {
		return nil
	}

	withdrawn := make([]float64, len(wdTrials))
	for i, tr := range wdTrials {
		withdrawn[i] = tr.TotalWithdrawn
	}

	totalWithdrawn := 0.0
	if len(withdrawn) > 0 {
		totalWithdrawn = stat.Mean(withdrawn, nil)
	}

	lifetimeReturn := 0.0
	if acc.TotalInvested > 0 {
		lifetimeReturn = (totalWithdrawn/acc.TotalInvested - 1) * 100
	}

	riskAdjusted := lifetimeReturn
	if totalWithdrawn > 0 && len(withdrawn) > 1 {
		cv := stat.StdDev(withdrawn, nil) / totalWithdrawn
		if cv > 0 {
			riskAdjusted = lifetimeReturn / (1 + cv)
		}
	}

	return &domain.CombinedAnalysis{
		TotalInvested:         acc.TotalInvested,
		TotalWithdrawnMean:    totalWithdrawn,
		LifetimeReturnPercent: lifetimeReturn,
		RiskAdjustedScore:     riskAdjusted,
		SuccessProbability:    wd.SuccessProbability,
	}
}

// truncateSample bounds the raw series returned to callers. Selection is by
// submission index, so repeated runs with the same seed return the same
// sample.
func truncateSample(values []float64, size int) []float64 {
	if size <= 0 || len(values) <= size {
		return values
	}
	return values[:size]
}
