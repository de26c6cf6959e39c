package output

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"

	"github.com/mcgo/investment-calculator/internal/domain"
	"github.com/mcgo/investment-calculator/pkg/money"
)

// ConsoleFormatter renders a concise human-readable summary of one engine
// run.
type ConsoleFormatter struct{}

func (c ConsoleFormatter) Name() string { return "console" }

func (c ConsoleFormatter) Format(results *domain.EngineOutput) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintln(&buf, "MONTE CARLO INVESTMENT SUMMARY")
	fmt.Fprintln(&buf, "==============================")
	fmt.Fprintf(&buf, "Mode: %s  Iterations: %d  Elapsed: %dms\n",
		results.Parameters.Mode, results.Parameters.Iterations, results.ElapsedMillis)
	fmt.Fprintln(&buf)

	if acc := results.Accumulation; acc != nil {
		fmt.Fprintln(&buf, "Accumulation phase")
		fmt.Fprintf(&buf, "  Total invested:    %s\n", money.New(acc.TotalInvested).Format())
		fmt.Fprintf(&buf, "  Final (nominal):   mean=%s median=%s std=%s\n",
			money.New(acc.NominalStats.Mean).Format(),
			money.New(acc.NominalStats.Median).Format(),
			money.New(acc.NominalStats.Std).Format())
		fmt.Fprintf(&buf, "  Final (real):      mean=%s (purchasing power loss %.1f%%)\n",
			money.New(acc.RealStats.Mean).Format(), acc.InflationImpact.PurchasingPowerLoss)
		fmt.Fprintf(&buf, "  Final (after tax): mean=%s (tax cost %.1f%%)\n",
			money.New(acc.AfterTaxStats.Mean).Format(), acc.TaxImpact.TaxCostPercent)
		fmt.Fprintf(&buf, "  Risk: VaR95=%s CVaR95=%s maxDD=%.1f%% downsideDev=%s\n",
			money.New(acc.RiskMetrics.VaR95).Format(),
			money.New(acc.RiskMetrics.CVaR95).Format(),
			acc.RiskMetrics.MaxDrawdown,
			money.New(acc.RiskMetrics.DownsideDeviation).Format())
		c.writePercentiles(&buf, acc.NominalStats.Percentiles)
		fmt.Fprintln(&buf)
	}

	if wd := results.Withdrawal; wd != nil {
		fmt.Fprintln(&buf, "Withdrawal phase")
		fmt.Fprintf(&buf, "  Start amount:        %s\n", money.New(wd.StartAmount).Format())
		fmt.Fprintf(&buf, "  Success probability: %.1f%%\n", wd.SuccessProbability)
		fmt.Fprintf(&buf, "  Recommended SWR:     %.2f%%\n", wd.RecommendedSWR)
		fmt.Fprintf(&buf, "  SWR curve: 95%%→%.1f%%  90%%→%.1f%%  80%%→%.1f%%\n",
			wd.SWRAnalysis.SWR95Percent, wd.SWRAnalysis.SWR90Percent, wd.SWRAnalysis.SWR80Percent)
		fmt.Fprintf(&buf, "  Monthly income: mean=%s median=%s\n",
			money.New(wd.MonthlyIncomeStats.MeanMonthlyIncome).Format(),
			money.New(wd.MonthlyIncomeStats.MedianMonthlyIncome).Format())
		fmt.Fprintf(&buf, "  Risk: failure=%.1f%% sequenceRisk=%.1f incomeVol=%.1f%%\n",
			wd.RiskMetrics.FailureProbability,
			wd.RiskMetrics.SequenceRiskScore,
			wd.RiskMetrics.IncomeVolatility)
		fmt.Fprintln(&buf)
	}

	if cmb := results.CombinedAnalysis; cmb != nil {
		fmt.Fprintln(&buf, "Lifecycle analysis")
		fmt.Fprintf(&buf, "  Invested=%s WithdrawnMean=%s LifetimeReturn=%.1f%% RiskAdjusted=%.1f\n",
			money.New(cmb.TotalInvested).Format(),
			money.New(cmb.TotalWithdrawnMean).Format(),
			cmb.LifetimeReturnPercent,
			cmb.RiskAdjustedScore)
	}

	return buf.Bytes(), nil
}

func (c ConsoleFormatter) writePercentiles(buf *bytes.Buffer, percentiles map[string]float64) {
	keys := make([]float64, 0, len(percentiles))
	for k := range percentiles {
		if v, err := strconv.ParseFloat(k, 64); err == nil {
			keys = append(keys, v)
		}
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(keys)))

	fmt.Fprint(buf, "  Percentiles:")
	for _, k := range keys {
		key := strconv.FormatFloat(k, 'f', -1, 64)
		fmt.Fprintf(buf, " p%s=%s", key, money.New(percentiles[key]).Format())
	}
	fmt.Fprintln(buf)
}
