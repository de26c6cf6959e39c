package output

import (
	"bytes"
	"html/template"

	"github.com/mcgo/investment-calculator/internal/domain"
	"github.com/mcgo/investment-calculator/pkg/money"
)

// HTMLFormatter renders a self-contained single-page report suitable for
// opening directly in a browser.
type HTMLFormatter struct{}

func (h HTMLFormatter) Name() string { return "html" }

var htmlReport = template.Must(template.New("report").Funcs(template.FuncMap{
	"eur": func(v float64) string { return money.New(v).Format() },
	"pct": func(v float64) string { return money.New(v).Round().String() },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Monte Carlo Investment Report</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 60rem; color: #222; }
h1 { border-bottom: 2px solid #2c5f8a; padding-bottom: .3rem; }
h2 { color: #2c5f8a; margin-top: 2rem; }
table { border-collapse: collapse; margin: .5rem 0; }
td, th { border: 1px solid #ccc; padding: .3rem .8rem; text-align: right; }
th { background: #eef3f8; }
td:first-child, th:first-child { text-align: left; }
.note { color: #666; font-size: .9rem; }
</style>
</head>
<body>
<h1>Monte Carlo Investment Report</h1>
<p class="note">Mode: {{.Parameters.Mode}} &middot; Iterations: {{.Parameters.Iterations}} &middot; Elapsed: {{.ElapsedMillis}}ms</p>

{{with .Accumulation}}
<h2>Accumulation phase</h2>
<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Total invested</td><td>{{eur .TotalInvested}}</td></tr>
<tr><td>Final balance (mean, nominal)</td><td>{{eur .NominalStats.Mean}}</td></tr>
<tr><td>Final balance (median, nominal)</td><td>{{eur .NominalStats.Median}}</td></tr>
<tr><td>Final balance (mean, real)</td><td>{{eur .RealStats.Mean}}</td></tr>
<tr><td>Final balance (mean, after tax)</td><td>{{eur .AfterTaxStats.Mean}}</td></tr>
<tr><td>Purchasing power loss</td><td>{{pct .InflationImpact.PurchasingPowerLoss}}%</td></tr>
<tr><td>Tax cost</td><td>{{eur .TaxImpact.TaxCost}} ({{pct .TaxImpact.TaxCostPercent}}%)</td></tr>
<tr><td>VaR 95</td><td>{{eur .RiskMetrics.VaR95}}</td></tr>
<tr><td>CVaR 95</td><td>{{eur .RiskMetrics.CVaR95}}</td></tr>
<tr><td>Max drawdown</td><td>{{pct .RiskMetrics.MaxDrawdown}}%</td></tr>
</table>
{{end}}

{{with .Withdrawal}}
<h2>Withdrawal phase</h2>
<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Start amount</td><td>{{eur .StartAmount}}</td></tr>
<tr><td>Success probability</td><td>{{pct .SuccessProbability}}%</td></tr>
<tr><td>Recommended withdrawal rate</td><td>{{pct .RecommendedSWR}}%</td></tr>
<tr><td>Safe rate at 95% success</td><td>{{pct .SWRAnalysis.SWR95Percent}}%</td></tr>
<tr><td>Safe rate at 90% success</td><td>{{pct .SWRAnalysis.SWR90Percent}}%</td></tr>
<tr><td>Safe rate at 80% success</td><td>{{pct .SWRAnalysis.SWR80Percent}}%</td></tr>
<tr><td>Mean monthly income</td><td>{{eur .MonthlyIncomeStats.MeanMonthlyIncome}}</td></tr>
<tr><td>Failure probability</td><td>{{pct .RiskMetrics.FailureProbability}}%</td></tr>
<tr><td>Sequence risk score</td><td>{{pct .RiskMetrics.SequenceRiskScore}}</td></tr>
</table>
{{end}}

{{with .CombinedAnalysis}}
<h2>Lifecycle analysis</h2>
<table>
<tr><th>Metric</th><th>Value</th></tr>
<tr><td>Total invested</td><td>{{eur .TotalInvested}}</td></tr>
<tr><td>Total withdrawn (mean)</td><td>{{eur .TotalWithdrawnMean}}</td></tr>
<tr><td>Lifetime return</td><td>{{pct .LifetimeReturnPercent}}%</td></tr>
<tr><td>Risk-adjusted score</td><td>{{pct .RiskAdjustedScore}}</td></tr>
</table>
{{end}}

</body>
</html>
`))

func (h HTMLFormatter) Format(results *domain.EngineOutput) ([]byte, error) {
	var buf bytes.Buffer
	if err := htmlReport.Execute(&buf, results); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
