package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// CSVProgressionFormatter exports the monthly progression bands as CSV, one
// section per simulated phase.
type CSVProgressionFormatter struct{}

func (c CSVProgressionFormatter) Name() string { return "csv" }

func (c CSVProgressionFormatter) Format(results *domain.EngineOutput) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write([]string{"phase", "month", "mean_balance", "percentile_5", "percentile_25", "percentile_75", "percentile_95"}); err != nil {
		return nil, err
	}

	write := func(phase string, prog domain.MonthlyProgression) error {
		for i, m := range prog.Months {
			record := []string{
				phase,
				strconv.Itoa(m),
				formatAmount(prog.MeanBalance[i]),
				formatAmount(prog.Percentile5[i]),
				formatAmount(prog.Percentile25[i]),
				formatAmount(prog.Percentile75[i]),
				formatAmount(prog.Percentile95[i]),
			}
			if err := w.Write(record); err != nil {
				return err
			}
		}
		return nil
	}

	if results.Accumulation != nil {
		if err := write("accumulation", results.Accumulation.MonthlyProgression); err != nil {
			return nil, err
		}
	}
	if results.Withdrawal != nil {
		if err := write("withdrawal", results.Withdrawal.MonthlyProgression); err != nil {
			return nil, err
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
