package simulation

import (
	"context"
	"math/rand/v2"
	"strconv"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// Candidate withdrawal rates tested by the SWR scan, annual percent.
const (
	swrGridMin  = 2.0
	swrGridMax  = 8.0
	swrGridStep = 0.5
)

// swrStreamOffset separates the SWR scan's random streams from the main
// ensemble's per-trial streams.
const swrStreamOffset = 1 << 32

// AnalyzeSWR scans candidate withdrawal rates and re-runs a reduced
// withdrawal ensemble at each one. Every candidate replays the same set of
// scenario paths (common random numbers), which makes the success curve
// strictly non-increasing in the withdrawal rate.
func AnalyzeSWR(ctx context.Context, p domain.SimulationParameters, startAmount float64, baseSeed uint64, trials int) (domain.SWRAnalysis, error) {
	if trials > p.Iterations {
		trials = p.Iterations
	}

	successRates := make(map[string]float64)
	type rateSuccess struct {
		rate    float64
		success float64
	}
	var curve []rateSuccess

	for rate := swrGridMin; rate <= swrGridMax+1e-9; rate += swrGridStep {
		candidate := p
		candidate.TargetWithdrawalRate = rate

		successes := 0
		for i := 0; i < trials; i++ {
			if i%256 == 0 {
				select {
				case <-ctx.Done():
					return domain.SWRAnalysis{}, ErrTimeout
				default:
				}
			}

			src := rand.NewPCG(baseSeed, swrStreamOffset+uint64(i))
			path := NewScenarioGenerator(candidate, src).Generate(candidate.WithdrawalMonths)
			result := NewWithdrawalSimulator(candidate, startAmount).Run(path)
			if result.Success {
				successes++
			}
		}

		success := float64(successes) / float64(trials) * 100
		key := strconv.FormatFloat(rate, 'f', 1, 64)
		successRates[key] = success
		curve = append(curve, rateSuccess{rate: rate, success: success})
	}

	findFor := func(target float64) float64 {
		// Success is non-increasing in rate, so the qualifying rates form
		// a prefix of the grid; scanning stops at the first shortfall,
		// which also breaks flat-probability ties toward the lower rate.
		best := swrGridMin
		for _, rs := range curve {
			if rs.success >= target {
				best = rs.rate
			} else {
				break
			}
		}
		return best
	}

	return domain.SWRAnalysis{
		SuccessRatesBySWR: successRates,
		SWR95Percent:      findFor(95),
		SWR90Percent:      findFor(90),
		SWR80Percent:      findFor(80),
	}, nil
}

// RecommendedSWR scales the requested rate down when the achieved success
// probability falls short of the 95% target.
func RecommendedSWR(successProbability, targetRate float64) float64 {
	switch {
	case successProbability >= 95:
		return targetRate
	case successProbability >= 90:
		return targetRate * 0.9
	case successProbability >= 80:
		return targetRate * 0.8
	default:
		return targetRate * 0.7
	}
}
