package simulation

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// ScenarioPath is one random realization of monthly market conditions.
// Returns and Inflation are monthly fractional rates (0.006 = 0.6% per month)
// and have equal length. A path is owned exclusively by the trial that
// consumes it and is discarded afterwards.
type ScenarioPath struct {
	Returns   []float64
	Inflation []float64
}

// ScenarioGenerator draws monthly return and inflation paths. Annual return
// and volatility levels are sampled once per simulated year from a bounded
// beta-shaped distribution, converted to monthly terms, and monthly returns
// are blended with the previous month's draw so that trends emerge without a
// hard-coded regime model.
type ScenarioGenerator struct {
	RateMin  float64 // annual percent
	RateMean float64
	RateMax  float64

	VolMin  float64 // annual percent
	VolMean float64
	VolMax  float64

	InflationMean float64 // annual percent
	InflationVol  float64

	Autocorrelation float64

	src rand.Source
}

// NewScenarioGenerator builds a generator for the given parameters. The
// source determines the random stream; callers hand each trial its own
// source so that concurrent trials never share state.
func NewScenarioGenerator(p domain.SimulationParameters, src rand.Source) *ScenarioGenerator {
	return &ScenarioGenerator{
		RateMin:         p.RateMin,
		RateMean:        p.RateMean,
		RateMax:         p.RateMax,
		VolMin:          p.VolatilityMin,
		VolMean:         p.VolatilityMean,
		VolMax:          p.VolatilityMax,
		InflationMean:   p.InflationRate,
		InflationVol:    p.InflationVolatility,
		Autocorrelation: p.Autocorrelation,
		src:             src,
	}
}

// Generate produces a path of the given length in months.
func (g *ScenarioGenerator) Generate(months int) ScenarioPath {
	years := months/12 + 1
	annualRates := g.sampleBounded(years, g.RateMean, g.RateMin, g.RateMax)
	annualVols := g.sampleBounded(years, g.VolMean, g.VolMin, g.VolMax)

	path := ScenarioPath{
		Returns:   make([]float64, months),
		Inflation: make([]float64, months),
	}

	inflMean := g.InflationMean / 100 / 12
	inflVol := g.InflationVol / 100 / 12

	prev := 0.0
	for m := 0; m < months; m++ {
		yr := m / 12
		annualRate := annualRates[yr] / 100
		annualVol := annualVols[yr] / 100

		monthlyRate := math.Pow(1+annualRate, 1.0/12) - 1
		monthlyVol := annualVol / math.Sqrt(12)

		draw := g.normal(monthlyRate, monthlyVol)
		if m == 0 {
			path.Returns[m] = draw
		} else {
			path.Returns[m] = g.Autocorrelation*prev + (1-g.Autocorrelation)*draw
		}
		prev = path.Returns[m]

		// Inflation draws are independent of returns and floored at zero.
		path.Inflation[m] = math.Max(0, g.normal(inflMean, inflVol))
	}

	return path
}

// sampleBounded draws n values with the given mean and support [min, max].
// With a collapsed interval the value is constant.
func (g *ScenarioGenerator) sampleBounded(n int, mean, min, max float64) []float64 {
	out := make([]float64, n)
	if max <= min {
		for i := range out {
			out[i] = mean
		}
		return out
	}

	alpha, beta := betaShape(mean, min, max)
	dist := distuv.Beta{Alpha: alpha, Beta: beta, Src: g.src}
	for i := range out {
		out[i] = min + dist.Rand()*(max-min)
	}
	return out
}

func (g *ScenarioGenerator) normal(mu, sigma float64) float64 {
	if sigma <= 0 {
		return mu
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.src}.Rand()
}

// betaShape derives beta distribution shape parameters so that the scaled
// distribution has the requested mean inside [min, max]. Method of moments
// with an assumed normalized variance of 0.04; shape parameters are floored
// at 0.5 to keep the density unimodal-ish rather than degenerate at the
// edges.
func betaShape(mean, min, max float64) (alpha, beta float64) {
	m := (mean - min) / (max - min)
	m = math.Min(0.99, math.Max(0.01, m))

	const variance = 0.04
	common := m*(1-m)/variance - 1
	alpha = m * common
	beta = (1 - m) * common

	alpha = math.Max(0.5, alpha)
	beta = math.Max(0.5, beta)
	return alpha, beta
}
