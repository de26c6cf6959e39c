package simulation

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcgo/investment-calculator/internal/domain"
)

func testParams() domain.SimulationParameters {
	p := domain.DefaultParameters()
	p.Iterations = domain.MinIterations
	return p
}

func TestGeneratePathLength(t *testing.T) {
	gen := NewScenarioGenerator(testParams(), rand.NewPCG(1, 1))
	path := gen.Generate(240)

	assert.Len(t, path.Returns, 240)
	assert.Len(t, path.Inflation, 240)
}

func TestGenerateIsDeterministicUnderSeed(t *testing.T) {
	p := testParams()
	a := NewScenarioGenerator(p, rand.NewPCG(42, 7)).Generate(120)
	b := NewScenarioGenerator(p, rand.NewPCG(42, 7)).Generate(120)

	assert.Equal(t, a.Returns, b.Returns)
	assert.Equal(t, a.Inflation, b.Inflation)
}

func TestGenerateDistinctStreamsDiffer(t *testing.T) {
	p := testParams()
	a := NewScenarioGenerator(p, rand.NewPCG(42, 1)).Generate(120)
	b := NewScenarioGenerator(p, rand.NewPCG(42, 2)).Generate(120)

	assert.NotEqual(t, a.Returns, b.Returns)
}

func TestGenerateCollapsedBoundsIsConstant(t *testing.T) {
	p := testParams()
	p.RateMin, p.RateMean, p.RateMax = 6, 6, 6
	p.VolatilityMin, p.VolatilityMean, p.VolatilityMax = 0, 0, 0
	p.InflationVolatility = 0

	path := NewScenarioGenerator(p, rand.NewPCG(9, 9)).Generate(60)

	want := math.Pow(1.06, 1.0/12) - 1
	for m, r := range path.Returns {
		assert.InDelta(t, want, r, 1e-12, "month %d", m)
	}
	for _, inf := range path.Inflation {
		assert.InDelta(t, 0.025/12, inf, 1e-12)
	}
}

func TestGenerateInflationFlooredAtZero(t *testing.T) {
	p := testParams()
	p.InflationRate = 0.5
	p.InflationVolatility = 10 // wide enough that raw draws would go negative

	path := NewScenarioGenerator(p, rand.NewPCG(3, 3)).Generate(600)
	for m, inf := range path.Inflation {
		require.GreaterOrEqual(t, inf, 0.0, "month %d", m)
	}
}

func TestGenerateMeanNearConfiguredRate(t *testing.T) {
	p := testParams()
	path := NewScenarioGenerator(p, rand.NewPCG(11, 4)).Generate(12000)

	sum := 0.0
	for _, r := range path.Returns {
		sum += r
	}
	mean := sum / float64(len(path.Returns))

	// Monthly mean for an 8% annual rate is about 0.64%; with monthly vol
	// around 4.3% and 12k samples the sample mean should land well within
	// a ±0.2% band.
	want := math.Pow(1.08, 1.0/12) - 1
	assert.InDelta(t, want, mean, 0.002)
}

func TestBetaShapeProperties(t *testing.T) {
	alpha, beta := betaShape(8, 5, 12)
	assert.Greater(t, alpha, 0.5-1e-9)
	assert.Greater(t, beta, 0.5-1e-9)

	// A mean at the midpoint gives a symmetric shape.
	alpha, beta = betaShape(5, 0, 10)
	assert.InDelta(t, alpha, beta, 1e-9)

	// A mean below the midpoint skews mass toward the lower bound.
	alpha, beta = betaShape(2, 0, 10)
	assert.Less(t, alpha, beta)

	// Extreme means floor both shapes instead of degenerating.
	alpha, beta = betaShape(0.01, 0, 10)
	assert.GreaterOrEqual(t, alpha, 0.5)
	assert.GreaterOrEqual(t, beta, 0.5)
}

func TestGenerateAutocorrelationCarriesOver(t *testing.T) {
	p := testParams()
	p.Autocorrelation = 0.9 // exaggerate so the effect is unmistakable

	path := NewScenarioGenerator(p, rand.NewPCG(5, 5)).Generate(1200)

	var lag0, lag1 []float64
	for m := 1; m < len(path.Returns); m++ {
		lag0 = append(lag0, path.Returns[m-1])
		lag1 = append(lag1, path.Returns[m])
	}

	corr := sampleCorrelation(lag0, lag1)
	assert.Greater(t, corr, 0.5, "expected strong positive lag-1 autocorrelation, got %f", corr)
}

func sampleCorrelation(x, y []float64) float64 {
	n := float64(len(x))
	var sx, sy float64
	for i := range x {
		sx += x[i]
		sy += y[i]
	}
	mx, my := sx/n, sy/n

	var cov, vx, vy float64
	for i := range x {
		cov += (x[i] - mx) * (y[i] - my)
		vx += (x[i] - mx) * (x[i] - mx)
		vy += (y[i] - my) * (y[i] - my)
	}
	return cov / math.Sqrt(vx*vy)
}
