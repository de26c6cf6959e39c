package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/mcgo/investment-calculator/internal/domain"
)

// Coordinator fans independent trials out across a fixed-size worker pool
// and reduces the merged ensemble into an EngineOutput. It holds no state
// between calls to Execute.
type Coordinator struct {
	params domain.SimulationParameters
	log    zerolog.Logger

	// Workers is the pool size; defaults to GOMAXPROCS.
	Workers int
	// Timeout is the wall-clock budget for the whole batch including the
	// SWR scan.
	Timeout time.Duration
	// SampleSize bounds the raw per-trial series returned to the caller.
	SampleSize int
	// SWRTrials is the ensemble size used per candidate rate in the SWR
	// scan.
	SWRTrials int

	// trial runs one simulation trial; replaced in tests.
	trial func(idx int, src *rand.PCG) (trialOutcome, error)
}

// NewCoordinator builds a coordinator with default pool sizing and budgets.
func NewCoordinator(p domain.SimulationParameters, log zerolog.Logger) *Coordinator {
	c := &Coordinator{
		params:     p,
		log:        log.With().Str("component", "coordinator").Logger(),
		Workers:    runtime.GOMAXPROCS(0),
		Timeout:    2 * time.Minute,
		SampleSize: 1000,
		SWRTrials:  2000,
	}
	c.trial = c.runTrial
	return c
}

// trialOutcome pairs a trial index with the per-phase results it produced.
type trialOutcome struct {
	idx int
	acc *domain.TrialResult
	wd  *domain.TrialResult
}

// Execute validates the parameters, runs the full trial ensemble and returns
// the aggregate output. On timeout, completed partial results are discarded
// and ErrTimeout is returned.
func (c *Coordinator) Execute(ctx context.Context) (*domain.EngineOutput, error) {
	started := time.Now()

	if err := c.params.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	baseSeed := uint64(c.params.Seed)
	if c.params.Seed == 0 {
		baseSeed = rand.Uint64()
	}

	c.log.Info().
		Str("mode", string(c.params.Mode)).
		Int("iterations", c.params.Iterations).
		Int("workers", c.Workers).
		Msg("starting simulation batch")

	outcomes, err := c.runEnsemble(ctx, baseSeed)
	if err != nil {
		return nil, err
	}

	output := &domain.EngineOutput{Parameters: c.params}

	var accTrials, wdTrials []domain.TrialResult
	for _, o := range outcomes {
		if o.acc != nil {
			tr := *o.acc
			tr.Index = o.idx
			accTrials = append(accTrials, tr)
		}
		if o.wd != nil {
			tr := *o.wd
			tr.Index = o.idx
			wdTrials = append(wdTrials, tr)
		}
	}

	if len(accTrials) > 0 {
		output.Accumulation = BuildAccumulationPhase(accTrials, c.SampleSize)
	}

	if len(wdTrials) > 0 {
		startAmount := c.params.InitialAmount
		if c.params.Mode == domain.ModeMixed {
			starts := make([]float64, len(accTrials))
			for i, tr := range accTrials {
				starts[i] = tr.FinalBalance
			}
			startAmount = stat.Mean(starts, nil)
		}

		phase := BuildWithdrawalPhase(wdTrials, startAmount, c.SampleSize, c.params.ConsiderSequenceRisk)

		swr, err := AnalyzeSWR(ctx, c.params, startAmount, baseSeed, c.SWRTrials)
		if err != nil {
			return nil, err
		}
		phase.SWRAnalysis = swr
		phase.RecommendedSWR = RecommendedSWR(phase.SuccessProbability, c.params.TargetWithdrawalRate)

		output.Withdrawal = phase
	}

	output.CombinedAnalysis = BuildCombinedAnalysis(output.Accumulation, output.Withdrawal, wdTrials)
	output.ElapsedMillis = time.Since(started).Milliseconds()

	c.log.Info().
		Int64("elapsed_ms", output.ElapsedMillis).
		Msg("simulation batch complete")

	return output, nil
}

// runEnsemble distributes trial indices over the worker pool. Workers keep
// local partial results that are merged at the join point, so no result
// field is ever mutated from two goroutines.
func (c *Coordinator) runEnsemble(ctx context.Context, baseSeed uint64) ([]trialOutcome, error) {
	workers := c.Workers
	if workers < 1 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan int)
	partials := make([][]trialOutcome, workers)
	errs := make(chan error, workers)

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			local := make([]trialOutcome, 0, c.params.Iterations/workers+1)
			for idx := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				out, err := c.runTrialWithRetry(idx, baseSeed)
				if err != nil {
					errs <- err
					cancel()
					return
				}
				local = append(local, out)
			}
			partials[w] = local
		}(w)
	}

	go func() {
		defer close(jobs)
		for i := 0; i < c.params.Iterations; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	select {
	case err := <-errs:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, ErrTimeout
	}

	merged := make([]trialOutcome, 0, c.params.Iterations)
	for _, local := range partials {
		merged = append(merged, local...)
	}
	// Stable order by submission index so the bounded raw sample is
	// deterministic under a fixed seed.
	sort.Slice(merged, func(i, j int) bool { return merged[i].idx < merged[j].idx })

	if len(merged) != c.params.Iterations {
		return nil, fmt.Errorf("ensemble incomplete: %d of %d trials: %w",
			len(merged), c.params.Iterations, ErrTrialFailed)
	}
	return merged, nil
}

// runTrialWithRetry runs one trial, retrying once with a perturbed random
// stream if the trial panics, so a single pathological draw cannot poison
// the whole batch.
func (c *Coordinator) runTrialWithRetry(idx int, baseSeed uint64) (trialOutcome, error) {
	out, err := c.runRecovered(idx, rand.NewPCG(baseSeed, uint64(idx)))
	if err == nil {
		return out, nil
	}

	c.log.Warn().Int("trial", idx).Err(err).Msg("trial faulted, retrying with fresh randomness")
	out, err = c.runRecovered(idx, rand.NewPCG(baseSeed^0x9e3779b97f4a7c15, uint64(idx)))
	if err != nil {
		return trialOutcome{}, fmt.Errorf("trial %d: %v: %w", idx, err, ErrTrialFailed)
	}
	return out, nil
}

// runRecovered converts a trial panic into an error so the retry policy can
// act on it.
func (c *Coordinator) runRecovered(idx int, src *rand.PCG) (out trialOutcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return c.trial(idx, src)
}

// runTrial executes a single self-contained trial: its own scenario path and
// simulator runs, with no state shared with any other trial.
func (c *Coordinator) runTrial(idx int, src *rand.PCG) (out trialOutcome, err error) {
	out.idx = idx
	gen := NewScenarioGenerator(c.params, src)

	switch c.params.Mode {
	case domain.ModeAccumulation:
		path := gen.Generate(c.params.AccumulationMonths)
		acc := NewAccumulationSimulator(c.params).Run(path)
		out.acc = &acc

	case domain.ModeWithdrawal:
		path := gen.Generate(c.params.WithdrawalMonths)
		wd := NewWithdrawalSimulator(c.params, c.params.InitialAmount).Run(path)
		out.wd = &wd

	case domain.ModeMixed:
		// One path spans both phases so the withdrawal months continue
		// the same random realization the accumulation months started.
		total := c.params.AccumulationMonths + c.params.WithdrawalMonths
		path := gen.Generate(total)
		accPath := ScenarioPath{
			Returns:   path.Returns[:c.params.AccumulationMonths],
			Inflation: path.Inflation[:c.params.AccumulationMonths],
		}
		wdPath := ScenarioPath{
			Returns:   path.Returns[c.params.AccumulationMonths:],
			Inflation: path.Inflation[c.params.AccumulationMonths:],
		}

		acc := NewAccumulationSimulator(c.params).Run(accPath)
		wd := NewWithdrawalSimulator(c.params, acc.FinalBalance).Run(wdPath)
		out.acc = &acc
		out.wd = &wd
	}

	return out, nil
}
