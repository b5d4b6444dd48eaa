// Package smote balances skewed two-class datasets by synthesizing minority
// examples through nearest neighbour interpolation.
package smote

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/geom"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/partition"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/predictor/knn/brute"
	"github.com/go-sod/smote/internal/predictor/knn/kdtree"
	"github.com/go-sod/smote/internal/random"
	"golang.org/x/sync/errgroup"
)

const (
	modeSequential = "sequential"
	modeParallel   = "parallel"
)

// MaxExamples bounds the synthetic examples and majority draws of one run.
const MaxExamples = 1 << 24

type Option func(*Oversampler)

// WithSeedDraw makes Balance draw one more integer from the random source
// after generation, to be used as the seed of a seedable estimator.
func WithSeedDraw() Option {
	return func(o *Oversampler) {
		o.drawSeed = true
	}
}

// WithIndexProvider replaces the configured index used for neighbour and
// protection lookups.
func WithIndexProvider(fn func(geom.DistanceFn) predictor.KNNAlg) Option {
	return func(o *Oversampler) {
		o.newIndex = fn
	}
}

type Oversampler struct {
	cfg      Config
	distFunc geom.DistanceFn
	drawSeed bool
	newIndex func(geom.DistanceFn) predictor.KNNAlg
}

func New(cfg Config, opts ...Option) (*Oversampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	distFunc, err := geom.DistanceFuncFor(cfg.DistanceFunc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	o := &Oversampler{
		cfg:      cfg,
		distFunc: distFunc,
		newIndex: indexFor(cfg.Index),
	}
	for _, f := range opts {
		f(o)
	}
	return o, nil
}

func indexFor(t IndexType) func(geom.DistanceFn) predictor.KNNAlg {
	if t == IndexTypeKDTree {
		return func(fn geom.DistanceFn) predictor.KNNAlg {
			return kdtree.New(fn)
		}
	}
	return func(fn geom.DistanceFn) predictor.KNNAlg {
		return brute.NewBruteAlg(fn)
	}
}

func (o *Oversampler) Config() Config {
	return o.cfg
}

// Result of one balancing run.
type Result struct {
	Balanced  *dataset.Dataset
	Partition *partition.Partition
	Generated int
	Rejected  int
	// EstimatorSeed is valid when Seeded is set.
	EstimatorSeed int64
	Seeded        bool
}

// run holds the read-only state shared by every generation step.
type run struct {
	cfg       Config
	minority  []dataset.Example
	index     predictor.KNNAlg
	protector Protector
	generator Generator
}

// Balance removes examples without a class, partitions the rest and appends
// round(|minority| * MinorityGenerationFraction) synthetic minority examples.
// With the same seed and input the result is identical on every call.
func (o *Oversampler) Balance(ctx context.Context, ds *dataset.Dataset) (*Result, error) {
	logger := logging.FromContext(ctx)
	start := time.Now()

	data := ds.WithoutMissingLabels()
	if data.Len() == 0 {
		return nil, fmt.Errorf("%w: no examples with a known class", ErrConfiguration)
	}
	if removed := ds.Len() - data.Len(); removed > 0 {
		logger.Debugf("smote: removed %d examples with missing class", removed)
	}
	p, err := partition.Split(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return o.balance(ctx, data, p, start)
}

// balance generates synthetic examples for an already partitioned dataset.
func (o *Oversampler) balance(ctx context.Context, data *dataset.Dataset, p *partition.Partition, start time.Time) (*Result, error) {
	logger := logging.FromContext(ctx)

	rnd := random.New(o.cfg.Seed)
	target, err := roundCount(p.Minority.Len(), o.cfg.MinorityGenerationFraction)
	if err != nil {
		return nil, fmt.Errorf("minority generation fraction: %w", err)
	}
	out, err := o.baseOutput(data, p, rnd)
	if err != nil {
		return nil, err
	}

	minorityDist, err := o.distanceOver(p.Minority)
	if err != nil {
		return nil, err
	}
	r := &run{
		cfg:       o.cfg,
		minority:  p.Minority.Examples,
		index:     o.newIndex(minorityDist),
		protector: noProtection{},
		generator: Generator{Attributes: data.Attributes, PerAttribute: o.cfg.PerAttributeNeighbor},
	}
	r.index.Build(p.Minority.Examples...)
	if o.cfg.Protection {
		fullDist, err := o.distanceOver(data)
		if err != nil {
			return nil, err
		}
		full := o.newIndex(fullDist)
		full.Build(data.Examples...)
		r.protector = newNearestProtector(full, p.MinoritySide)
	}

	logger.Infow("smote: balancing",
		"data.samples", data.Len(),
		"data.minority", p.Minority.Len(),
		"data.majority", p.Majority.Len(),
		"smote.target", target,
	)

	var (
		synthetic []dataset.Example
		rejected  int
		mode      = modeSequential
	)
	if o.cfg.Workers > 1 {
		mode = modeParallel
		synthetic, rejected, err = r.generateParallel(ctx, rnd, target, o.cfg.Workers)
	} else {
		synthetic, rejected, err = r.generateSequential(ctx, rnd, target)
	}
	if err != nil {
		return nil, err
	}
	out.Examples = append(out.Examples, synthetic...)

	res := &Result{
		Balanced:  out,
		Partition: p,
		Generated: len(synthetic),
		Rejected:  rejected,
	}
	if o.drawSeed {
		res.EstimatorSeed = int64(rnd.Int31())
		res.Seeded = true
	}

	elapsed := time.Since(start)
	recordBalance(ctx, mode, res.Generated, res.Rejected, elapsed)
	logger.Infow("smote: balanced",
		"data.samples", out.Len(),
		"smote.generated", res.Generated,
		"smote.rejected", res.Rejected,
		"smote.mode", mode,
		"smote.elapsed", elapsed,
	)
	return res, nil
}

// distanceOver returns the configured distance, normalized by the attribute
// ranges of ref when NormalizeDistance is set.
func (o *Oversampler) distanceOver(ref *dataset.Dataset) (geom.DistanceFn, error) {
	if !o.cfg.NormalizeDistance {
		return o.distFunc, nil
	}
	vectors := make([][]float64, ref.Len())
	for i, e := range ref.Examples {
		vectors[i] = e.Values
	}
	ranges, err := geom.NewRanges(vectors)
	if err != nil {
		return nil, fmt.Errorf("unable to compute attribute ranges: %w", err)
	}
	return ranges.Normalized(o.distFunc), nil
}

// baseOutput keeps the whole dataset in input order when the majority draw
// fraction is 1, otherwise all minority examples followed by majority
// examples drawn with replacement.
func (o *Oversampler) baseOutput(data *dataset.Dataset, p *partition.Partition, rnd random.Source) (*dataset.Dataset, error) {
	if o.cfg.MajorityDrawFraction == 1.0 {
		return data.Clone(), nil
	}
	draws, err := roundCount(p.Majority.Len(), o.cfg.MajorityDrawFraction)
	if err != nil {
		return nil, fmt.Errorf("majority draw fraction: %w", err)
	}
	out := data.Empty()
	out.Examples = append(out.Examples, p.Minority.Examples...)
	for i := 0; i < draws; i++ {
		out.Examples = append(out.Examples, p.Majority.Examples[rnd.Intn(p.Majority.Len())])
	}
	return out, nil
}

func (r *run) generateSequential(ctx context.Context, rnd random.Source, target int) ([]dataset.Example, int, error) {
	synthetic := make([]dataset.Example, 0, target)
	var rejected int
	for i := 0; i < target; i++ {
		if err := ctx.Err(); err != nil {
			return nil, rejected, err
		}
		e, n, err := r.synthesize(ctx, rnd)
		rejected += n
		if err != nil {
			return nil, rejected, err
		}
		synthetic = append(synthetic, e)
	}
	return synthetic, rejected, nil
}

// generateParallel draws one sub-seed per synthetic example from rnd in index
// order and generates example i from its own stream, so the output does not
// depend on the number of workers.
func (r *run) generateParallel(ctx context.Context, rnd random.Source, target, workers int) ([]dataset.Example, int, error) {
	if target == 0 {
		return nil, 0, nil
	}
	seeds := make([]int64, target)
	for i := range seeds {
		seeds[i] = rnd.Int63()
	}
	if workers > target {
		workers = target
	}

	synthetic := make([]dataset.Example, target)
	rejected := make([]int, target)
	chunk := (target + workers - 1) / workers
	g, gctx := errgroup.WithContext(ctx)
	for from := 0; from < target; from += chunk {
		from, to := from, from+chunk
		if to > target {
			to = target
		}
		g.Go(func() error {
			for i := from; i < to; i++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				e, n, err := r.synthesize(gctx, random.New(seeds[i]))
				rejected[i] = n
				if err != nil {
					return fmt.Errorf("synthetic example %d: %w", i, err)
				}
				synthetic[i] = e
			}
			return nil
		})
	}
	var total int
	err := g.Wait()
	for _, n := range rejected {
		total += n
	}
	if err != nil {
		return nil, total, err
	}
	return synthetic, total, nil
}

// synthesize draws a base example, looks up its neighbours and generates a
// candidate until the protector accepts one. It returns the number of
// rejected candidates.
func (r *run) synthesize(ctx context.Context, rnd random.Source) (dataset.Example, int, error) {
	logger := logging.FromContext(ctx)
	var rejected int
	for {
		base := r.minority[rnd.Intn(len(r.minority))]
		neighbors, err := r.index.KNN(base.Values, r.cfg.Neighbors)
		if err != nil {
			return dataset.Example{}, rejected, fmt.Errorf("neighbour lookup: %w", err)
		}
		candidate, err := r.generator.Generate(base, neighbors, rnd)
		if err != nil {
			return dataset.Example{}, rejected, fmt.Errorf("generate: %w", err)
		}
		ok, err := r.protector.Valid(candidate)
		if err != nil {
			return dataset.Example{}, rejected, err
		}
		if ok {
			return candidate, rejected, nil
		}
		rejected++
		if rejected > r.cfg.MaxProtectionRetries {
			return dataset.Example{}, rejected, fmt.Errorf("%w: %d candidates rejected", ErrProtectionExhausted, rejected)
		}
		logger.Debugf("smote: redo, candidate %v rejected", candidate.Values)
	}
}

// roundCount returns round(n * fraction), rounding halves up. Counts above
// MaxExamples are a configuration error.
func roundCount(n int, fraction float64) (int, error) {
	count := math.Floor(float64(n)*fraction + 0.5)
	if count > MaxExamples {
		return 0, fmt.Errorf("%w: %d * %v examples exceed the limit of %d", ErrConfiguration, n, fraction, MaxExamples)
	}
	return int(count), nil
}
