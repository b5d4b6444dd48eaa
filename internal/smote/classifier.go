package smote

import (
	"context"
	"fmt"
	"sync"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/predictor"
	"gonum.org/v1/gonum/floats"
)

// Encoder turns raw tables into encoded datasets and encodes single rows the
// same way afterwards.
type Encoder interface {
	Fit(raw *encoder.Raw) (*dataset.Dataset, error)
	EncodeRow(row []string) (dataset.Example, error)
}

// RunResult is the outcome of Classifier.Run.
type RunResult struct {
	Balanced  *dataset.Dataset
	Estimator predictor.Handle
	Generated int
	Rejected  int
}

// Classifier encodes a raw dataset, balances it and trains the wrapped
// estimator on the balanced result. The classifier owns the estimator.
type Classifier struct {
	mtx sync.RWMutex

	cfg     Config
	handle  predictor.Handle
	encoder Encoder
	classes []string
	fitted  bool
}

func NewClassifier(cfg Config, handle predictor.Handle, enc Encoder) (*Classifier, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !handle.Valid() {
		return nil, fmt.Errorf("%w: estimator is not set", ErrConfiguration)
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: encoder is not set", ErrConfiguration)
	}
	return &Classifier{cfg: cfg, handle: handle, encoder: enc}, nil
}

// Run encodes raw, balances the encoded dataset and fits the estimator. A
// seedable estimator gets a seed drawn from the same random source, so the
// whole run is reproducible from Config.Seed.
func (c *Classifier) Run(ctx context.Context, raw *encoder.Raw) (*RunResult, error) {
	logger := logging.FromContext(ctx)

	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.fitted = false

	ds, err := c.encoder.Fit(raw)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	var opts []Option
	if c.handle.Seedable() {
		opts = append(opts, WithSeedDraw())
	}
	oversampler, err := New(c.cfg, opts...)
	if err != nil {
		return nil, err
	}
	res, err := oversampler.Balance(ctx, ds)
	if err != nil {
		return nil, fmt.Errorf("balance: %w", err)
	}

	if res.Seeded {
		logger.Debugf("smote: seeding %s with %d", c.handle.Name(), res.EstimatorSeed)
		c.handle.SetSeed(res.EstimatorSeed)
	}
	if err := c.handle.Fit(ctx, res.Balanced); err != nil {
		return nil, fmt.Errorf("fit %s: %w", c.handle.Name(), err)
	}
	c.classes = ds.Classes
	c.fitted = true

	return &RunResult{
		Balanced:  res.Balanced,
		Estimator: c.handle,
		Generated: res.Generated,
		Rejected:  res.Rejected,
	}, nil
}

// Encode applies the training encoding to a raw row.
func (c *Classifier) Encode(row []string) (dataset.Example, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if !c.fitted {
		return dataset.Example{}, ErrNotFitted
	}
	return c.encoder.EncodeRow(row)
}

// Distribution encodes row and returns the class distribution of the fitted
// estimator.
func (c *Classifier) Distribution(ctx context.Context, row []string) ([]float64, error) {
	e, err := c.Encode(row)
	if err != nil {
		return nil, err
	}
	return c.DistributionForExample(ctx, e)
}

// DistributionForExample returns the class distribution for an already
// encoded example, normalized to sum to 1 unless every entry is zero.
func (c *Classifier) DistributionForExample(ctx context.Context, e dataset.Example) ([]float64, error) {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if !c.fitted {
		return nil, ErrNotFitted
	}
	dist, err := c.handle.Distribution(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("distribution: %w", err)
	}
	out := make([]float64, len(dist))
	copy(out, dist)
	if sum := floats.Sum(out); sum != 0 {
		floats.Scale(1/sum, out)
	}
	return out, nil
}

// Measures lists the measures of the wrapped estimator.
func (c *Classifier) Measures() []string {
	return c.handle.Measures()
}

func (c *Classifier) Measure(name string) (float64, error) {
	return c.handle.Measure(name)
}

// ClassName returns the name of the class at idx of a distribution, empty when
// out of range.
func (c *Classifier) ClassName(idx int) string {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	if idx < 0 || idx >= len(c.classes) {
		return ""
	}
	return c.classes[idx]
}

func (c *Classifier) Fitted() bool {
	c.mtx.RLock()
	defer c.mtx.RUnlock()
	return c.fitted
}
