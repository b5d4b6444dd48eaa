package predictor

import (
	"context"
	"fmt"
	"math"

	"github.com/go-sod/smote/internal/dataset"
)

var (
	ErrMeasureNotSupported = fmt.Errorf("additional measures not supported by estimator")
	ErrInvalidLabel        = fmt.Errorf("class label is not a class index")
)

// NumClasses returns the size of a class distribution over data: at least
// len(data.Classes), and large enough to index every known label. Labels must
// be whole numbers >= 0.
func NumClasses(data *dataset.Dataset) (int, error) {
	n := len(data.Classes)
	for _, e := range data.Examples {
		if !e.HasLabel() {
			continue
		}
		if e.Label < 0 || e.Label != math.Trunc(e.Label) || math.IsInf(e.Label, 0) {
			return 0, fmt.Errorf("%w: %v", ErrInvalidLabel, e.Label)
		}
		if int(e.Label)+1 > n {
			n = int(e.Label) + 1
		}
	}
	return n, nil
}

// ProvideFn returns a fresh, unfitted estimator handle.
type ProvideFn func() (Handle, error)

// KNNAlg is a nearest neighbour index over encoded examples.
type KNNAlg interface {
	Reset()
	Len() int
	Build(data ...dataset.Example)
	KNN(vec []float64, k int) ([]dataset.Example, error)
}

// Estimator is a trainable model producing class distributions.
type Estimator interface {
	Fit(ctx context.Context, data *dataset.Dataset) error
	Distribution(ctx context.Context, e dataset.Example) ([]float64, error)
}

// Seeder is implemented by estimators with randomized training.
type Seeder interface {
	SetSeed(seed int64)
}

type SeedableEstimator interface {
	Estimator
	Seeder
}

// MeasureProducer exposes named scalar measures of a fitted estimator.
type MeasureProducer interface {
	Measures() []string
	Measure(name string) (float64, error)
}

// Handle wraps an estimator together with the optional capabilities it was
// declared with. Capabilities are fixed when the handle is built.
type Handle struct {
	name      string
	estimator Estimator
	seeder    Seeder
	measures  MeasureProducer
}

// Plain wraps an estimator without a seed of its own.
func Plain(e Estimator) Handle {
	return Handle{estimator: e}
}

// Seedable wraps an estimator that receives a seed derived from the
// oversampling random source before fitting.
func Seedable(e SeedableEstimator) Handle {
	return Handle{estimator: e, seeder: e}
}

// WithMeasures declares a measure producer for the handle.
func (h Handle) WithMeasures(m MeasureProducer) Handle {
	h.measures = m
	return h
}

func (h Handle) WithName(name string) Handle {
	h.name = name
	return h
}

func (h Handle) Name() string {
	if h.name == "" {
		return fmt.Sprintf("%T", h.estimator)
	}
	return h.name
}

func (h Handle) Valid() bool {
	return h.estimator != nil
}

func (h Handle) Seedable() bool {
	return h.seeder != nil
}

// SetSeed forwards the seed to a seedable estimator and is a no-op otherwise.
func (h Handle) SetSeed(seed int64) {
	if h.seeder != nil {
		h.seeder.SetSeed(seed)
	}
}

func (h Handle) Fit(ctx context.Context, data *dataset.Dataset) error {
	if h.estimator == nil {
		return fmt.Errorf("estimator is not set")
	}
	return h.estimator.Fit(ctx, data)
}

func (h Handle) Distribution(ctx context.Context, e dataset.Example) ([]float64, error) {
	if h.estimator == nil {
		return nil, fmt.Errorf("estimator is not set")
	}
	return h.estimator.Distribution(ctx, e)
}

// Measures lists the measure names, empty when the estimator produces none.
func (h Handle) Measures() []string {
	if h.measures == nil {
		return []string{}
	}
	return h.measures.Measures()
}

func (h Handle) Measure(name string) (float64, error) {
	if h.measures == nil {
		return 0, ErrMeasureNotSupported
	}
	return h.measures.Measure(name)
}
