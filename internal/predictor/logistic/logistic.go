// Package logistic is a multinomial softmax regression trained by stochastic
// gradient descent. The visiting order of the training examples is drawn from
// a seeded source, which makes the estimator seedable.
package logistic

import (
	"context"
	"fmt"
	"math"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/random"
	"gonum.org/v1/gonum/floats"
)

var _ predictor.SeedableEstimator = (*logistic)(nil)

type Option func(*logistic)

func WithEpochs(n int) Option {
	return func(l *logistic) {
		l.epochs = n
	}
}

func WithLearningRate(lr float64) Option {
	return func(l *logistic) {
		l.lr = lr
	}
}

func WithSeed(seed int64) Option {
	return func(l *logistic) {
		l.seed = seed
	}
}

func New(opts ...Option) (*logistic, error) {
	l := &logistic{epochs: 100, lr: 0.1, seed: 1}
	for _, f := range opts {
		f(l)
	}
	if l.epochs < 1 {
		return nil, fmt.Errorf("epochs must be positive, got %d", l.epochs)
	}
	if l.lr <= 0 {
		return nil, fmt.Errorf("learning rate must be positive, got %g", l.lr)
	}
	return l, nil
}

// Handle wraps the regression as a seedable estimator.
func Handle(l *logistic) predictor.Handle {
	return predictor.Seedable(l).WithName("logistic")
}

type logistic struct {
	epochs int
	lr     float64
	seed   int64

	dims int
	// one row per class: dims weights followed by the bias
	weights [][]float64
}

func (l *logistic) SetSeed(seed int64) {
	l.seed = seed
}

func (l *logistic) Fit(ctx context.Context, data *dataset.Dataset) error {
	logger := logging.FromContext(ctx)
	train := data.WithoutMissingLabels()
	if train.Len() == 0 {
		return fmt.Errorf("unable to fit logistic regression, no labelled examples")
	}
	numClasses, err := predictor.NumClasses(train)
	if err != nil {
		return fmt.Errorf("unable to fit logistic regression: %w", err)
	}
	l.dims = data.NumAttributes()
	l.weights = make([][]float64, numClasses)
	for c := range l.weights {
		l.weights[c] = make([]float64, l.dims+1)
	}

	features := make([][]float64, train.Len())
	for i, e := range train.Examples {
		features[i] = l.features(e)
	}
	order := make([]int, train.Len())
	for i := range order {
		order[i] = i
	}
	src := random.New(l.seed)
	probs := make([]float64, numClasses)
	for epoch := 0; epoch < l.epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("fit interrupted at epoch %d: %w", epoch, err)
		}
		random.Shuffle(src, order)
		for _, idx := range order {
			e := train.Examples[idx]
			x := features[idx]
			l.softmax(x, probs)
			for c := range l.weights {
				target := 0.0
				if int(e.Label) == c {
					target = 1
				}
				grad := (probs[c] - target) * e.Weight
				floats.AddScaled(l.weights[c][:l.dims], -l.lr*grad, x)
				l.weights[c][l.dims] -= l.lr * grad
			}
		}
	}
	logger.Debugw("logistic regression fitted", "data.samples", train.Len(), "data.features", l.dims, "train.epochs", l.epochs)
	return nil
}

func (l *logistic) Distribution(_ context.Context, e dataset.Example) ([]float64, error) {
	if l.weights == nil {
		return nil, fmt.Errorf("unable to predict, logistic regression is not fitted")
	}
	if len(e.Values) != l.dims {
		return nil, fmt.Errorf("example has %d values, model expects %d", len(e.Values), l.dims)
	}
	probs := make([]float64, len(l.weights))
	l.softmax(l.features(e), probs)
	return probs, nil
}

// features replaces unknown values with 0.
func (l *logistic) features(e dataset.Example) []float64 {
	x := make([]float64, len(e.Values))
	for i, v := range e.Values {
		if !dataset.IsMissing(v) {
			x[i] = v
		}
	}
	return x
}

func (l *logistic) softmax(x []float64, dst []float64) {
	for c, w := range l.weights {
		dst[c] = floats.Dot(w[:l.dims], x) + w[l.dims]
	}
	max := floats.Max(dst)
	for c := range dst {
		dst[c] = math.Exp(dst[c] - max)
	}
	floats.Scale(1/floats.Sum(dst), dst)
}
