// Package knn is a k-nearest-neighbour classifier usable as the estimator
// trained on a balanced dataset.
package knn

import (
	"context"
	"fmt"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/geom"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/predictor/knn/brute"
	"gonum.org/v1/gonum/floats"
)

var (
	_ predictor.Estimator       = (*knn)(nil)
	_ predictor.MeasureProducer = (*knn)(nil)
)

const (
	MinKNum = 1

	MeasureNumTrainingExamples = "measureNumTrainingExamples"
	MeasureK                   = "measureK"
)

type Option func(*knn)

func WithKNum(k int) Option {
	return func(l *knn) {
		l.kNum = k
	}
}

func WithDistance(f geom.DistanceFn) Option {
	return func(l *knn) {
		l.distFunc = f
	}
}

func New(opts ...Option) (*knn, error) {
	k := &knn{
		kNum:     MinKNum,
		distFunc: geom.EuclideanDistance,
	}
	for _, f := range opts {
		f(k)
	}
	if k.kNum < MinKNum {
		return nil, fmt.Errorf("the k selected in the config is too small: %d", k.kNum)
	}
	k.alg = brute.NewBruteAlg(k.distFunc)
	return k, nil
}

// Handle wraps the classifier as a plain, measure producing estimator.
func Handle(k *knn) predictor.Handle {
	return predictor.Plain(k).WithMeasures(k).WithName("knn")
}

type knn struct {
	kNum       int
	numClasses int
	alg        predictor.KNNAlg
	distFunc   geom.DistanceFn
}

func (k *knn) Fit(ctx context.Context, data *dataset.Dataset) error {
	logger := logging.FromContext(ctx)
	train := data.WithoutMissingLabels()
	if train.Len() == 0 {
		return fmt.Errorf("unable to fit knn, no labelled examples")
	}
	numClasses, err := predictor.NumClasses(train)
	if err != nil {
		return fmt.Errorf("unable to fit knn: %w", err)
	}
	k.numClasses = numClasses
	k.alg.Build(train.Examples...)
	logger.Debugw("knn fitted", "data.samples", train.Len(), "data.features", train.NumAttributes(), "knn.k", k.kNum)
	return nil
}

// Distribution is the weight-proportional vote of the k nearest training
// examples.
func (k *knn) Distribution(_ context.Context, e dataset.Example) ([]float64, error) {
	if k.alg.Len() == 0 {
		return nil, fmt.Errorf("unable to predict, knn is not fitted")
	}
	nn, err := k.alg.KNN(e.Values, k.kNum)
	if err != nil {
		return nil, fmt.Errorf("unable compute KNN: %w", err)
	}
	dist := make([]float64, k.numClasses)
	for _, n := range nn {
		dist[int(n.Label)] += n.Weight
	}
	if sum := floats.Sum(dist); sum > 0 {
		floats.Scale(1/sum, dist)
	}
	return dist, nil
}

func (k *knn) Measures() []string {
	return []string{MeasureNumTrainingExamples, MeasureK}
}

func (k *knn) Measure(name string) (float64, error) {
	switch name {
	case MeasureNumTrainingExamples:
		return float64(k.alg.Len()), nil
	case MeasureK:
		return float64(k.kNum), nil
	default:
		return 0, fmt.Errorf("%w: %s", predictor.ErrMeasureNotSupported, name)
	}
}
