package smote_test

import (
	"context"
	"errors"
	"testing"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/predictor/knn"
	"github.com/go-sod/smote/internal/predictor/logistic"
	"github.com/go-sod/smote/internal/predictor/mocks"
	"github.com/go-sod/smote/internal/smote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func rawTable() *encoder.Raw {
	return &encoder.Raw{
		Header:     []string{"x", "y", "class"},
		ClassIndex: 2,
		Rows: [][]string{
			{"10", "10", "no"},
			{"0", "0", "yes"},
			{"10", "12", "no"},
			{"0", "2", "yes"},
			{"12", "10", "no"},
		},
	}
}

func TestClassifier_RunKNN(t *testing.T) {
	est, err := knn.New(knn.WithKNum(1))
	require.NoError(t, err)
	c, err := smote.NewClassifier(smote.DefaultConfig(), knn.Handle(est), encoder.NewNominalToBinary())
	require.NoError(t, err)

	res, err := c.Run(context.Background(), rawTable())
	require.NoError(t, err)
	assert.Equal(t, 7, res.Balanced.Len())
	assert.Equal(t, 2, res.Generated)
	assert.Equal(t, []string{"no", "yes"}, res.Balanced.Classes)
	assert.True(t, c.Fitted())

	dist, err := c.Distribution(context.Background(), []string{"0", "1"})
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 1}, dist)

	dist, err = c.Distribution(context.Background(), []string{"11", "11", "?"})
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, dist)

	assert.Equal(t, []string{knn.MeasureNumTrainingExamples, knn.MeasureK}, c.Measures())
	n, err := c.Measure(knn.MeasureNumTrainingExamples)
	require.NoError(t, err)
	assert.Equal(t, 7.0, n)
}

func TestClassifier_SeedsSeedableEstimator(t *testing.T) {
	est := &mocks.SeedableEstimator{}
	est.On("SetSeed", mock.AnythingOfType("int64")).Return()
	est.On("Fit", mock.Anything, mock.MatchedBy(func(d *dataset.Dataset) bool {
		return d.Len() == 7 && d.SyntheticCount() == 2
	})).Return(nil)

	c, err := smote.NewClassifier(smote.DefaultConfig(), predictor.Seedable(est), encoder.NewNominalToBinary())
	require.NoError(t, err)
	_, err = c.Run(context.Background(), rawTable())
	require.NoError(t, err)

	est.AssertNumberOfCalls(t, "SetSeed", 1)
	est.AssertNumberOfCalls(t, "Fit", 1)
}

func TestClassifier_Reproducible(t *testing.T) {
	run := func() []float64 {
		est, err := logistic.New(logistic.WithEpochs(20))
		require.NoError(t, err)
		c, err := smote.NewClassifier(smote.DefaultConfig(), logistic.Handle(est), encoder.NewNominalToBinary())
		require.NoError(t, err)
		_, err = c.Run(context.Background(), rawTable())
		require.NoError(t, err)
		dist, err := c.Distribution(context.Background(), []string{"5", "5"})
		require.NoError(t, err)
		return dist
	}
	assert.Equal(t, run(), run())
}

func TestClassifier_Normalizes(t *testing.T) {
	tests := []struct {
		name     string
		raw      []float64
		expected []float64
	}{
		{name: "scaled", raw: []float64{2, 6}, expected: []float64{0.25, 0.75}},
		{name: "all_zero", raw: []float64{0, 0}, expected: []float64{0, 0}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			est := &mocks.Estimator{}
			est.On("Fit", mock.Anything, mock.Anything).Return(nil)
			est.On("Distribution", mock.Anything, mock.Anything).Return(test.raw, nil)

			c, err := smote.NewClassifier(smote.DefaultConfig(), predictor.Plain(est), encoder.NewNominalToBinary())
			require.NoError(t, err)
			_, err = c.Run(context.Background(), rawTable())
			require.NoError(t, err)

			dist, err := c.Distribution(context.Background(), []string{"1", "1"})
			require.NoError(t, err)
			assert.Equal(t, test.expected, dist)
			assert.Empty(t, c.Measures())
		})
	}
}

func TestClassifier_Errors(t *testing.T) {
	est := &mocks.Estimator{}
	est.On("Fit", mock.Anything, mock.Anything).Return(nil)

	_, err := smote.NewClassifier(smote.DefaultConfig(), predictor.Handle{}, encoder.NewNominalToBinary())
	assert.True(t, errors.Is(err, smote.ErrConfiguration))

	cfg := smote.DefaultConfig()
	cfg.Neighbors = 0
	_, err = smote.NewClassifier(cfg, predictor.Plain(est), encoder.NewNominalToBinary())
	assert.True(t, errors.Is(err, smote.ErrConfiguration))

	c, err := smote.NewClassifier(smote.DefaultConfig(), predictor.Plain(est), encoder.NewNominalToBinary())
	require.NoError(t, err)

	_, err = c.Distribution(context.Background(), []string{"1", "1"})
	assert.True(t, errors.Is(err, smote.ErrNotFitted))

	raw := rawTable()
	raw.Kinds = []encoder.RawKind{encoder.RawString, encoder.RawNumeric, encoder.RawNominal}
	_, err = c.Run(context.Background(), raw)
	assert.True(t, errors.Is(err, encoder.ErrEncoding), "got %v", err)
	assert.False(t, c.Fitted())
	est.AssertNotCalled(t, "Fit", mock.Anything, mock.Anything)
}
