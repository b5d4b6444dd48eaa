package logistic

import (
	"context"
	"testing"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func separable() *dataset.Dataset {
	d := dataset.New([]dataset.Attribute{{Name: "x"}, {Name: "y"}}, []string{"low", "high"})
	for i := 0; i < 20; i++ {
		v := float64(i) / 10
		_ = d.Append(dataset.NewExample([]float64{v, dataset.Missing()}, 0))
		_ = d.Append(dataset.NewExample([]float64{v + 5, 1}, 1))
	}
	return d
}

func TestLogistic_Fit(t *testing.T) {
	l, err := New(WithEpochs(50), WithLearningRate(0.1))
	require.NoError(t, err)
	require.NoError(t, l.Fit(context.Background(), separable()))

	low, err := l.Distribution(context.Background(), dataset.NewExample([]float64{0.5, 0}, 0))
	require.NoError(t, err)
	high, err := l.Distribution(context.Background(), dataset.NewExample([]float64{6, 1}, 1))
	require.NoError(t, err)

	assert.InDelta(t, 1.0, low[0]+low[1], 1e-9)
	assert.Greater(t, low[0], low[1])
	assert.Greater(t, high[1], high[0])
}

func TestLogistic_SeedReproducible(t *testing.T) {
	fit := func(seed int64) []float64 {
		l, err := New(WithEpochs(5))
		require.NoError(t, err)
		Handle(l).SetSeed(seed)
		require.Equal(t, seed, l.seed)
		require.NoError(t, l.Fit(context.Background(), separable()))
		p, err := l.Distribution(context.Background(), dataset.NewExample([]float64{2.5, 0.5}, 0))
		require.NoError(t, err)
		return p
	}
	assert.Equal(t, fit(11), fit(11))
}

func TestLogistic_Errors(t *testing.T) {
	_, err := New(WithEpochs(0))
	assert.Error(t, err)
	_, err = New(WithLearningRate(0))
	assert.Error(t, err)

	l, err := New()
	require.NoError(t, err)
	_, err = l.Distribution(context.Background(), dataset.NewExample([]float64{1, 1}, 0))
	assert.Error(t, err)

	require.NoError(t, l.Fit(context.Background(), separable()))
	_, err = l.Distribution(context.Background(), dataset.NewExample([]float64{1}, 0))
	assert.Error(t, err)

	assert.True(t, Handle(l).Seedable())

	signed := separable()
	signed.Examples[0].Label = -1
	fresh, err := New()
	require.NoError(t, err)
	assert.ErrorIs(t, fresh.Fit(context.Background(), signed), predictor.ErrInvalidLabel)
}
