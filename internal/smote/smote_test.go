package smote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/geom"
	"github.com/go-sod/smote/internal/partition"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/predictor/knn/brute"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// labelled builds a numeric dataset, the last value of every row is the label.
func labelled(rows ...[]float64) *dataset.Dataset {
	dims := len(rows[0]) - 1
	ds := dataset.New(attrs(make([]dataset.Kind, dims)...), []string{"neg", "pos"})
	for _, row := range rows {
		ds.Examples = append(ds.Examples, dataset.NewExample(row[:dims], row[dims]))
	}
	return ds
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Seed = 42
	return cfg
}

func skewed() *dataset.Dataset {
	return labelled(
		[]float64{10, 10, 0},
		[]float64{0, 0, 1},
		[]float64{10, 12, 0},
		[]float64{0, 2, 1},
		[]float64{12, 10, 0},
	)
}

func TestBalance_ExplicitPartition(t *testing.T) {
	data := labelled(
		[]float64{0, 0, 0},
		[]float64{0, 2, 0},
		[]float64{10, 10, 1},
	)
	p := &partition.Partition{
		Minority:     dataset.New(data.Attributes, data.Classes, data.Examples[0], data.Examples[1]),
		Majority:     dataset.New(data.Attributes, data.Classes, data.Examples[2]),
		MinoritySide: partition.SideNonPositive,
	}
	tests := []struct {
		name      string
		fraction  float64
		generated int
	}{
		{name: "half", fraction: 0.5, generated: 1},
		{name: "full", fraction: 1.0, generated: 2},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Neighbors = 1
			cfg.MinorityGenerationFraction = test.fraction
			o, err := New(cfg)
			require.NoError(t, err)

			res, err := o.balance(context.Background(), data, p, time.Now())
			require.NoError(t, err)
			require.Equal(t, 3+test.generated, res.Balanced.Len())
			assert.Equal(t, test.generated, res.Generated)
			assert.Equal(t, data.Examples, res.Balanced.Examples[:3])

			for _, synthetic := range res.Balanced.Examples[3:] {
				assert.True(t, synthetic.Synthetic)
				assert.Equal(t, 0.0, synthetic.Label)
				for _, v := range synthetic.Values {
					assert.GreaterOrEqual(t, v, 0.0)
					assert.LessOrEqual(t, v, 2.0)
				}
			}
		})
	}
}

func TestBalance_FullMajority(t *testing.T) {
	o, err := New(testConfig())
	require.NoError(t, err)

	ds := skewed()
	res, err := o.Balance(context.Background(), ds)
	require.NoError(t, err)

	assert.Equal(t, partition.SidePositive, res.Partition.MinoritySide)
	require.Equal(t, ds.Len()+2, res.Balanced.Len(), spew.Sdump(res.Balanced.Examples))
	assert.Equal(t, ds.Examples, res.Balanced.Examples[:ds.Len()])
	assert.Equal(t, 2, res.Balanced.SyntheticCount())
	// the only minority pair is (0,0)-(0,2), every synthetic example lies on it
	for _, e := range res.Balanced.Examples[ds.Len():] {
		assert.True(t, e.Synthetic)
		assert.Equal(t, 1.0, e.Label)
		assert.Equal(t, 0.0, e.Values[0])
		assert.GreaterOrEqual(t, e.Values[1], 0.0)
		assert.LessOrEqual(t, e.Values[1], 2.0)
	}
	assert.False(t, res.Seeded)
}

func TestBalance_MinorityGenerationFraction(t *testing.T) {
	tests := []struct {
		name      string
		fraction  float64
		generated int
	}{
		{name: "zero", fraction: 0, generated: 0},
		{name: "half_rounds_up", fraction: 0.25, generated: 1},
		{name: "one", fraction: 1, generated: 2},
		{name: "above_one", fraction: 2.5, generated: 5},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.MinorityGenerationFraction = test.fraction
			o, err := New(cfg)
			require.NoError(t, err)

			ds := skewed()
			res, err := o.Balance(context.Background(), ds)
			require.NoError(t, err)
			assert.Equal(t, test.generated, res.Generated)
			assert.Equal(t, ds.Len()+test.generated, res.Balanced.Len())
			assert.Equal(t, test.generated, res.Balanced.SyntheticCount())
		})
	}
}

func TestBalance_MajorityDraw(t *testing.T) {
	ds := labelled(
		[]float64{0, 1, 1},
		[]float64{0, 2, 1},
		[]float64{0, 3, 1},
	)
	for i := 0; i < 10; i++ {
		ds.Examples = append(ds.Examples, dataset.NewExample([]float64{float64(100 + i), 0}, 0))
	}

	tests := []struct {
		fraction float64
		draws    int
	}{
		{fraction: 0.5, draws: 5},
		{fraction: 0, draws: 0},
		{fraction: 2, draws: 20},
	}
	for _, test := range tests {
		cfg := testConfig()
		cfg.MinorityGenerationFraction = 0
		cfg.MajorityDrawFraction = test.fraction
		o, err := New(cfg)
		require.NoError(t, err)

		res, err := o.Balance(context.Background(), ds)
		require.NoError(t, err)
		require.Equal(t, 3+test.draws, res.Balanced.Len())
		assert.Equal(t, ds.Examples[:3], res.Balanced.Examples[:3])
		for _, e := range res.Balanced.Examples[3:] {
			assert.Equal(t, 0.0, e.Label)
			assert.GreaterOrEqual(t, e.Values[0], 100.0)
			assert.False(t, e.Synthetic)
		}
	}
}

func randomDataset() *dataset.Dataset {
	ds := labelled([]float64{0, 0, 1})
	for i := 1; i < 40; i++ {
		x, y := float64(i%7), float64(i%11)
		label := 0.0
		if i%4 == 0 {
			label = 1
		}
		ds.Examples = append(ds.Examples, dataset.NewExample([]float64{x, y}, label))
	}
	return ds
}

func TestBalance_Deterministic(t *testing.T) {
	for _, perAttr := range []bool{false, true} {
		cfg := testConfig()
		cfg.PerAttributeNeighbor = perAttr
		cfg.MinorityGenerationFraction = 2
		o, err := New(cfg, WithSeedDraw())
		require.NoError(t, err)

		first, err := o.Balance(context.Background(), randomDataset())
		require.NoError(t, err)
		second, err := o.Balance(context.Background(), randomDataset())
		require.NoError(t, err)
		assert.Equal(t, first.Balanced, second.Balanced)
		assert.True(t, first.Seeded)
		assert.Equal(t, first.EstimatorSeed, second.EstimatorSeed)

		cfg.Seed = 43
		other, err := New(cfg, WithSeedDraw())
		require.NoError(t, err)
		third, err := other.Balance(context.Background(), randomDataset())
		require.NoError(t, err)
		assert.NotEqual(t, first.Balanced.Examples, third.Balanced.Examples)
	}
}

func TestBalance_KDTreeMatchesLinearScan(t *testing.T) {
	for _, protection := range []bool{false, true} {
		cfg := testConfig()
		cfg.MinorityGenerationFraction = 3
		cfg.Protection = protection
		scan, err := New(cfg)
		require.NoError(t, err)

		cfg.Index = IndexTypeKDTree
		tree, err := New(cfg)
		require.NoError(t, err)

		want, err := scan.Balance(context.Background(), randomDataset())
		require.NoError(t, err)
		got, err := tree.Balance(context.Background(), randomDataset())
		require.NoError(t, err)
		assert.Equal(t, want.Balanced, got.Balanced)
		assert.Equal(t, want.Rejected, got.Rejected)
	}
}

func TestBalance_NormalizedRangesPerIndex(t *testing.T) {
	ds := labelled(
		[]float64{0, 0, 1},
		[]float64{1, 0, 1},
		[]float64{0, 1, 1},
		[]float64{0, 4, 1},
		[]float64{100, 4, 0},
		[]float64{90, 4, 0},
		[]float64{95, 3, 0},
		[]float64{99, 2, 0},
		[]float64{98, 1, 0},
	)
	var built []predictor.KNNAlg
	cfg := testConfig()
	cfg.Neighbors = 2
	cfg.NormalizeDistance = true
	cfg.Protection = true
	o, err := New(cfg, WithIndexProvider(func(fn geom.DistanceFn) predictor.KNNAlg {
		idx := brute.NewBruteAlg(fn)
		built = append(built, idx)
		return idx
	}))
	require.NoError(t, err)

	_, err = o.Balance(context.Background(), ds)
	require.NoError(t, err)
	require.Len(t, built, 2)

	// minority ranges: x spans 1, y spans 4, so (0,1) is nearer to the origin
	minority, err := built[0].KNN([]float64{0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, built[0].Len())
	assert.Equal(t, []float64{0, 1}, minority[1].Values)

	// full ranges: x spans 100, y spans 4, so (1,0) is nearer
	full, err := built[1].KNN([]float64{0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, ds.Len(), built[1].Len())
	assert.Equal(t, []float64{1, 0}, full[1].Values)
}

func TestBalance_ParallelIndependentOfWorkers(t *testing.T) {
	run := func(workers int) *Result {
		cfg := testConfig()
		cfg.Workers = workers
		cfg.MinorityGenerationFraction = 3
		o, err := New(cfg)
		require.NoError(t, err)
		res, err := o.Balance(context.Background(), randomDataset())
		require.NoError(t, err)
		return res
	}

	two, eight := run(2), run(8)
	assert.Equal(t, two.Balanced, eight.Balanced)
	assert.Equal(t, 30, two.Generated)
}

func TestBalance_SelfIncludedSingleNeighbor(t *testing.T) {
	cfg := testConfig()
	cfg.Neighbors = 1
	cfg.MinorityGenerationFraction = 3
	o, err := New(cfg)
	require.NoError(t, err)

	ds := randomDataset()
	res, err := o.Balance(context.Background(), ds)
	require.NoError(t, err)

	minority := res.Partition.Minority.Examples
	for _, e := range res.Balanced.Examples[ds.Len():] {
		var found bool
		for _, m := range minority {
			if assert.ObjectsAreEqual(m.Values, e.Values) {
				found = true
				break
			}
		}
		assert.True(t, found, "synthetic %v is not a minority example", e.Values)
	}
}

func TestBalance_Protection(t *testing.T) {
	t.Run("rejects_majority_neighbourhood", func(t *testing.T) {
		ds := labelled(
			[]float64{0, 1},
			[]float64{10, 1},
			[]float64{5, 0},
			[]float64{5, 0},
			[]float64{5, 0},
		)
		cfg := testConfig()
		cfg.Protection = true
		cfg.MinorityGenerationFraction = 5
		o, err := New(cfg)
		require.NoError(t, err)

		res, err := o.Balance(context.Background(), ds)
		require.NoError(t, err)
		assert.Equal(t, 10, res.Generated)
		for _, e := range res.Balanced.Examples[ds.Len():] {
			assert.True(t, e.Values[0] <= 2.5 || e.Values[0] >= 7.5, "value %v is closer to the majority", e.Values[0])
		}
	})

	t.Run("exhausted", func(t *testing.T) {
		ds := labelled(
			[]float64{0, 0},
			[]float64{0, 0},
			[]float64{0, 0},
			[]float64{0, 1},
			[]float64{0, 1},
		)
		cfg := testConfig()
		cfg.Protection = true
		cfg.MaxProtectionRetries = 5
		o, err := New(cfg)
		require.NoError(t, err)

		_, err = o.Balance(context.Background(), ds)
		assert.True(t, errors.Is(err, ErrProtectionExhausted), "got %v", err)
	})

	t.Run("disabled_accepts_everything", func(t *testing.T) {
		ds := labelled(
			[]float64{0, 0},
			[]float64{0, 0},
			[]float64{0, 0},
			[]float64{0, 1},
			[]float64{0, 1},
		)
		o, err := New(testConfig())
		require.NoError(t, err)

		res, err := o.Balance(context.Background(), ds)
		require.NoError(t, err)
		assert.Equal(t, 2, res.Generated)
		assert.Zero(t, res.Rejected)
	})
}

func TestBalance_Errors(t *testing.T) {
	ctx := context.Background()
	o, err := New(testConfig())
	require.NoError(t, err)

	t.Run("no_labelled_examples", func(t *testing.T) {
		ds := labelled([]float64{0, 0, dataset.Missing()})
		_, err := o.Balance(ctx, ds)
		assert.True(t, errors.Is(err, ErrConfiguration))
	})

	t.Run("single_class", func(t *testing.T) {
		ds := labelled([]float64{0, 0, 1}, []float64{1, 1, 1})
		_, err := o.Balance(ctx, ds)
		assert.True(t, errors.Is(err, ErrConfiguration))
		assert.True(t, errors.Is(err, partition.ErrEmptyClass))
	})

	t.Run("missing_labels_removed", func(t *testing.T) {
		ds := skewed()
		ds.Examples = append(ds.Examples, dataset.NewExample([]float64{5, 5}, dataset.Missing()))
		res, err := o.Balance(ctx, ds)
		require.NoError(t, err)
		assert.Equal(t, ds.Len()-1+2, res.Balanced.Len())
		for _, e := range res.Balanced.Examples {
			assert.True(t, e.HasLabel())
		}
	})

	t.Run("minority_fraction_too_large", func(t *testing.T) {
		cfg := testConfig()
		cfg.MinorityGenerationFraction = 1e19
		big, err := New(cfg)
		require.NoError(t, err)
		_, err = big.Balance(ctx, skewed())
		assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)

		cfg.Workers = 4
		big, err = New(cfg)
		require.NoError(t, err)
		_, err = big.Balance(ctx, skewed())
		assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
	})

	t.Run("majority_fraction_too_large", func(t *testing.T) {
		cfg := testConfig()
		cfg.MajorityDrawFraction = 1e19
		big, err := New(cfg)
		require.NoError(t, err)
		_, err = big.Balance(ctx, skewed())
		assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
	})

	t.Run("cancelled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := o.Balance(cctx, skewed())
		assert.True(t, errors.Is(err, context.Canceled))
	})
}

func TestNew_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{name: "zero_neighbors", modify: func(c *Config) { c.Neighbors = 0 }},
		{name: "negative_minority_fraction", modify: func(c *Config) { c.MinorityGenerationFraction = -0.1 }},
		{name: "negative_majority_fraction", modify: func(c *Config) { c.MajorityDrawFraction = -1 }},
		{name: "negative_retries", modify: func(c *Config) { c.MaxProtectionRetries = -1 }},
		{name: "unknown_distance", modify: func(c *Config) { c.DistanceFunc = "HAMMING" }},
		{name: "unknown_index", modify: func(c *Config) { c.Index = "BALLTREE" }},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := DefaultConfig()
			test.modify(&cfg)
			_, err := New(cfg)
			assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
		})
	}
}
