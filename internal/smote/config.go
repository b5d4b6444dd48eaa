package smote

import (
	"fmt"
	"math"

	"github.com/go-sod/smote/internal/geom"
)

const (
	DefaultNeighbors            = 5
	DefaultMaxProtectionRetries = 1000
	DefaultSeed                 = 1
)

// IndexType selects the nearest neighbour index used during generation.
type IndexType string

const (
	IndexTypeBrute  IndexType = "BRUTE"
	IndexTypeKDTree IndexType = "KDTREE"
)

type Config struct {
	// Synthetic examples to create, as a fraction of the minority class size
	MinorityGenerationFraction float64 `envconfig:"SMOTE_MINORITY_GENERATION_FRACTION" default:"1.0" toml:"minority_generation_fraction"`
	// Majority examples to keep, as a fraction of the majority class size. Anything
	// other than 1 draws the majority class with replacement
	MajorityDrawFraction float64 `envconfig:"SMOTE_MAJORITY_DRAW_FRACTION" default:"1.0" toml:"majority_draw_fraction"`
	// Nearest minority neighbours considered for interpolation
	Neighbors int `envconfig:"SMOTE_NEIGHBORS" default:"5" toml:"neighbors"`
	// Draw a fresh neighbour for every attribute
	PerAttributeNeighbor bool `envconfig:"SMOTE_PER_ATTRIBUTE_NEIGHBOR" default:"false" toml:"per_attribute_neighbor"`
	// Reject synthetic examples whose nearest neighbour is on the majority side
	Protection bool `envconfig:"SMOTE_SYNTHETIC_EXAMPLE_PROTECTION" default:"false" toml:"synthetic_example_protection"`
	// Rejections tolerated per synthetic example before giving up
	MaxProtectionRetries int   `envconfig:"SMOTE_MAX_PROTECTION_RETRIES" default:"1000" toml:"max_protection_retries"`
	Seed                 int64 `envconfig:"SMOTE_SEED" default:"1" toml:"seed"`
	// More than one worker generates synthetic examples in parallel
	Workers           int                   `envconfig:"SMOTE_WORKERS" default:"1" toml:"workers"`
	DistanceFunc      geom.DistanceFuncType `envconfig:"SMOTE_DISTANCE_FUNC" default:"EUCLIDEAN" toml:"distance_func"`
	NormalizeDistance bool                  `envconfig:"SMOTE_NORMALIZE_DISTANCE" default:"false" toml:"normalize_distance"`
	Index             IndexType             `envconfig:"SMOTE_NEIGHBOR_INDEX" default:"BRUTE" toml:"neighbor_index"`
}

// DefaultConfig mirrors the envconfig defaults.
func DefaultConfig() Config {
	return Config{
		MinorityGenerationFraction: 1.0,
		MajorityDrawFraction:       1.0,
		Neighbors:                  DefaultNeighbors,
		MaxProtectionRetries:       DefaultMaxProtectionRetries,
		Seed:                       DefaultSeed,
		Workers:                    1,
		DistanceFunc:               geom.DistanceFuncTypeEuclidean,
		Index:                      IndexTypeBrute,
	}
}

func (c Config) Validate() error {
	if c.Neighbors < 1 {
		return fmt.Errorf("%w: neighbors must be at least 1, got %d", ErrConfiguration, c.Neighbors)
	}
	if c.MinorityGenerationFraction < 0 || math.IsNaN(c.MinorityGenerationFraction) || math.IsInf(c.MinorityGenerationFraction, 0) {
		return fmt.Errorf("%w: minority generation fraction must be a finite value >= 0, got %v", ErrConfiguration, c.MinorityGenerationFraction)
	}
	if c.MajorityDrawFraction < 0 || math.IsNaN(c.MajorityDrawFraction) || math.IsInf(c.MajorityDrawFraction, 0) {
		return fmt.Errorf("%w: majority draw fraction must be a finite value >= 0, got %v", ErrConfiguration, c.MajorityDrawFraction)
	}
	if c.MaxProtectionRetries < 0 {
		return fmt.Errorf("%w: max protection retries must be >= 0, got %d", ErrConfiguration, c.MaxProtectionRetries)
	}
	if _, err := geom.DistanceFuncFor(c.DistanceFunc); err != nil {
		return fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	switch c.Index {
	case IndexTypeBrute, IndexTypeKDTree, "":
	default:
		return fmt.Errorf("%w: unknown neighbor index: %s", ErrConfiguration, c.Index)
	}
	return nil
}
