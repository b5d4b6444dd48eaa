package smote

import (
	"context"
	"time"

	"go.opencensus.io/stats"
	"go.opencensus.io/stats/view"
	"go.opencensus.io/tag"
)

var (
	MSyntheticExamples    = stats.Int64("smote/synthetic_examples", "Synthetic examples added to balanced datasets", stats.UnitDimensionless)
	MProtectionRejections = stats.Int64("smote/protection_rejections", "Synthetic examples rejected by the protection filter", stats.UnitDimensionless)
	MBalanceLatency       = stats.Float64("smote/balance_latency", "Time spent balancing one dataset", stats.UnitMilliseconds)

	// KeyMode tells sequential and parallel runs apart.
	KeyMode = tag.MustNewKey("mode")
)

// Views are registered by the service setup.
var Views = []*view.View{
	{
		Name:        "smote/synthetic_examples_total",
		Measure:     MSyntheticExamples,
		Description: "Total synthetic examples",
		TagKeys:     []tag.Key{KeyMode},
		Aggregation: view.Sum(),
	},
	{
		Name:        "smote/protection_rejections_total",
		Measure:     MProtectionRejections,
		Description: "Total protection rejections",
		TagKeys:     []tag.Key{KeyMode},
		Aggregation: view.Sum(),
	},
	{
		Name:        "smote/balance_latency",
		Measure:     MBalanceLatency,
		Description: "Balance latency distribution",
		TagKeys:     []tag.Key{KeyMode},
		Aggregation: view.Distribution(1, 5, 10, 50, 100, 500, 1000, 5000, 10000),
	},
}

func recordBalance(ctx context.Context, mode string, generated, rejected int, elapsed time.Duration) {
	ctx, err := tag.New(ctx, tag.Upsert(KeyMode, mode))
	if err != nil {
		return
	}
	stats.Record(ctx,
		MSyntheticExamples.M(int64(generated)),
		MProtectionRejections.M(int64(rejected)),
		MBalanceLatency.M(float64(elapsed)/float64(time.Millisecond)),
	)
}
