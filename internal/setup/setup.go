package setup

import (
	"context"
	"fmt"

	"github.com/go-sod/smote/internal/balance"
	"github.com/go-sod/smote/internal/database"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/predictor/knn"
	"github.com/go-sod/smote/internal/predictor/logistic"
	"github.com/go-sod/smote/internal/smote"
	"github.com/go-sod/smote/internal/srvenv"
	"github.com/kelseyhightower/envconfig"
	"go.opencensus.io/stats/view"
)

type SmoteConfigProvider interface {
	SmoteConfig() *smote.Config
}

type EncoderConfigProvider interface {
	EncoderConfig() *encoder.Config
}

type PredictorConfigProvider interface {
	PredictConfig() *predictor.Config
	PredictType() predictor.AlgType
}

type DatabaseConfigProvider interface {
	DatabaseConfig() *database.Config
}

type BalanceConfigProvider interface {
	BalanceConfig() *balance.Config
}

type LoggingConfigProvider interface {
	Logging() (level string, development bool)
}

// Setup processes the environment into config and builds the service
// dependencies its providers ask for. The returned context carries the
// configured logger.
func Setup(ctx context.Context, config interface{}) (context.Context, *srvenv.SrvEnv, error) {
	if err := envconfig.Process("", config); err != nil {
		return ctx, nil, fmt.Errorf("error loading environment variables: %w", err)
	}
	if loggingProvider, ok := config.(LoggingConfigProvider); ok {
		ctx = logging.WithLogger(ctx, logging.NewLogger(loggingProvider.Logging()))
	}
	logger := logging.FromContext(ctx)

	var (
		serverEnvOpts      []srvenv.Option
		db                 *database.DB
		predictorProvideFn predictor.ProvideFn
	)
	if dbConfigProvider, ok := config.(DatabaseConfigProvider); ok {
		logger.Info("Configuring db")
		dbFromEnv, err := database.NewFromEnv(ctx, dbConfigProvider.DatabaseConfig())
		if err != nil {
			return ctx, nil, fmt.Errorf("unable to connect to database: %w", err)
		}
		db = dbFromEnv
		serverEnvOpts = append(serverEnvOpts, srvenv.WithDatabase(db))
	}

	if predictConfigProvider, ok := config.(PredictorConfigProvider); ok {
		logger.Info("Configuring estimator")
		provideFn, err := ProvidePredictorFor(predictConfigProvider.PredictConfig())
		if err != nil {
			return ctx, nil, fmt.Errorf("unable create estimator provide function: %w", err)
		}
		predictorProvideFn = provideFn
		serverEnvOpts = append(serverEnvOpts, srvenv.WithPredictor(predictorProvideFn))
	}

	if balanceConfigProvider, ok := config.(BalanceConfigProvider); ok && db != nil && predictorProvideFn != nil {
		logger.Info("Configuring balance manager")
		provideFn, err := ProvideBalanceFor(balanceConfigProvider, config, db, predictorProvideFn)
		if err != nil {
			return ctx, nil, fmt.Errorf("unable create balance provide function: %w", err)
		}
		serverEnvOpts = append(serverEnvOpts, srvenv.WithBalance(provideFn))
	}

	if err := RegisterViews(); err != nil {
		return ctx, nil, err
	}
	return ctx, srvenv.New(serverEnvOpts...), nil
}

// RegisterViews registers the oversampling metric views.
func RegisterViews() error {
	if err := view.Register(smote.Views...); err != nil {
		return fmt.Errorf("unable to register views: %w", err)
	}
	return nil
}

func ProvideBalanceFor(provider BalanceConfigProvider, config interface{}, db *database.DB, providePredictFn predictor.ProvideFn) (balance.ProvideFn, error) {
	cfg := provider.BalanceConfig()
	smoteCfg := smote.DefaultConfig()
	if smoteProvider, ok := config.(SmoteConfigProvider); ok {
		smoteCfg = *smoteProvider.SmoteConfig()
	}
	if err := smoteCfg.Validate(); err != nil {
		return nil, err
	}
	encoderCfg := encoder.DefaultConfig()
	if encoderProvider, ok := config.(EncoderConfigProvider); ok {
		encoderCfg = *encoderProvider.EncoderConfig()
	}
	return func() (balance.Manager, error) {
		return balance.New(
			db,
			smoteCfg,
			providePredictFn,
			balance.WithMaxRuns(cfg.MaxRuns),
			balance.WithEncoderConfig(encoderCfg),
		)
	}, nil
}

// ProvidePredictorFor returns a factory of fresh estimators of the configured
// type.
func ProvidePredictorFor(cfg *predictor.Config) (predictor.ProvideFn, error) {
	switch cfg.PredictorType() {
	case predictor.AlgTypeKNN:
		return func() (predictor.Handle, error) {
			k, err := knn.New(knn.WithKNum(cfg.KNNK))
			if err != nil {
				return predictor.Handle{}, fmt.Errorf("unable create knn instance: %w", err)
			}
			return knn.Handle(k), nil
		}, nil
	case predictor.AlgTypeLogistic:
		return func() (predictor.Handle, error) {
			l, err := logistic.New(
				logistic.WithEpochs(cfg.LogisticEpochs),
				logistic.WithLearningRate(cfg.LogisticLearningRate),
			)
			if err != nil {
				return predictor.Handle{}, fmt.Errorf("unable create logistic instance: %w", err)
			}
			return logistic.Handle(l), nil
		}, nil
	default:
		return nil, fmt.Errorf("unknown predictor type: %s", cfg.PredictorType())
	}
}
