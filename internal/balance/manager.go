package balance

import (
	"context"
	"fmt"
	"time"

	"github.com/go-sod/smote/internal/database"
	"github.com/go-sod/smote/internal/dataset"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/logging"
	"github.com/go-sod/smote/internal/predictor"
	runDb "github.com/go-sod/smote/internal/run/database"
	"github.com/go-sod/smote/internal/run/model"
	"github.com/go-sod/smote/internal/smote"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru"
)

const defaultMaxRuns = 64

var (
	ErrRunNotLoaded = fmt.Errorf("run is not loaded")
	ErrRunNotFitted = fmt.Errorf("run is not fitted")
)

// Contract for returning the Manager instance
type ProvideFn func() (Manager, error)

// Manager runs balancing jobs and keeps the fitted classifiers of recent runs.
type Manager interface {
	Balancer
	Classifiers
	Store
}

type Balancer interface {
	// Balance encodes and balances raw, fits a fresh estimator and stores the run
	Balance(ctx context.Context, req Request) (model.Run, error)
}

type Classifiers interface {
	// Classifier returns the fitted classifier of a run
	Classifier(ctx context.Context, id uuid.UUID) (*smote.Classifier, error)
}

// Store exposes stored runs and their balanced datasets.
type Store interface {
	Runs(ctx context.Context) ([]model.Run, error)
	Run(ctx context.Context, id uuid.UUID) (model.Run, error)
	// Dataset returns the balanced dataset of a fitted run
	Dataset(ctx context.Context, id uuid.UUID) (*dataset.Dataset, error)
	// Delete drops the run, its dataset and its cached classifier
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// Request describes one balancing job.
type Request struct {
	Name string
	Raw  *encoder.Raw
	// Seed overrides the configured seed when set
	Seed *int64
}

type Option func(*manager)

func WithMaxRuns(n int) Option {
	return func(m *manager) {
		m.maxRuns = n
	}
}

func WithEncoderConfig(cfg encoder.Config) Option {
	return func(m *manager) {
		m.encoderCfg = cfg
	}
}

func New(db *database.DB, cfg smote.Config, provideEstimatorFn predictor.ProvideFn, opts ...Option) (*manager, error) {
	if db == nil {
		return nil, fmt.Errorf("database instance is not created")
	}
	if provideEstimatorFn == nil {
		return nil, fmt.Errorf("estimator provider is not set")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	m := &manager{
		runDB:              runDb.New(db),
		cfg:                cfg,
		encoderCfg:         encoder.DefaultConfig(),
		estimatorProvideFn: provideEstimatorFn,
		maxRuns:            defaultMaxRuns,
	}
	for _, f := range opts {
		f(m)
	}

	cache, err := lru.New(m.maxRuns)
	if err != nil {
		return nil, fmt.Errorf("unable create classifier cache: %w", err)
	}
	m.classifiers = cache
	return m, nil
}

type manager struct {
	// Run records and balanced datasets
	runDB *runDb.DB

	cfg        smote.Config
	encoderCfg encoder.Config
	// The factory returns a fresh estimator for every run
	estimatorProvideFn predictor.ProvideFn

	maxRuns int
	// Fitted classifiers by run id
	classifiers *lru.Cache
}

func (m *manager) Balance(ctx context.Context, req Request) (model.Run, error) {
	logger := logging.FromContext(ctx)
	if req.Raw == nil {
		return model.Run{}, fmt.Errorf("%w: no data", encoder.ErrEncoding)
	}

	handle, err := m.estimatorProvideFn()
	if err != nil {
		return model.Run{}, fmt.Errorf("can not create estimator instance: %w", err)
	}
	cfg := m.cfg
	if req.Seed != nil {
		cfg.Seed = *req.Seed
	}
	clf, err := smote.NewClassifier(cfg, handle, encoder.NewNominalToBinary(m.encoderCfg.Options()...))
	if err != nil {
		return model.Run{}, err
	}

	run := model.NewRun(req.Name, handle.Name(), cfg, time.Now().UTC())
	res, err := clf.Run(ctx, req.Raw)
	if err != nil {
		if storeErr := m.runDB.Store(ctx, run.Failed(err)); storeErr != nil {
			logger.Errorf("unable to store failed run %s: %v", run.ID, storeErr)
		}
		return model.Run{}, err
	}

	run = run.Fitted(res, len(req.Raw.Rows))
	if err := m.runDB.StoreDataset(ctx, run.ID, res.Balanced); err != nil {
		return model.Run{}, fmt.Errorf("store dataset: %w", err)
	}
	if err := m.runDB.Store(ctx, run); err != nil {
		return model.Run{}, fmt.Errorf("store run: %w", err)
	}
	m.classifiers.Add(run.ID, clf)

	logger.Infof("run %s fitted %s on %d examples (%d synthetic)", run.ID, run.Estimator, run.Balanced, run.Generated)
	return run, nil
}

func (m *manager) Classifier(ctx context.Context, id uuid.UUID) (*smote.Classifier, error) {
	if v, ok := m.classifiers.Get(id); ok {
		return v.(*smote.Classifier), nil
	}
	// the run exists but its classifier was evicted or belongs to an earlier process
	if _, err := m.runDB.Find(ctx, id); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("%w: %s", ErrRunNotLoaded, id)
}

func (m *manager) Runs(ctx context.Context) ([]model.Run, error) {
	return m.runDB.FindAll(ctx, nil)
}

func (m *manager) Run(ctx context.Context, id uuid.UUID) (model.Run, error) {
	return m.runDB.Find(ctx, id)
}

func (m *manager) Dataset(ctx context.Context, id uuid.UUID) (*dataset.Dataset, error) {
	run, err := m.runDB.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if !run.IsFitted() {
		return nil, fmt.Errorf("%w: %s is %s", ErrRunNotFitted, id, run.Status)
	}
	return m.runDB.FindDataset(ctx, id)
}

func (m *manager) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := m.runDB.Find(ctx, id); err != nil {
		return err
	}
	m.classifiers.Remove(id)
	if err := m.runDB.Delete(ctx, id); err != nil {
		return err
	}
	logging.FromContext(ctx).Infof("run %s deleted", id)
	return nil
}

func (m *manager) Count(_ context.Context) (int, error) {
	return m.runDB.Count()
}
