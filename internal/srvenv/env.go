package srvenv

import (
	"context"

	"github.com/go-sod/smote/internal/balance"
	"github.com/go-sod/smote/internal/database"
	"github.com/go-sod/smote/internal/predictor"
)

type Option func(*SrvEnv) *SrvEnv

func New(opts ...Option) *SrvEnv {
	env := &SrvEnv{}
	for _, f := range opts {
		env = f(env)
	}

	return env
}

type SrvEnv struct {
	database  *database.DB
	predictor predictor.ProvideFn
	balance   balance.ProvideFn
}

func (s *SrvEnv) ProvideBalance() balance.ProvideFn {
	return s.balance
}

func (s *SrvEnv) ProvidePredictor() predictor.ProvideFn {
	return s.predictor
}

func (s *SrvEnv) Database() *database.DB {
	return s.database
}

func WithBalance(fn balance.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.balance = fn
		return s
	}
}

func WithPredictor(fn predictor.ProvideFn) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.predictor = fn
		return s
	}
}

func WithDatabase(db *database.DB) Option {
	return func(s *SrvEnv) *SrvEnv {
		s.database = db
		return s
	}
}

func (s *SrvEnv) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}

	if s.database != nil {
		return s.database.Close(ctx)
	}
	return nil
}
