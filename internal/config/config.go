package config

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/go-sod/smote/internal/balance"
	"github.com/go-sod/smote/internal/database"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/predict"
	"github.com/go-sod/smote/internal/predictor"
	"github.com/go-sod/smote/internal/setup"
	"github.com/go-sod/smote/internal/smote"
)

var (
	_ setup.SmoteConfigProvider     = (*Config)(nil)
	_ setup.EncoderConfigProvider   = (*Config)(nil)
	_ setup.PredictorConfigProvider = (*Config)(nil)
	_ setup.DatabaseConfigProvider  = (*Config)(nil)
	_ setup.BalanceConfigProvider   = (*Config)(nil)
	_ setup.LoggingConfigProvider   = (*Config)(nil)

	_ setup.SmoteConfigProvider     = (*CLIConfig)(nil)
	_ setup.EncoderConfigProvider   = (*CLIConfig)(nil)
	_ setup.PredictorConfigProvider = (*CLIConfig)(nil)
	_ setup.LoggingConfigProvider   = (*CLIConfig)(nil)
)

// Config of the smote service.
type Config struct {
	SrvAddr string `envconfig:"SMOTE_ADDR" default:":8787"`
	// gRPC health service address, disabled when empty
	GRPCAddr       string `envconfig:"SMOTE_GRPC_ADDR"`
	LogLevel       string `envconfig:"SMOTE_LOG_LEVEL" default:"info"`
	LogDevelopment bool   `envconfig:"SMOTE_LOG_DEVELOPMENT" default:"false"`
	Smote          smote.Config
	Encoder        encoder.Config
	Predictor      predictor.Config
	Database       database.Config
	Balance        balance.Config
	Predict        predict.Config
}

func (c *Config) SmoteConfig() *smote.Config {
	return &c.Smote
}

func (c *Config) EncoderConfig() *encoder.Config {
	return &c.Encoder
}

func (c *Config) DatabaseConfig() *database.Config {
	return &c.Database
}

func (c *Config) BalanceConfig() *balance.Config {
	return &c.Balance
}

func (c *Config) PredictType() predictor.AlgType {
	return c.Predictor.Type
}

func (c *Config) PredictConfig() *predictor.Config {
	return &c.Predictor
}

func (c *Config) Logging() (string, bool) {
	return c.LogLevel, c.LogDevelopment
}

// CLIConfig is read from the environment and may be overridden by a TOML file.
type CLIConfig struct {
	LogLevel  string           `envconfig:"SMOTE_LOG_LEVEL" default:"warn" toml:"log_level"`
	Smote     smote.Config     `toml:"smote"`
	Encoder   encoder.Config   `toml:"encoder"`
	Predictor predictor.Config `toml:"estimator"`
}

func (c *CLIConfig) SmoteConfig() *smote.Config {
	return &c.Smote
}

func (c *CLIConfig) EncoderConfig() *encoder.Config {
	return &c.Encoder
}

func (c *CLIConfig) PredictType() predictor.AlgType {
	return c.Predictor.Type
}

func (c *CLIConfig) PredictConfig() *predictor.Config {
	return &c.Predictor
}

func (c *CLIConfig) Logging() (string, bool) {
	return c.LogLevel, true
}

// LoadFile overrides cfg with the values present in a TOML file. Keys that
// are absent keep their current value.
func LoadFile(path string, cfg interface{}) error {
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("unable to read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown keys in config file %s: %v", path, undecoded)
	}
	return nil
}
