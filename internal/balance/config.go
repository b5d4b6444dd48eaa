package balance

import (
	"time"
)

type Config struct {
	RequestTimeout time.Duration `envconfig:"SMOTE_BALANCE_REQUEST_TIMEOUT" default:"60s"`
	// Maximum number of rows accepted in one balance request
	MaxRows int `envconfig:"SMOTE_BALANCE_MAX_ROWS" default:"100000"`
	// Fitted classifiers kept in memory, the least recently used is dropped first
	MaxRuns int `envconfig:"SMOTE_BALANCE_MAX_RUNS" default:"64"`
}
