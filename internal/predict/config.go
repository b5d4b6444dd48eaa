package predict

import "time"

type Config struct {
	RequestTimeout  time.Duration `envconfig:"SMOTE_PREDICT_REQUEST_TIMEOUT" default:"30s"`
	MaxDataItemsLen int           `envconfig:"SMOTE_PREDICT_MAX_DATA_ITEMS_LEN" default:"100"`
	// Cached distributions, keyed by run and encoded row
	CacheSize int `envconfig:"SMOTE_PREDICT_CACHE_SIZE" default:"4096"`
}
