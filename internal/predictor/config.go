package predictor

type AlgType string

const (
	AlgTypeKNN      AlgType = "KNN"
	AlgTypeLogistic AlgType = "LOGISTIC"
)

// Config is passed through to the wrapped estimator.
type Config struct {
	Type                 AlgType `envconfig:"SMOTE_ESTIMATOR" default:"KNN" toml:"estimator"`
	KNNK                 int     `envconfig:"SMOTE_KNN_K" default:"1" toml:"knn_k"`
	LogisticEpochs       int     `envconfig:"SMOTE_LOGISTIC_EPOCHS" default:"100" toml:"logistic_epochs"`
	LogisticLearningRate float64 `envconfig:"SMOTE_LOGISTIC_LEARNING_RATE" default:"0.1" toml:"logistic_learning_rate"`
}

func (c Config) PredictorType() AlgType {
	return c.Type
}

func (c Config) PredictorConfig() Config {
	return c
}
