package encoder

type Config struct {
	// Expand two-valued nominal columns into indicators as well
	TransformAllValues bool `envconfig:"SMOTE_TRANSFORM_ALL_VALUES" default:"true" toml:"transform_all_values"`
	// Mark indicator attributes nominal so synthetic values round to 0 or 1
	NominalIndicators bool `envconfig:"SMOTE_NOMINAL_INDICATORS" default:"false" toml:"nominal_indicators"`
}

func DefaultConfig() Config {
	return Config{TransformAllValues: true}
}

// Options translates the config into encoder options.
func (c Config) Options() []Option {
	opts := []Option{WithTransformAllValues(c.TransformAllValues)}
	if c.NominalIndicators {
		opts = append(opts, WithNominalIndicators())
	}
	return opts
}
