package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/aagoldberg/far-mca-sub002/internal/scoring"
)

// LoadScoringParams reads calibration overrides from a YAML file on top of
// scoring.DefaultParams. An empty path yields the defaults. Keys use the
// snake_case names of the mapstructure tags; durations accept "5m" style
// strings. Fields the file does not name keep their defaults; named fields
// keep their value, zero included.
func LoadScoringParams(path string) (scoring.Params, error) {
	params := scoring.DefaultParams()
	if path == "" {
		return params, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return scoring.Params{}, fmt.Errorf("read scoring config %s: %w", path, err)
	}
	if err := v.Unmarshal(&params); err != nil {
		return scoring.Params{}, fmt.Errorf("decode scoring config %s: %w", path, err)
	}
	params = params.WithDefaults()
	if err := params.Validate(); err != nil {
		return scoring.Params{}, fmt.Errorf("scoring config %s: %w", path, err)
	}
	return params, nil
}
