package madness

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ConfigEnv is the environment variable holding the directory of conf.toml.
const ConfigEnv = "MADNESS_CONFIG"

// ScanConfig holds the step sizes and budget of the three scanning phases.
type ScanConfig struct {
	CoarseStep    float64 // seconds, entry search
	FineStep      float64 // seconds, closest approach search
	ExitStep      float64 // seconds, exit search once the minimum is found
	MaxIterations int     // per phase
	Tolerance     float64 // seconds, crossing refinement
}

// Validate checks that the scan configuration is usable.
func (s ScanConfig) Validate() error {
	if !(s.CoarseStep > 0) || !(s.FineStep > 0) || !(s.ExitStep > 0) {
		return fmt.Errorf("%w: scan steps must be positive (%g, %g, %g)", ErrInvalidParameter, s.CoarseStep, s.FineStep, s.ExitStep)
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("%w: max iterations must be positive", ErrInvalidParameter)
	}
	if !(s.Tolerance > 0) {
		return fmt.Errorf("%w: tolerance must be positive", ErrInvalidParameter)
	}
	return nil
}

// Config is the configuration of a crossing computation.
type Config struct {
	Constants Constants
	Scan      ScanConfig
	VSOP87    bool
	VSOP87Dir string
}

// DefaultConfig returns the configuration used when no file is provided.
func DefaultConfig() Config {
	return Config{
		Constants: DefaultConstants(),
		Scan: ScanConfig{
			CoarseStep:    20,
			FineStep:      1,
			ExitStep:      10,
			MaxIterations: 10000000,
			Tolerance:     DefaultTolerance,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("constants.lunar_distance", d.Constants.LunarDistance)
	v.SetDefault("constants.gm_earth", d.Constants.GMEarth)
	v.SetDefault("constants.earth_id", d.Constants.EarthID)
	v.SetDefault("constants.sun_id", d.Constants.SunID)
	v.SetDefault("constants.soi_radius", d.Constants.SOIRadius)
	v.SetDefault("scan.coarse_step", d.Scan.CoarseStep)
	v.SetDefault("scan.fine_step", d.Scan.FineStep)
	v.SetDefault("scan.exit_step", d.Scan.ExitStep)
	v.SetDefault("scan.max_iterations", d.Scan.MaxIterations)
	v.SetDefault("scan.tolerance", d.Scan.Tolerance)
	v.SetDefault("VSOP87.enabled", false)
	v.SetDefault("VSOP87.directory", "")
}

// NewViper returns a viper instance with the defaults and MADNESS_ environment overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("MADNESS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// ConfigFromViper reads the configuration out of v.
func ConfigFromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		Constants: Constants{
			LunarDistance: v.GetFloat64("constants.lunar_distance"),
			GMEarth:       v.GetFloat64("constants.gm_earth"),
			EarthID:       v.GetInt("constants.earth_id"),
			SunID:         v.GetInt("constants.sun_id"),
			SOIRadius:     v.GetFloat64("constants.soi_radius"),
		},
		Scan: ScanConfig{
			CoarseStep:    v.GetFloat64("scan.coarse_step"),
			FineStep:      v.GetFloat64("scan.fine_step"),
			ExitStep:      v.GetFloat64("scan.exit_step"),
			MaxIterations: v.GetInt("scan.max_iterations"),
			Tolerance:     v.GetFloat64("scan.tolerance"),
		},
		VSOP87:    v.GetBool("VSOP87.enabled"),
		VSOP87Dir: v.GetString("VSOP87.directory"),
	}
	if err := cfg.Constants.Validate(); err != nil {
		return Config{}, err
	}
	if err := cfg.Scan.Validate(); err != nil {
		return Config{}, err
	}
	if cfg.VSOP87 && cfg.VSOP87Dir == "" {
		return Config{}, fmt.Errorf("%w: VSOP87 is enabled without a directory", ErrInvalidParameter)
	}
	return cfg, nil
}

// LoadConfig reads conf.toml from the provided directory.
func LoadConfig(dir string) (Config, error) {
	v := NewViper()
	v.SetConfigName("conf")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("%s/conf.toml: %w", dir, err)
	}
	return ConfigFromViper(v)
}

// LoadConfigFromEnv reads conf.toml from the directory in $MADNESS_CONFIG, or
// returns the defaults (with environment overrides) if it is unset.
func LoadConfigFromEnv() (Config, error) {
	dir := os.Getenv(ConfigEnv)
	if dir == "" {
		return ConfigFromViper(NewViper())
	}
	cfg, err := LoadConfig(dir)
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		return Config{}, fmt.Errorf("environment variable `%s` points to %s which has no conf.toml", ConfigEnv, dir)
	}
	return cfg, err
}
