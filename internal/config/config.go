package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	ModelsDir string `mapstructure:"models_dir" yaml:"models_dir"`

	// Analysis defaults
	TopN       int     `mapstructure:"top_n" yaml:"top_n"`
	Threshold  float64 `mapstructure:"threshold" yaml:"threshold"`
	CorrFields int     `mapstructure:"corr_fields" yaml:"corr_fields"`
	Digits     int     `mapstructure:"digits" yaml:"digits"`

	// Reducer
	Verbose      bool `mapstructure:"verbose" yaml:"verbose"`
	UnsignedInts bool `mapstructure:"unsigned_ints" yaml:"unsigned_ints"`
	ExactFloats  bool `mapstructure:"exact_floats" yaml:"exact_floats"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.edakit.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".edakit"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.edakit/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		ModelsDir:  "models",
		TopN:       5,
		Threshold:  0.5,
		CorrFields: 10,
		Digits:     3,
		LogLevel:   "info",
		LogFormat:  "auto",
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("EDAKIT")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("models_dir", d.ModelsDir)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("threshold", d.Threshold)
	v.SetDefault("corr_fields", d.CorrFields)
	v.SetDefault("digits", d.Digits)
	v.SetDefault("verbose", d.Verbose)
	v.SetDefault("unsigned_ints", d.UnsignedInts)
	v.SetDefault("exact_floats", d.ExactFloats)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_format", d.LogFormat)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil && cfgFile != "" {
		// An explicit file that exists but cannot be parsed is an error; a missing one is not.
		if _, statErr := os.Stat(cfgFile); statErr == nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	// models_dir defaults to ./models relative to the working directory.
	if c.ModelsDir == "" {
		c.ModelsDir = "models"
	}
	return &c, nil
}

// Validate checks value ranges.
func (c *Global) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("invalid top_n: %d (must be >= 1)", c.TopN)
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("invalid threshold: %v (must be within [0,1])", c.Threshold)
	}
	if c.CorrFields < 1 {
		return fmt.Errorf("invalid corr_fields: %d (must be >= 1)", c.CorrFields)
	}
	if c.Digits < 0 {
		return fmt.Errorf("invalid digits: %d", c.Digits)
	}
	return nil
}
