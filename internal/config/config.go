// Package config loads the report settings from defaults, an optional YAML
// file and GHREPORT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds every setting of the report and dashboard.
type Config struct {
	DatasetPath   string `mapstructure:"dataset_path" yaml:"dataset_path"`
	ListenAddr    string `mapstructure:"listen_addr" yaml:"listen_addr"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`
	TopN          int    `mapstructure:"top_n" yaml:"top_n"`
	ChartWidth    int    `mapstructure:"chart_width" yaml:"chart_width"`
	ChartHeight   int    `mapstructure:"chart_height" yaml:"chart_height"`
	// GitHubToken is only used by the collector.
	GitHubToken string `mapstructure:"github_token" yaml:"github_token,omitempty"`
}

// Default config file looked up in the working directory when no path is given.
const (
	defaultConfigName = "ghreport"
	envPrefix         = "GHREPORT"
)

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. An explicit cfgFile must exist;
// the default ghreport.yaml is optional.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	if err := v.BindEnv("github_token", envPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	v.SetDefault("dataset_path", "github_dataset.csv")
	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("output_dir", "report")
	v.SetDefault("histogram_bins", 30)
	v.SetDefault("top_n", 10)
	v.SetDefault("chart_width", 1000)
	v.SetDefault("chart_height", 600)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(defaultConfigName)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects settings the report cannot be drawn with.
func (c *Config) Validate() error {
	switch {
	case c.DatasetPath == "":
		return errors.New("config: dataset_path is empty")
	case c.HistogramBins < 1:
		return fmt.Errorf("config: histogram_bins must be positive, got %d", c.HistogramBins)
	case c.TopN < 1:
		return fmt.Errorf("config: top_n must be positive, got %d", c.TopN)
	case c.ChartWidth < 100 || c.ChartHeight < 100:
		return fmt.Errorf("config: chart size %dx%d is below 100x100", c.ChartWidth, c.ChartHeight)
	}
	return nil
}

// Save writes the configuration to path as YAML. The GitHub token is never
// written.
func Save(c *Config, path string) error {
	out := *c
	out.GitHubToken = ""
	b, err := yaml.Marshal(&out)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}
