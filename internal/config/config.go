package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/nepselab/floorwatch/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Input    string         `mapstructure:"input"`
	Output   OutputConfig   `mapstructure:"output"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	PumpDump PumpDumpConfig `mapstructure:"pumpdump"`
	Summary  SummaryConfig  `mapstructure:"summary"`
	Archive  ArchiveConfig  `mapstructure:"archive"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// AnalysisConfig carries every tunable of the detection pipeline. The
// defaults mirror the heuristics the signal rules were designed around;
// they are not statistically derived.
type AnalysisConfig struct {
	Window             int     `mapstructure:"window"`
	DominanceThreshold float64 `mapstructure:"dominance_threshold"`
	StrongDominance    float64 `mapstructure:"strong_dominance"`
	VolumeSpikeRatio   float64 `mapstructure:"volume_spike_ratio"`
	VolatilityFloor    float64 `mapstructure:"volatility_floor"`
	ClusterEps         float64 `mapstructure:"cluster_eps"`
	ClusterMinSamples  int     `mapstructure:"cluster_min_samples"`
	MaxCyclesPerDay    int     `mapstructure:"max_cycles_per_day"`
	CountSelfTrades    bool    `mapstructure:"count_self_trades"`
}

type PumpDumpConfig struct {
	VolumeRatio float64 `mapstructure:"volume_ratio"`
	PriceRatio  float64 `mapstructure:"price_ratio"`
}

type SummaryConfig struct {
	TopN int `mapstructure:"top_n"`
}

type ArchiveConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Type    string   `mapstructure:"type"` // "localfs" or "s3"
	Path    string   `mapstructure:"path"` // For localfs
	S3      S3Config `mapstructure:"s3"`   // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type LLMConfig struct {
	Provider string       `mapstructure:"provider"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
	Ollama   OllamaConfig `mapstructure:"ollama"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OllamaConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
}

// MetricsConfig controls the end-of-run metrics dump. The file is
// written into the output directory in Prometheus text format so a
// textfile collector can pick it up.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	File    string `mapstructure:"file"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Output: OutputConfig{
			Dir: "out",
		},
		Analysis: AnalysisConfig{
			Window:             5,
			DominanceThreshold: 0.25,
			StrongDominance:    0.5,
			VolumeSpikeRatio:   1.3,
			VolatilityFloor:    0.0001,
			ClusterEps:         0.5,
			ClusterMinSamples:  2,
			MaxCyclesPerDay:    10000,
			CountSelfTrades:    true,
		},
		PumpDump: PumpDumpConfig{
			VolumeRatio: 2.0,
			PriceRatio:  1.1,
		},
		Summary: SummaryConfig{
			TopN: 20,
		},
		Archive: ArchiveConfig{
			Enabled: false,
			Type:    "localfs",
			Path:    "archive",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			File:    "metrics.prom",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Analysis.Window < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("analysis window must be at least 1, got %d", c.Analysis.Window))
	}
	if c.Analysis.DominanceThreshold <= 0 || c.Analysis.DominanceThreshold >= 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("dominance_threshold must be in (0, 1), got %f", c.Analysis.DominanceThreshold))
	}
	if c.Analysis.ClusterEps <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cluster_eps must be positive, got %f", c.Analysis.ClusterEps))
	}
	if c.Analysis.ClusterMinSamples < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("cluster_min_samples must be at least 1, got %d", c.Analysis.ClusterMinSamples))
	}
	if c.Analysis.MaxCyclesPerDay < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("max_cycles_per_day must be at least 1, got %d", c.Analysis.MaxCyclesPerDay))
	}
	if c.PumpDump.VolumeRatio <= 0 || c.PumpDump.PriceRatio <= 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("pumpdump ratios must be positive"))
	}
	if c.Summary.TopN < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("summary top_n must be at least 1, got %d", c.Summary.TopN))
	}

	// Archive validation - only when enabled
	if c.Archive.Enabled {
		switch c.Archive.Type {
		case "localfs":
			if c.Archive.Path == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("archive path required for localfs archive"))
			}
		case "s3":
			if c.Archive.S3.Bucket == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("s3 bucket required for s3 archive"))
			}
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("unknown archive type: %s", c.Archive.Type))
		}
	}

	// LLM validation - if provider set, check config exists
	if c.LLM.Provider != "" {
		switch c.LLM.Provider {
		case "claude":
			if c.LLM.Claude.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("claude api_key required when provider is claude"))
			}
		case "openai":
			if c.LLM.OpenAI.APIKey == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("openai api_key required when provider is openai"))
			}
		case "ollama":
			if c.LLM.Ollama.Endpoint == "" {
				return core.WrapError(core.ErrConfigMissing,
					fmt.Errorf("ollama endpoint required when provider is ollama"))
			}
		}
	}

	return nil
}
