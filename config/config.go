// Package config loads warehouse settings from an optional YAML file with
// environment overrides. Missing or unparsable files fall back to defaults
// so the warehouse can always start.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv     = "BEANVAULT_CONFIG"
	storePathEnv      = "BEANVAULT_STORE_PATH"
	embeddingHostEnv  = "BEANVAULT_EMBEDDING_HOST"
	embeddingModelEnv = "BEANVAULT_EMBEDDING_MODEL"
	vectorDimEnv      = "BEANVAULT_VECTOR_DIM"
)

// Config holds high-level settings required across the warehouse.
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	AI      AIConfig      `yaml:"ai"`
	Cluster ClusterConfig `yaml:"cluster"`
	Chatter ChatterConfig `yaml:"chatter"`
}

// StoreConfig describes the embedded store location and retention.
type StoreConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retentionDays"`
}

// Retention resolves the retention window.
func (s StoreConfig) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

// AIConfig describes the embedding service.
type AIConfig struct {
	EmbeddingHost  string `yaml:"embeddingHost"`
	EmbeddingModel string `yaml:"embeddingModel"`
	VectorDim      int    `yaml:"vectorDim"`
}

// ClusterConfig tunes the clustering loop.
type ClusterConfig struct {
	Epsilon   float64 `yaml:"epsilon"`
	BatchSize int     `yaml:"batchSize"`
	ScopeDays int     `yaml:"scopeDays"`
}

// Scope resolves the comparison-pool recency window.
func (c ClusterConfig) Scope() time.Duration {
	return time.Duration(c.ScopeDays) * 24 * time.Hour
}

// ChatterConfig tunes chatter aggregation.
type ChatterConfig struct {
	WindowHours int `yaml:"windowHours"`
	TTLMinutes  int `yaml:"ttlMinutes"`
}

// Window resolves the trailing delta window.
func (c ChatterConfig) Window() time.Duration {
	return time.Duration(c.WindowHours) * time.Hour
}

// TTL resolves the aggregate expiry.
func (c ChatterConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads YAML configuration (if present) and applies environment
// overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			slog.Warn("config: cannot read file, falling back to defaults", "path", path, "err", err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				slog.Warn("config: cannot parse file, falling back to defaults", "path", path, "err", err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(storePathEnv); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv(embeddingHostEnv); v != "" {
		c.AI.EmbeddingHost = v
	}
	if v := os.Getenv(embeddingModelEnv); v != "" {
		c.AI.EmbeddingModel = v
	}
	if v := os.Getenv(vectorDimEnv); v != "" {
		if dim, err := strconv.Atoi(v); err == nil && dim > 0 {
			c.AI.VectorDim = dim
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Store.Path != "" {
		base.Store.Path = override.Store.Path
	}
	if override.Store.RetentionDays > 0 {
		base.Store.RetentionDays = override.Store.RetentionDays
	}

	if override.AI.EmbeddingHost != "" {
		base.AI.EmbeddingHost = override.AI.EmbeddingHost
	}
	if override.AI.EmbeddingModel != "" {
		base.AI.EmbeddingModel = override.AI.EmbeddingModel
	}
	if override.AI.VectorDim > 0 {
		base.AI.VectorDim = override.AI.VectorDim
	}

	if override.Cluster.Epsilon > 0 {
		base.Cluster.Epsilon = override.Cluster.Epsilon
	}
	if override.Cluster.BatchSize > 0 {
		base.Cluster.BatchSize = override.Cluster.BatchSize
	}
	if override.Cluster.ScopeDays > 0 {
		base.Cluster.ScopeDays = override.Cluster.ScopeDays
	}

	if override.Chatter.WindowHours > 0 {
		base.Chatter.WindowHours = override.Chatter.WindowHours
	}
	if override.Chatter.TTLMinutes > 0 {
		base.Chatter.TTLMinutes = override.Chatter.TTLMinutes
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Path:          "beanvault.db",
			RetentionDays: 90,
		},
		AI: AIConfig{
			EmbeddingHost:  "http://localhost:11434/v1",
			EmbeddingModel: "embeddinggemma",
			VectorDim:      384,
		},
		Cluster: ClusterConfig{
			Epsilon:   0.3,
			BatchSize: 512,
			ScopeDays: 28,
		},
		Chatter: ChatterConfig{
			WindowHours: 24,
			TTLMinutes:  30,
		},
	}
}
