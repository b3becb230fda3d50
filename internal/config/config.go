package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ClusteringConfig holds the pipeline policy constants.
type ClusteringConfig struct {
	Algorithm     string `yaml:"algorithm"`
	DefaultK      int    `yaml:"default_k"`
	StrictK       bool   `yaml:"strict_k"`
	MaxIterations int    `yaml:"max_iterations"`
	Restarts      int    `yaml:"n_init"`
	Seed          int64  `yaml:"seed"`
	TopTerms      int    `yaml:"top_terms"`
}

// NormalizerConfig configures tokenization.
type NormalizerConfig struct {
	Type           string   `yaml:"type"`
	ExtraStopwords []string `yaml:"extra_stopwords,omitempty"`
}

// VectorizerConfig selects the term weighting implementation.
type VectorizerConfig struct {
	Type string `yaml:"type"`
}

// SummarizerConfig selects the cluster labelling implementation.
type SummarizerConfig struct {
	Type string `yaml:"type"`
}

// ServerConfig configures the HTTP front end.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	MaxUploadMB     int    `yaml:"max_upload_mb"`
	ReadTimeoutSecs int    `yaml:"read_timeout_secs"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Clustering ClusteringConfig `yaml:"clustering"`
	Normalizer NormalizerConfig `yaml:"normalizer"`
	Vectorizer VectorizerConfig `yaml:"vectorizer"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*AppConfig, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyConfigDefaults(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/doccluster/config.yaml.
// If neither exists, it writes defaults to the user path and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ApplyEnv overrides file values with DOCCLUSTER_* variables from env
// (os.Environ format). Unparseable numbers are reported, not ignored.
func ApplyEnv(cfg *AppConfig, env []string) error {
	for _, kv := range env {
		key, val, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(key, "DOCCLUSTER_") {
			continue
		}
		switch key {
		case "DOCCLUSTER_ADDR":
			cfg.Server.Addr = val
		case "DOCCLUSTER_LOG_LEVEL":
			cfg.Log.Level = val
		case "DOCCLUSTER_DEFAULT_K":
			n, err := strconv.Atoi(strings.TrimSpace(val))
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			cfg.Clustering.DefaultK = n
		case "DOCCLUSTER_SEED":
			n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			cfg.Clustering.Seed = n
		}
	}
	return nil
}

// Validate rejects values the pipeline cannot run with.
func Validate(cfg *AppConfig) error {
	c := cfg.Clustering
	switch {
	case c.DefaultK <= 0:
		return fmt.Errorf("clustering.default_k must be positive, got %d", c.DefaultK)
	case c.MaxIterations <= 0:
		return fmt.Errorf("clustering.max_iterations must be positive, got %d", c.MaxIterations)
	case c.Restarts <= 0:
		return fmt.Errorf("clustering.n_init must be positive, got %d", c.Restarts)
	case c.TopTerms <= 0:
		return fmt.Errorf("clustering.top_terms must be positive, got %d", c.TopTerms)
	case cfg.Server.MaxUploadMB < 0:
		return fmt.Errorf("server.max_upload_mb must not be negative, got %d", cfg.Server.MaxUploadMB)
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "doccluster", "config.yaml"), nil
}

// Default returns the built-in configuration.
func Default() *AppConfig {
	return &AppConfig{
		Clustering: ClusteringConfig{
			Algorithm:     "kmeans",
			DefaultK:      2,
			MaxIterations: 300,
			Restarts:      10,
			Seed:          42,
			TopTerms:      5,
		},
		Normalizer: NormalizerConfig{Type: "english"},
		Vectorizer: VectorizerConfig{Type: "tfidf"},
		Summarizer: SummarizerConfig{Type: "centroid"},
		Server:     ServerConfig{Addr: ":8080", MaxUploadMB: 10, ReadTimeoutSecs: 15},
		Log:        LogConfig{Level: "info", Pretty: true},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.ReadTimeoutSecs == 0 {
		cfg.Server.ReadTimeoutSecs = 15
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
