// Package config provides configuration management for Insight.
// It loads settings from an optional YAML file and from environment variables
// with the INSIGHT_ prefix, applying sensible defaults for every option.
// Environment variables take precedence over the file.
//
// Configuration is read once at process startup.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration settings for the Insight service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Storage   StorageConfig   `yaml:"storage"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host           string   `yaml:"host"`            // default: 127.0.0.1
	Port           int      `yaml:"port"`            // default: 8000
	SecurityMode   string   `yaml:"security_mode"`   // development or production (default: development)
	APIToken       string   `yaml:"api_token"`       // bearer token required in production
	RateLimit      float64  `yaml:"rate_limit"`      // requests per second (default: 10)
	RateBurst      int      `yaml:"rate_burst"`      // default: 20
	AllowedOrigins []string `yaml:"allowed_origins"` // CORS and WebSocket origins

	// RequestTimeout bounds reading a request and writing its response.
	// Zero derives it from the language model retry budget.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// StorageConfig selects the vector index backing the memory store.
type StorageConfig struct {
	Engine      string `yaml:"engine"`       // chromem, sqlite or postgres (default: chromem)
	DataPath    string `yaml:"data_path"`    // default: ./data
	PostgresDSN string `yaml:"postgres_dsn"` // required when Engine is postgres
}

// LLMConfig contains language model provider configuration.
type LLMConfig struct {
	Provider    string        `yaml:"provider"`     // ollama, openai, gemini, anthropic (default: ollama)
	BaseURL     string        `yaml:"base_url"`     // default for ollama: http://localhost:11434
	Model       string        `yaml:"model"`        // default: mistral
	APIKey      string        `yaml:"api_key"`      // for hosted providers
	CallTimeout time.Duration `yaml:"call_timeout"` // per attempt (default: 120s)
	MaxAttempts int           `yaml:"max_attempts"` // default: 3
	RetryWait   time.Duration `yaml:"retry_wait"`   // default: 2s
}

// EmbeddingConfig selects the embedding function owned by the memory store.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`   // ollama, openai, gemini, hashing (default: ollama)
	Model      string `yaml:"model"`      // default: all-minilm
	BaseURL    string `yaml:"base_url"`   // defaults to LLM base URL for the same provider
	APIKey     string `yaml:"api_key"`    // defaults to LLM API key
	Dimensions int    `yaml:"dimensions"` // hashing embedder only (default: 384)
	CacheSize  int    `yaml:"cache_size"` // cached vectors, 0 disables (default: 1024)
}

// AnalysisConfig tunes the orchestrator and its background persister.
type AnalysisConfig struct {
	MinInputLength int           `yaml:"min_input_length"` // runes (default: 10)
	PersistQueue   int           `yaml:"persist_queue"`    // default: 64
	PersistWorkers int           `yaml:"persist_workers"`  // default: 2
	SaveTimeout    time.Duration `yaml:"save_timeout"`     // default: 30s
	SearchK        int           `yaml:"search_k"`         // chat retrieval depth (default: 5)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level  string `yaml:"level"`  // default: info
	Format string `yaml:"format"` // json or console (default: json)
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "127.0.0.1",
			Port:         8000,
			SecurityMode: "development",
			RateLimit:    10,
			RateBurst:    20,
			AllowedOrigins: []string{
				"http://localhost:8501",
				"http://127.0.0.1:8501",
			},
		},
		Storage: StorageConfig{
			Engine:   "chromem",
			DataPath: "./data",
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			BaseURL:     "http://localhost:11434",
			Model:       "mistral",
			CallTimeout: 120 * time.Second,
			MaxAttempts: 3,
			RetryWait:   2 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Model:      "all-minilm",
			Dimensions: 384,
			CacheSize:  1024,
		},
		Analysis: AnalysisConfig{
			MinInputLength: 10,
			PersistQueue:   64,
			PersistWorkers: 2,
			SaveTimeout:    30 * time.Second,
			SearchK:        5,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig loads configuration from the YAML file at path (skipped when
// path is empty) and then from INSIGHT_* environment variables.
// When path is empty, INSIGHT_CONFIG is consulted for a file path.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv("INSIGHT_CONFIG")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.fillDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// loadFile overlays YAML settings onto cfg.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: failed to parse %s: %w", path, err)
	}
	return nil
}

// applyEnv overlays environment variables onto cfg. Unset variables keep
// the current value.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("INSIGHT_HOST", c.Server.Host)
	c.Server.Port = getEnvInt("INSIGHT_PORT", c.Server.Port)
	c.Server.SecurityMode = getEnv("INSIGHT_SECURITY_MODE", c.Server.SecurityMode)
	c.Server.APIToken = getEnv("INSIGHT_API_TOKEN", c.Server.APIToken)
	c.Server.RateLimit = getEnvFloat("INSIGHT_RATE_LIMIT", c.Server.RateLimit)
	c.Server.RateBurst = getEnvInt("INSIGHT_RATE_BURST", c.Server.RateBurst)
	c.Server.AllowedOrigins = getEnvList("INSIGHT_ALLOWED_ORIGINS", c.Server.AllowedOrigins)
	c.Server.RequestTimeout = getEnvDuration("INSIGHT_REQUEST_TIMEOUT", c.Server.RequestTimeout)

	c.Storage.Engine = getEnv("INSIGHT_STORAGE_ENGINE", c.Storage.Engine)
	c.Storage.DataPath = getEnv("INSIGHT_DATA_PATH", c.Storage.DataPath)
	c.Storage.PostgresDSN = getEnv("INSIGHT_POSTGRES_DSN", c.Storage.PostgresDSN)

	c.LLM.Provider = getEnv("INSIGHT_LLM_PROVIDER", c.LLM.Provider)
	c.LLM.BaseURL = getEnv("INSIGHT_LLM_BASE_URL", c.LLM.BaseURL)
	c.LLM.Model = getEnv("INSIGHT_LLM_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("INSIGHT_LLM_API_KEY", c.LLM.APIKey)
	c.LLM.CallTimeout = getEnvDuration("INSIGHT_LLM_CALL_TIMEOUT", c.LLM.CallTimeout)
	c.LLM.MaxAttempts = getEnvInt("INSIGHT_LLM_MAX_ATTEMPTS", c.LLM.MaxAttempts)
	c.LLM.RetryWait = getEnvDuration("INSIGHT_LLM_RETRY_WAIT", c.LLM.RetryWait)

	c.Embedding.Provider = getEnv("INSIGHT_EMBEDDING_PROVIDER", c.Embedding.Provider)
	c.Embedding.Model = getEnv("INSIGHT_EMBEDDING_MODEL", c.Embedding.Model)
	c.Embedding.BaseURL = getEnv("INSIGHT_EMBEDDING_BASE_URL", c.Embedding.BaseURL)
	c.Embedding.APIKey = getEnv("INSIGHT_EMBEDDING_API_KEY", c.Embedding.APIKey)
	c.Embedding.Dimensions = getEnvInt("INSIGHT_EMBEDDING_DIMENSIONS", c.Embedding.Dimensions)
	c.Embedding.CacheSize = getEnvInt("INSIGHT_EMBEDDING_CACHE_SIZE", c.Embedding.CacheSize)

	c.Analysis.MinInputLength = getEnvInt("INSIGHT_MIN_INPUT_LENGTH", c.Analysis.MinInputLength)
	c.Analysis.PersistQueue = getEnvInt("INSIGHT_PERSIST_QUEUE", c.Analysis.PersistQueue)
	c.Analysis.PersistWorkers = getEnvInt("INSIGHT_PERSIST_WORKERS", c.Analysis.PersistWorkers)
	c.Analysis.SaveTimeout = getEnvDuration("INSIGHT_SAVE_TIMEOUT", c.Analysis.SaveTimeout)
	c.Analysis.SearchK = getEnvInt("INSIGHT_SEARCH_K", c.Analysis.SearchK)

	c.Log.Level = getEnv("INSIGHT_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("INSIGHT_LOG_FORMAT", c.Log.Format)
}

// fillDerived copies LLM connection settings into the embedding section
// when the embedding provider matches and has none of its own.
func (c *Config) fillDerived() {
	if c.Embedding.Provider == c.LLM.Provider {
		if c.Embedding.BaseURL == "" {
			c.Embedding.BaseURL = c.LLM.BaseURL
		}
		if c.Embedding.APIKey == "" {
			c.Embedding.APIKey = c.LLM.APIKey
		}
	}
}

var (
	validProviders          = map[string]bool{"ollama": true, "openai": true, "gemini": true, "anthropic": true}
	validEmbeddingProviders = map[string]bool{"ollama": true, "openai": true, "gemini": true, "hashing": true}
	validEngines            = map[string]bool{"chromem": true, "sqlite": true, "postgres": true}
)

// Validate checks every setting and returns all violations joined into one
// error, or nil.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server port %d out of range", c.Server.Port))
	}
	if c.Server.SecurityMode != "development" && c.Server.SecurityMode != "production" {
		errs = append(errs, fmt.Errorf("unknown security mode %q", c.Server.SecurityMode))
	}
	if c.Server.SecurityMode == "production" && c.Server.APIToken == "" {
		errs = append(errs, errors.New("production mode requires an API token"))
	}
	if c.Server.RequestTimeout < 0 {
		errs = append(errs, errors.New("request timeout must not be negative"))
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst <= 0 {
		errs = append(errs, errors.New("rate limit and burst must be positive"))
	}
	if !validEngines[c.Storage.Engine] {
		errs = append(errs, fmt.Errorf("unknown storage engine %q", c.Storage.Engine))
	}
	if c.Storage.Engine == "postgres" && c.Storage.PostgresDSN == "" {
		errs = append(errs, errors.New("postgres engine requires a DSN"))
	}
	if !validProviders[c.LLM.Provider] {
		errs = append(errs, fmt.Errorf("unknown LLM provider %q", c.LLM.Provider))
	}
	if c.LLM.MaxAttempts <= 0 {
		errs = append(errs, errors.New("LLM max attempts must be positive"))
	}
	if c.LLM.RetryWait < 0 || c.LLM.CallTimeout < 0 {
		errs = append(errs, errors.New("LLM durations must not be negative"))
	}
	if !validEmbeddingProviders[c.Embedding.Provider] {
		errs = append(errs, fmt.Errorf("unknown embedding provider %q", c.Embedding.Provider))
	}
	if c.Embedding.Provider == "hashing" && c.Embedding.Dimensions <= 0 {
		errs = append(errs, errors.New("hashing embedder needs positive dimensions"))
	}
	if c.Analysis.MinInputLength < 0 {
		errs = append(errs, errors.New("min input length must not be negative"))
	}
	if c.Analysis.PersistQueue <= 0 || c.Analysis.PersistWorkers <= 0 {
		errs = append(errs, errors.New("persist queue and workers must be positive"))
	}
	if c.Analysis.SearchK <= 0 {
		errs = append(errs, errors.New("search k must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

// getEnv retrieves a string environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns a default value.
// If the environment variable exists but cannot be parsed as an integer,
// it returns the default value.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

// getEnvDuration accepts Go duration syntax ("2s", "1m30s").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvList splits a comma-separated variable, dropping empty items.
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
