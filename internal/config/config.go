// Package config loads service configuration from the environment, with an
// optional YAML file layered underneath. A .env file in the working
// directory is picked up automatically.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Formatting modes.
const (
	ModeRule = "rule"
	ModeLLM  = "llm"
	ModeBoth = "both"
)

// Ollama holds the connection settings for the local model.
type Ollama struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Temperature float64       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

type Config struct {
	Port string `yaml:"port"`

	// APIKey enables bearer auth on the HTTP API when set.
	APIKey string `yaml:"api_key"`

	// Mode selects which formatting paths run by default: rule, llm or both.
	Mode string `yaml:"mode"`

	// OutputDir receives the formatted documents.
	OutputDir string `yaml:"output_dir"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	Ollama Ollama `yaml:"ollama"`
}

// Load reads configuration from the environment. A .env file is merged in
// first when present.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port:   envOr("PORT", "8095"),
		APIKey: os.Getenv("GONGWEN_API_KEY"),
		Mode:   envOr("FORMAT_MODE", ModeBoth),

		OutputDir: envOr("OUTPUT_DIR", os.TempDir()),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		Ollama: Ollama{
			BaseURL:     envOr("OLLAMA_BASE_URL", "http://localhost:11434"),
			Model:       envOr("OLLAMA_MODEL", "qwen2.5:7b"),
			Temperature: envFloat("OLLAMA_TEMPERATURE", 0.1),
			Timeout:     envDuration("OLLAMA_TIMEOUT", 120*time.Second),
		},
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

// ApplyFile overlays settings from a YAML file. Zero-valued fields in the
// file leave the current values alone.
func (c *Config) ApplyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	if file.Port != "" {
		c.Port = file.Port
	}
	if file.APIKey != "" {
		c.APIKey = file.APIKey
	}
	if file.Mode != "" {
		c.Mode = file.Mode
	}
	if file.OutputDir != "" {
		c.OutputDir = file.OutputDir
	}
	if file.WorkerCount > 0 {
		c.WorkerCount = file.WorkerCount
	}
	if file.MaxQueueSize > 0 {
		c.MaxQueueSize = file.MaxQueueSize
	}
	if file.MaxUploadBytes > 0 {
		c.MaxUploadBytes = file.MaxUploadBytes
	}
	if file.JobTTL > 0 {
		c.JobTTL = file.JobTTL
	}
	if file.Ollama.BaseURL != "" {
		c.Ollama.BaseURL = file.Ollama.BaseURL
	}
	if file.Ollama.Model != "" {
		c.Ollama.Model = file.Ollama.Model
	}
	if file.Ollama.Temperature > 0 {
		c.Ollama.Temperature = file.Ollama.Temperature
	}
	if file.Ollama.Timeout > 0 {
		c.Ollama.Timeout = file.Ollama.Timeout
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModeRule, ModeLLM, ModeBoth:
	default:
		return fmt.Errorf("invalid mode %q (want rule, llm or both)", c.Mode)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output dir is required")
	}
	if c.Mode != ModeRule {
		if c.Ollama.BaseURL == "" {
			return fmt.Errorf("ollama base url is required for mode %q", c.Mode)
		}
		if c.Ollama.Model == "" {
			return fmt.Errorf("ollama model is required for mode %q", c.Mode)
		}
	}
	return nil
}

// ValidMode reports whether name is a known formatting mode.
func ValidMode(name string) bool {
	switch name {
	case ModeRule, ModeLLM, ModeBoth:
		return true
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
