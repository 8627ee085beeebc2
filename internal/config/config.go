package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Flash-class model for the high-volume analyst and critic passes,
// pro-class model for adjudication only.
const (
	defaultAddr        = ":8080"
	defaultProvider    = "gemini"
	defaultFlashModel  = "gemini-2.5-flash"
	defaultProModel    = "gemini-2.5-pro"
	defaultBatchSize   = 10
	defaultConcurrency = 2
	defaultQueueDepth  = 256
	defaultJobCap      = 1024
	defaultJobTTL      = 24 * time.Hour
)

type Config struct {
	Addr string `yaml:"addr"`

	LLMProvider string `yaml:"llm_provider"` // gemini or anthropic
	FlashModel  string `yaml:"flash_model"`
	ProModel    string `yaml:"pro_model"`

	BatchSize      int     `yaml:"batch_size"`
	Concurrency    int     `yaml:"concurrency"`
	QueueDepth     int     `yaml:"queue_depth"`
	RepairAttempts int     `yaml:"repair_attempts"` // total JSON parse attempts per call
	LLMRPS         float64 `yaml:"llm_rps"`
	LLMBurst       int     `yaml:"llm_burst"`

	JobCap        int `yaml:"job_cap"`
	JobTTLMinutes int `yaml:"job_ttl_minutes"`
}

// Load reads the optional YAML file at path, then applies environment
// overrides, then fills defaults. A missing file is not an error; a
// malformed one is.
func Load(path string) (Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
		case os.IsNotExist(err):
			// defaults only
		default:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	applyDefaults(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("THEMATICA_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("THEMATICA_LLM_PROVIDER"); v != "" {
		cfg.LLMProvider = v
	}
	if v := os.Getenv("THEMATICA_FLASH_MODEL"); v != "" {
		cfg.FlashModel = v
	}
	if v := os.Getenv("THEMATICA_PRO_MODEL"); v != "" {
		cfg.ProModel = v
	}
	if v, ok := envInt("THEMATICA_BATCH_SIZE"); ok {
		cfg.BatchSize = v
	}
	if v, ok := envInt("THEMATICA_CONCURRENCY"); ok {
		cfg.Concurrency = v
	}
	if v, ok := envInt("THEMATICA_JOB_TTL_MINUTES"); ok {
		cfg.JobTTLMinutes = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func applyDefaults(cfg *Config) {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = defaultProvider
	}
	if cfg.FlashModel == "" {
		cfg.FlashModel = defaultFlashModel
	}
	if cfg.ProModel == "" {
		cfg.ProModel = defaultProModel
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	if cfg.QueueDepth <= 0 {
		cfg.QueueDepth = defaultQueueDepth
	}
	if cfg.RepairAttempts <= 0 {
		cfg.RepairAttempts = 2
	}
	if cfg.JobCap <= 0 {
		cfg.JobCap = defaultJobCap
	}
	if cfg.JobTTLMinutes <= 0 {
		cfg.JobTTLMinutes = int(defaultJobTTL / time.Minute)
	}
}

// JobTTL returns the job retention window as a duration.
func (c Config) JobTTL() time.Duration {
	return time.Duration(c.JobTTLMinutes) * time.Minute
}
