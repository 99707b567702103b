package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/automaton-ux/internal/logger"
)

const (
	ScratchBackendLocal = "local"
	ScratchBackendMinio = "minio"
)

type Config struct {
	Server struct {
		Port         int           `yaml:"port" envconfig:"PORT"`
		ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"READ_TIMEOUT"`
		WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"WRITE_TIMEOUT"`
		IdleTimeout  time.Duration `yaml:"idleTimeout" envconfig:"IDLE_TIMEOUT"`
		// MaxUploadBytes 0 artinya tanpa batas
		MaxUploadBytes int64 `yaml:"maxUploadBytes" envconfig:"MAX_UPLOAD_BYTES"`
	} `yaml:"server"`

	Gemini struct {
		APIKey          string        `yaml:"apiKey" envconfig:"API_KEY"`
		Model           string        `yaml:"model" envconfig:"MODEL"`
		PollInterval    time.Duration `yaml:"pollInterval" envconfig:"POLL_INTERVAL"`
		MaxPollAttempts int           `yaml:"maxPollAttempts" envconfig:"MAX_POLL_ATTEMPTS"`
		AnalysisTimeout time.Duration `yaml:"analysisTimeout" envconfig:"ANALYSIS_TIMEOUT"`
	} `yaml:"gemini"`

	Scratch struct {
		Backend string `yaml:"backend" envconfig:"BACKEND"` // local | minio
		Dir     string `yaml:"dir" envconfig:"DIR"`
	} `yaml:"scratch"`

	Minio struct {
		Endpoint   string `yaml:"endpoint" envconfig:"ENDPOINT"`
		AccessKey  string `yaml:"accessKey" envconfig:"ACCESS_KEY"`
		SecretKey  string `yaml:"secretKey" envconfig:"SECRET_KEY"`
		BucketName string `yaml:"bucketName" envconfig:"BUCKET_NAME"`
		Region     string `yaml:"region" envconfig:"REGION"`
		UseSSL     bool   `yaml:"useSSL" envconfig:"USE_SSL"`
	} `yaml:"minio"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins" envconfig:"ALLOWED_ORIGINS"`
	} `yaml:"cors"`

	Log logger.Config `yaml:"log"`
}

// Load reads the YAML file at path (optional), then .env and the process
// environment on top of it. Environment keys are SECTION_NAME, e.g.
// GEMINI_API_KEY; the bare name (API_KEY) is accepted as a fallback.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			// file config opsional, env saja cukup
		case err != nil:
			return nil, err
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	_ = godotenv.Load()
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8000
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 5 * time.Minute
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 15 * time.Minute
	}
	if c.Server.IdleTimeout == 0 {
		c.Server.IdleTimeout = 60 * time.Second
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-3-flash-preview"
	}
	if c.Gemini.PollInterval == 0 {
		c.Gemini.PollInterval = time.Second
	}
	if c.Gemini.MaxPollAttempts == 0 {
		c.Gemini.MaxPollAttempts = 600
	}
	if c.Gemini.AnalysisTimeout == 0 {
		c.Gemini.AnalysisTimeout = 10 * time.Minute
	}
	if c.Scratch.Backend == "" {
		c.Scratch.Backend = ScratchBackendLocal
	}
	if c.Scratch.Dir == "" {
		c.Scratch.Dir = "uploads"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate checks the settings that have no usable default.
func (c *Config) Validate() error {
	if c.Gemini.APIKey == "" {
		return errors.New("gemini api key is required (API_KEY or GEMINI_API_KEY)")
	}
	if c.Gemini.MaxPollAttempts < 0 {
		return fmt.Errorf("gemini.maxPollAttempts must be positive, got %d", c.Gemini.MaxPollAttempts)
	}
	if c.Server.MaxUploadBytes < 0 {
		return fmt.Errorf("server.maxUploadBytes must not be negative, got %d", c.Server.MaxUploadBytes)
	}
	switch c.Scratch.Backend {
	case ScratchBackendLocal:
	case ScratchBackendMinio:
		if c.Minio.Endpoint == "" || c.Minio.BucketName == "" {
			return errors.New("minio endpoint and bucketName are required for the minio scratch backend")
		}
	default:
		return fmt.Errorf("unknown scratch backend %q (allowed: local, minio)", c.Scratch.Backend)
	}
	return nil
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
