package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port int `json:"port"`
	// PublicBaseURL is the externally visible origin used when building media
	// URLs for the local file store, e.g. "https://novels.example.com".
	PublicBaseURL string           `json:"public_base_url"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	Database      DatabaseConfig   `json:"database"`
	LogConfig     logger.LogConfig `json:"log_config"`
	FileStore     FileStoreConfig  `json:"file_store"`
	AI            AIConfig         `json:"ai"`
	Jobs          JobsConfig       `json:"jobs"`
	CORSOrigins   []string         `json:"cors_origins"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

type FileStoreConfig struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type AIConfig struct {
	Provider      string      `json:"provider"`
	Model         string      `json:"model"`
	MaxInputChars int         `json:"max_input_chars"`
	TimeoutSecs   int         `json:"timeout_secs"`
	Data          interface{} `json:"data"`
}

type JobsConfig struct {
	// PublishSpec is a 5-field cron spec for the scheduled-chapter publisher.
	PublishSpec string `json:"publish_spec"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 72
	}
	if cfg.Database.DSN == "" && cfg.Database.Host == "" {
		return nil, fmt.Errorf("database.dsn or database.host is required")
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.FileStore.Type == "" {
		cfg.FileStore.Type = "local"
	}
	if cfg.AI.Provider != "" && cfg.AI.Data == nil {
		return nil, fmt.Errorf("ai.data is required when ai.provider is set")
	}
	if cfg.AI.MaxInputChars == 0 {
		cfg.AI.MaxInputChars = 100000
	}
	if cfg.AI.TimeoutSecs == 0 {
		cfg.AI.TimeoutSecs = 120
	}
	if cfg.Jobs.PublishSpec == "" {
		cfg.Jobs.PublishSpec = "* * * * *"
	}
	return &cfg, nil
}
