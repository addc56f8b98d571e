package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// APIConfig holds the HTTP server settings.
type APIConfig struct {
	ListenAddr     string `yaml:"listen_addr"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
}

// DecoderConfig holds the capture decoding limits.
type DecoderConfig struct {
	// MaxPackets caps the packets decoded per capture; 0 means unlimited.
	MaxPackets int `yaml:"max_packets"`
}

// PublisherConfig holds the optional NATS report publisher settings.
type PublisherConfig struct {
	Enabled bool   `yaml:"enabled"`
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}

// ClickHouseConfig holds the connection settings for the report archive.
type ClickHouseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// ArchiveConfig holds the optional ClickHouse report archive settings.
type ArchiveConfig struct {
	Enabled    bool             `yaml:"enabled"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
}

// Config is the top-level configuration struct for the entire application.
type Config struct {
	API       APIConfig       `yaml:"api"`
	Decoder   DecoderConfig   `yaml:"decoder"`
	Publisher PublisherConfig `yaml:"publisher"`
	Archive   ArchiveConfig   `yaml:"archive"`
}

const (
	defaultListenAddr     = ":8080"
	defaultMaxUploadBytes = 100 << 20
)

// LoadConfig reads the configuration from a YAML file and returns a Config
// struct with defaults applied.
func LoadConfig(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if cfg.API.ListenAddr == "" {
		cfg.API.ListenAddr = defaultListenAddr
	}
	if cfg.API.MaxUploadBytes <= 0 {
		cfg.API.MaxUploadBytes = defaultMaxUploadBytes
	}

	return &cfg, nil
}
