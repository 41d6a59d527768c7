package config

import (
	"errors"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	APIPort  int `yaml:"apiPort"`
	Database struct {
		Type        string `yaml:"type"`
		Path        string `yaml:"path"`
		PostgresDSN string `yaml:"postgresDsn"`
		WALMode     bool   `yaml:"walMode"`
		MaxRetries  int    `yaml:"maxRetries"`
		RetryDelay  int    `yaml:"retryDelay"`
	} `yaml:"database"`
	Auth struct {
		TokenSecret     string `yaml:"tokenSecret"`
		TokenTTLMinutes int    `yaml:"tokenTtlMinutes"`
	} `yaml:"auth"`
	Storage struct {
		Endpoint        string `yaml:"endpoint"`
		Region          string `yaml:"region"`
		Bucket          string `yaml:"bucket"`
		AccessKeyID     string `yaml:"accessKeyId"`
		SecretAccessKey string `yaml:"secretAccessKey"`
		LocalDir        string `yaml:"localDir"`
	} `yaml:"storage"`
}

// LoadConfig loads the configuration from file and environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		log.Printf("Warning: Could not read config file: %s. Using defaults or environment variables.", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.APIPort == 0 {
		cfg.APIPort = 8081
		log.Println("APIPort not specified, using default 8081")
	}

	if cfg.Database.Type == "" {
		cfg.Database.Type = "sqlite"
		log.Println("Database type not specified, using sqlite")
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "/data/socialfeed.db"
		log.Println("Database path not specified, using default /data/socialfeed.db")
	}

	if !cfg.Database.WALMode {
		cfg.Database.WALMode = true
		log.Println("WAL mode not specified, enabling by default")
	}

	if cfg.Database.MaxRetries == 0 {
		cfg.Database.MaxRetries = 5
	}
	if cfg.Database.RetryDelay == 0 {
		cfg.Database.RetryDelay = 5
	}

	// The signing secret has no usable default. Everything downstream
	// assumes it is non-empty and immutable for the process lifetime.
	if cfg.Auth.TokenSecret == "" {
		cfg.Auth.TokenSecret = v.GetString("auth.tokenSecret")
	}
	if cfg.Auth.TokenSecret == "" {
		return nil, errors.New("auth.tokenSecret must be set")
	}

	if cfg.Auth.TokenTTLMinutes == 0 {
		cfg.Auth.TokenTTLMinutes = 60
		log.Println("Token TTL not specified, using default 60 minutes")
	}

	if cfg.Storage.Bucket == "" && cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "/data/uploads"
		log.Println("Storage not specified, using local directory /data/uploads")
	}

	log.Printf("Configuration loaded (port=%d, database=%s, storage bucket=%q)", cfg.APIPort, cfg.Database.Type, cfg.Storage.Bucket)
	return &cfg, nil
}
