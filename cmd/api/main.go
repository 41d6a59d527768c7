package main

import (
	"flag"
	"log"
	"time"

	"github.com/heinwithsmile/social-media-platform-backend-api/internal/api"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/auth"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/config"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/database"
	"github.com/heinwithsmile/social-media-platform-backend-api/internal/storage"
)

const version = "0.0.1"

func initializeAPI(configPath string) (*api.Api, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	store, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}

	var files storage.FileStorage
	if cfg.Storage.Bucket != "" {
		files, err = storage.NewS3Storage(
			cfg.Storage.Endpoint,
			cfg.Storage.Region,
			cfg.Storage.Bucket,
			cfg.Storage.AccessKeyID,
			cfg.Storage.SecretAccessKey,
		)
	} else {
		files, err = storage.NewLocalStorage(cfg.Storage.LocalDir)
	}
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenManager(
		cfg.Auth.TokenSecret,
		time.Duration(cfg.Auth.TokenTTLMinutes)*time.Minute,
		store,
	)

	return api.NewApi(*cfg, store, tokens, files), nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	flag.Parse()

	log.Printf("Starting social feed API v%s with config: %s", version, *configPath)

	api, err := initializeAPI(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	api.Serve()
}
