package backend

import (
	"fmt"

	"fintrack/internal/config"
	"fintrack/internal/storage"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}

	return Config{
		DatabaseURL:    appConfig.DatabaseURL,
		DBName:         appConfig.DBName,
		Collection:     appConfig.TransactionsCollection,
		ConnectTimeout: appConfig.ConnectTimeout,
	}, nil
}

// Validate validates the backend configuration
func (c Config) Validate() error {
	if c.DatabaseURL == "" || c.DBName == "" {
		return storage.ErrNotConfigured
	}
	if _, err := Resolve(c.DatabaseURL); err != nil {
		return err
	}
	return nil
}
