package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

type Storage string

const (
	StorageMemory Storage = "memory"
	StorageSQLite Storage = "sqlite"
)

type Config struct {
	Env        string
	Transport  Transport
	Addr       string
	Storage    Storage
	SQLitePath string
}

// Load reads configuration from the environment. In development a .env file
// in the working directory is loaded first when present.
func Load() (Config, error) {
	if getEnv("FEATURECHAT_ENV", "development") == "development" {
		_ = godotenv.Load()
	}

	cfg := Config{
		Env:        getEnv("FEATURECHAT_ENV", "development"),
		Transport:  Transport(getEnv("FEATURECHAT_TRANSPORT", string(TransportStdio))),
		Addr:       getEnv("FEATURECHAT_ADDR", "127.0.0.1:8080"),
		Storage:    Storage(getEnv("FEATURECHAT_STORAGE", string(StorageMemory))),
		SQLitePath: getEnv("FEATURECHAT_SQLITE_PATH", ":memory:"),
	}

	switch cfg.Transport {
	case TransportStdio, TransportHTTP:
	default:
		return Config{}, fmt.Errorf("FEATURECHAT_TRANSPORT must be %q or %q, got %q", TransportStdio, TransportHTTP, cfg.Transport)
	}
	switch cfg.Storage {
	case StorageMemory, StorageSQLite:
	default:
		return Config{}, fmt.Errorf("FEATURECHAT_STORAGE must be %q or %q, got %q", StorageMemory, StorageSQLite, cfg.Storage)
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}
