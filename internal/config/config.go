package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string
	// CentralDBURL is the pgx connection string for the central store
	CentralDBURL string
	// ReplicaDBPath is the sqlite file backing the local replica store
	ReplicaDBPath string
	// IndexMetaDir holds one metadata directory per TM search index
	IndexMetaDir string
	// TablePrefix namespaces central tables per environment (dev_/test_/prod_)
	TablePrefix string
	LogDir      string
	// Debug enables verbose sync logging
	Debug bool
}

// fileConfig is the optional lsync.yaml overlay for CLI runs.
type fileConfig struct {
	CentralDBURL  string `yaml:"central_db_url"`
	ReplicaDBPath string `yaml:"replica_db_path"`
	IndexMetaDir  string `yaml:"index_meta_dir"`
	LogDir        string `yaml:"log_dir"`
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment:   env,
		CentralDBURL:  getEnv("CENTRAL_DB_URL", ""),
		ReplicaDBPath: getEnv("REPLICA_DB_PATH", "data/replica.db"),
		IndexMetaDir:  getEnv("INDEX_META_DIR", "data/tm_indexes"),
		TablePrefix:   getTablePrefix(env),
		LogDir:        getEnv("LOG_DIR", "logs"),
		// Debug defaults on outside production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// LoadWithFile loads env config, then overlays values from a yaml file when
// it exists. Missing files are not an error; the env config stands alone.
func LoadWithFile(path string) (*Config, error) {
	cfg := Load()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.CentralDBURL != "" {
		cfg.CentralDBURL = fc.CentralDBURL
	}
	if fc.ReplicaDBPath != "" {
		cfg.ReplicaDBPath = fc.ReplicaDBPath
	}
	if fc.IndexMetaDir != "" {
		cfg.IndexMetaDir = fc.IndexMetaDir
	}
	if fc.LogDir != "" {
		cfg.LogDir = fc.LogDir
	}

	return cfg, nil
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
