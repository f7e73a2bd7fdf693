package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	BackendSQLite = "sqlite"
	BackendBleve  = "bleve"
)

const (
	defaultPort          = "8080"
	defaultSearchTimeout = 10 * time.Second
	inMemoryDSN          = ":memory:"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetPort() string {
	if port := c.getString("PORT", "server.port"); len(port) > 0 {
		return port
	}

	return defaultPort
}

// GetBackend returns the retrieval backend the advocate store is served from.
func (c *Config) GetBackend() string {
	if backend := c.getString("DB_BACKEND", "database.backend"); len(backend) > 0 {
		return backend
	}

	return BackendSQLite
}

func (c *Config) GetStoragePath() string {
	return c.getString("STORAGE_PATH", "database.storage_path")
}

// GetSQLitePath returns the database file path, joined onto the storage path.
// ":memory:" is passed through untouched.
func (c *Config) GetSQLitePath() string {
	sqlitePath := c.getString("SQLITE_PATH", "database.sqlite_path")
	if sqlitePath == inMemoryDSN {
		return sqlitePath
	}

	return filepath.Join(c.GetStoragePath(), sqlitePath)
}

func (c *Config) GetIndexPath() string {
	return filepath.Join(c.GetStoragePath(), c.getString("INDEX_PATH", "database.index_path"))
}

func (c *Config) GetKVDBPath() string {
	return filepath.Join(c.GetStoragePath(), c.getString("KVDB_PATH", "database.kvdb_path"))
}

// GetSeedPath returns the advocates seed file; empty disables seeding.
func (c *Config) GetSeedPath() string {
	return c.getString("SEED_PATH", "database.seed_path")
}

func (c *Config) GetSearchTimeout() time.Duration {
	timeout := c.config.GetDuration("SEARCH_TIMEOUT")
	if timeout <= 0 {
		timeout = c.config.GetDuration("search.timeout")
	}
	if timeout <= 0 {
		return defaultSearchTimeout
	}

	return timeout
}

func (c *Config) GetLogLevel() string {
	return c.getString("LOG_LEVEL", "log.level")
}

func (c *Config) getString(envKey string, fileKey string) string {
	value := c.config.GetString(envKey)
	if len(value) == 0 {
		value = c.config.GetString(fileKey)
	}

	return value
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
