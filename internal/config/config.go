// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Logging     LoggingConfig     `yaml:"logging"`
	Repository  RepositoryConfig  `yaml:"repository"`
	Timer       TimerConfig       `yaml:"timer"`
	Persistence PersistenceConfig `yaml:"persistence"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int32         `yaml:"max_connections"`
	MinConnections int32         `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
}

type LoggingConfig struct {
	Development bool `yaml:"development"`
}

type RepositoryConfig struct {
	Type       string `yaml:"type"` // "file", "postgres", "sqlite" или "inmemory"
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

type TimerConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
}

type PersistenceConfig struct {
	Async bool `yaml:"async"`
}

const (
	RepositoryFile     = "file"
	RepositoryPostgres = "postgres"
	RepositorySQLite   = "sqlite"
	RepositoryInMemory = "inmemory"
)

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 4,
			MinConnections: 1,
			IdleTimeout:    5 * time.Minute,
		},
		Repository: RepositoryConfig{
			Type:    RepositoryFile,
			DataDir: defaultDataDir(),
		},
		Timer: TimerConfig{
			TickInterval: time.Second,
		},
		Persistence: PersistenceConfig{
			Async: true,
		},
	}
}

// Load читает .env, затем YAML-файл поверх значений по умолчанию, затем
// переменные окружения. Отсутствие файла - не ошибка.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("GOALS_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := yaml.NewDecoder(file)
		if err := decoder.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, fmt.Errorf("не могу открыть %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("GOALS_REPOSITORY"); v != "" {
		c.Repository.Type = v
	}
	if v := os.Getenv("GOALS_DATA_DIR"); v != "" {
		c.Repository.DataDir = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.Database.URL = v
	}
	if v := os.Getenv("GOALS_PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("GOALS_DEV"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("GOALS_DEV: %w", err)
		}
		c.Logging.Development = dev
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case RepositoryFile:
		if c.Repository.DataDir == "" {
			return fmt.Errorf("repository.data_dir обязателен для типа %q", c.Repository.Type)
		}
	case RepositoryPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("database.url обязателен для типа %q", c.Repository.Type)
		}
	case RepositorySQLite, RepositoryInMemory:
	default:
		return fmt.Errorf("неизвестный тип хранилища %q", c.Repository.Type)
	}
	if c.Timer.TickInterval <= 0 {
		return fmt.Errorf("timer.tick_interval должен быть больше нуля")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

// GetSQLitePath возвращает путь к базе SQLite, по умолчанию внутри data_dir
func (c *Config) GetSQLitePath() string {
	if c.Repository.SQLitePath != "" {
		return c.Repository.SQLitePath
	}
	return filepath.Join(c.Repository.DataDir, "goals.db")
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "goalTracker")
	}
	return "./data"
}
