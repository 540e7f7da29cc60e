// Package config loads taskboard settings from TOML.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

type StorageBackend string

const (
	StorageSQLite StorageBackend = "sqlite"
	StorageRedis  StorageBackend = "redis"
)

type Config struct {
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	Redis    RedisConfig    `toml:"redis"`
	Server   ServerConfig   `toml:"server"`
	Client   ClientConfig   `toml:"client"`
	Logging  LoggingConfig  `toml:"logging"`
	UI       UIConfig       `toml:"ui"`
	Keys     KeyConfig      `toml:"keys"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type StorageConfig struct {
	Backend StorageBackend `toml:"backend"`
}

type RedisConfig struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type ServerConfig struct {
	HTTPBind    string `toml:"http_bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

// ClientConfig points the TUI at a running server. An empty BaseURL means local mode.
type ClientConfig struct {
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type LoggingConfig struct {
	Level   string        `toml:"level"`
	DevFile DevFileConfig `toml:"dev_file"`
}

// UIConfig holds board presentation settings.
type UIConfig struct {
	Title string `toml:"title"`
}

// KeyConfig rebinds board actions. Blank values keep the built-in keys.
type KeyConfig struct {
	PickUp     string `toml:"pick_up"`
	NewTask    string `toml:"new_task"`
	DeleteTask string `toml:"delete_task"`
	TaskInfo   string `toml:"task_info"`
	CopyID     string `toml:"copy_id"`
	Reload     string `toml:"reload"`
}

type DevFileConfig struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
}

// Duration decodes TOML strings such as "5s" into a time.Duration.
type Duration time.Duration

// UnmarshalText parses one Go duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration in Go syntax.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the standard library duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Storage: StorageConfig{
			Backend: StorageSQLite,
		},
		Redis: RedisConfig{
			Addr: "127.0.0.1:6379",
		},
		Server: ServerConfig{
			HTTPBind:    "127.0.0.1:8080",
			APIEndpoint: "/api",
			MCPEndpoint: "/mcp",
		},
		Logging: LoggingConfig{
			Level: "info",
			DevFile: DevFileConfig{
				Enabled: true,
				Dir:     ".taskboard/log",
			},
		},
		UI: UIConfig{
			Title: "taskboard",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch StorageBackend(strings.TrimSpace(strings.ToLower(string(c.Storage.Backend)))) {
	case StorageSQLite, "":
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database path is required")
		}
	case StorageRedis:
		if strings.TrimSpace(c.Redis.Addr) == "" {
			return errors.New("redis.addr is required for the redis backend")
		}
	default:
		return fmt.Errorf("invalid storage.backend: %q", c.Storage.Backend)
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("redis.db must be >= 0")
	}

	if raw := strings.TrimSpace(c.Client.BaseURL); raw != "" {
		parsed, err := url.Parse(raw)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("invalid client.base_url: %q", c.Client.BaseURL)
		}
	}
	if c.Client.Timeout < 0 {
		return fmt.Errorf("client.timeout must be >= 0")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error", "fatal":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.DevFile.Enabled && strings.TrimSpace(c.Logging.DevFile.Dir) == "" {
		return errors.New("logging.dev_file.dir is required when dev_file logging is enabled")
	}
	return c.Keys.validate()
}

// Backend returns the normalized storage backend, defaulting to sqlite.
func (c Config) Backend() StorageBackend {
	backend := StorageBackend(strings.TrimSpace(strings.ToLower(string(c.Storage.Backend))))
	if backend == "" {
		return StorageSQLite
	}
	return backend
}

// validate rejects two board actions sharing one key.
func (k KeyConfig) validate() error {
	seen := map[string]string{}
	for _, binding := range []struct{ name, key string }{
		{"pick_up", k.PickUp},
		{"new_task", k.NewTask},
		{"delete_task", k.DeleteTask},
		{"task_info", k.TaskInfo},
		{"copy_id", k.CopyID},
		{"reload", k.Reload},
	} {
		key := strings.TrimSpace(binding.key)
		if key == "" {
			continue
		}
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("keys.%s and keys.%s both use %q", prev, binding.name, key)
		}
		seen[key] = binding.name
	}
	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
