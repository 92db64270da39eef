package config

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all server configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Grid    GridConfig    `yaml:"grid"`
	Board   BoardConfig   `yaml:"board"`
	Storage StorageConfig `yaml:"storage"`
	Redis   RedisConfig   `yaml:"redis"`
	JWT     JWTConfig     `yaml:"jwt"`
}

// ServerConfig holds server-specific settings
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	StaticDir      string `yaml:"static_dir"`
	MaxMessageSize int64  `yaml:"max_message_size"` // bytes
}

// GridConfig holds the measured card size and the gap between cards, in pixels
type GridConfig struct {
	CellWidth  float64 `yaml:"cell_width"`
	CellHeight float64 `yaml:"cell_height"`
	SpacingH   float64 `yaml:"spacing_h"`
	SpacingV   float64 `yaml:"spacing_v"`
}

// BoardConfig holds per-session board settings
type BoardConfig struct {
	PlacementMode string   `yaml:"placement_mode"` // "move" or "copy"
	Locked        bool     `yaml:"locked"`
	Styles        []string `yaml:"styles"`
	DefaultBoard  string   `yaml:"default_board"` // loaded into new sessions if set
}

// StorageConfig selects where board documents are kept
type StorageConfig struct {
	Backend   string `yaml:"backend"` // "fs" or "redis"
	Dir       string `yaml:"dir"`
	KeyPrefix string `yaml:"key_prefix"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Address         string `yaml:"address"`
	Password        string `yaml:"password"`
	DB              int    `yaml:"db"`
	BlacklistPrefix string `yaml:"blacklist_prefix"`
}

// JWTConfig holds JWT authentication settings
type JWTConfig struct {
	Enabled             bool   `yaml:"enabled"`
	Issuer              string `yaml:"issuer"`
	PublicKeyFile       string `yaml:"public_key_file"`
	PublicKeyURL        string `yaml:"public_key_url"`
	PublicKeyRefreshHrs int    `yaml:"public_key_refresh_hours"`
}

// ListenAddr is the host:port the HTTP server binds to
func (s ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// UsesRedis reports whether any component needs a Redis connection
func (c *Config) UsesRedis() bool {
	return c.Storage.Backend == "redis" || (c.JWT.Enabled && c.Redis.BlacklistPrefix != "")
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and fills in defaults
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Set defaults if not provided
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.MaxMessageSize == 0 {
		cfg.Server.MaxMessageSize = 1 << 20
	}
	if cfg.Grid.CellWidth == 0 {
		cfg.Grid.CellWidth = 192
	}
	if cfg.Grid.CellHeight == 0 {
		cfg.Grid.CellHeight = 108
	}
	if cfg.Board.PlacementMode == "" {
		cfg.Board.PlacementMode = "move"
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "fs"
	}
	if cfg.Storage.Dir == "" {
		cfg.Storage.Dir = "./data/boards"
	}
	if cfg.Storage.KeyPrefix == "" {
		cfg.Storage.KeyPrefix = "domino:board:"
	}
	if cfg.JWT.PublicKeyRefreshHrs == 0 {
		cfg.JWT.PublicKeyRefreshHrs = 24
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Board.PlacementMode {
	case "move", "copy":
	default:
		return fmt.Errorf("invalid board.placement_mode %q", c.Board.PlacementMode)
	}
	switch c.Storage.Backend {
	case "fs", "redis":
	default:
		return fmt.Errorf("invalid storage.backend %q", c.Storage.Backend)
	}
	if c.JWT.Enabled && c.JWT.PublicKeyFile == "" && c.JWT.PublicKeyURL == "" {
		return fmt.Errorf("jwt enabled without public_key_file or public_key_url")
	}
	return nil
}
