package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Lobby holds all configuration for the lobby server.
type Lobby struct {
	// Network
	BindAddress string `yaml:"bind_address" env:"PARTYLOBBY_BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"PARTYLOBBY_PORT"`

	LogLevel string `yaml:"log_level" env:"PARTYLOBBY_LOG_LEVEL"`

	// Admin HTTP (health, parties, metrics)
	Admin AdminConfig `yaml:"admin"`

	// Parties
	Party PartyConfig `yaml:"party"`

	// Write queue / timeouts
	WriteTimeout  time.Duration `yaml:"write_timeout" env:"PARTYLOBBY_WRITE_TIMEOUT"`     // per-write deadline
	ReadTimeout   time.Duration `yaml:"read_timeout" env:"PARTYLOBBY_READ_TIMEOUT"`       // idle client disconnect
	SendQueueSize int           `yaml:"send_queue_size" env:"PARTYLOBBY_SEND_QUEUE_SIZE"` // per-client outbox capacity

	// Database
	Database DatabaseConfig `yaml:"database"`
}

// AdminConfig holds the admin HTTP listener settings.
// Port 0 disables the admin server.
type AdminConfig struct {
	BindAddress string `yaml:"bind_address" env:"PARTYLOBBY_ADMIN_BIND_ADDRESS"`
	Port        int    `yaml:"port" env:"PARTYLOBBY_ADMIN_PORT"`
}

// Enabled reports whether the admin server should run.
func (a AdminConfig) Enabled() bool {
	return a.Port > 0
}

// Addr returns host:port for the admin listener.
func (a AdminConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.BindAddress, a.Port)
}

// PartyConfig controls invite lifetime.
type PartyConfig struct {
	InviteTimeout time.Duration `yaml:"invite_timeout" env:"PARTYLOBBY_INVITE_TIMEOUT"`
	SweepInterval time.Duration `yaml:"sweep_interval" env:"PARTYLOBBY_INVITE_SWEEP_INTERVAL"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string `yaml:"host" env:"PARTYLOBBY_DB_HOST"`
	Port     int    `yaml:"port" env:"PARTYLOBBY_DB_PORT"`
	User     string `yaml:"user" env:"PARTYLOBBY_DB_USER"`
	Password string `yaml:"password" env:"PARTYLOBBY_DB_PASSWORD"`
	DBName   string `yaml:"dbname" env:"PARTYLOBBY_DB_NAME"`
	SSLMode  string `yaml:"sslmode" env:"PARTYLOBBY_DB_SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// DefaultLobby returns Lobby config with sensible defaults.
func DefaultLobby() Lobby {
	return Lobby{
		BindAddress: "0.0.0.0",
		Port:        8001,
		LogLevel:    "info",
		Admin: AdminConfig{
			BindAddress: "127.0.0.1",
			Port:        8080,
		},
		Party: PartyConfig{
			InviteTimeout: 24 * time.Hour,
			SweepInterval: time.Minute,
		},
		WriteTimeout:  5 * time.Second,
		ReadTimeout:   120 * time.Second,
		SendQueueSize: 256,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "partylobby",
			Password: "partylobby",
			DBName:   "partylobby",
			SSLMode:  "disable",
		},
	}
}

// LoadLobby loads lobby config from a YAML file, then applies environment
// overrides. If the file doesn't exist, defaults are used.
func LoadLobby(path string) (Lobby, error) {
	cfg := DefaultLobby()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parsing env overrides: %w", err)
	}

	return cfg, nil
}
