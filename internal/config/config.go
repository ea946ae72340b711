// Package config loads the settings of the fpool-web demo server from a YAML or JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yongpi/fpool"
)

// Config is the structure of the config file.
type Config struct {
	Server ServerConfig `yaml:"server" json:"server"`
	Pool   PoolConfig   `yaml:"pool" json:"pool"`
	Admin  AdminConfig  `yaml:"admin" json:"admin"`
	Log    LogConfig    `yaml:"log" json:"log"`
}

type ServerConfig struct {
	Host            string `yaml:"host" json:"host"`
	Port            string `yaml:"port" json:"port"`
	SleepDelay      string `yaml:"sleep_delay" json:"sleep_delay"`
	ShutdownTimeout string `yaml:"shutdown_timeout" json:"shutdown_timeout"`
}

type PoolConfig struct {
	Workers       int    `yaml:"workers" json:"workers"`
	QueueCapacity int    `yaml:"queue_capacity" json:"queue_capacity"`
	Backpressure  string `yaml:"backpressure" json:"backpressure"`
}

type AdminConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	Addr    string `yaml:"addr" json:"addr"`
}

type LogConfig struct {
	Debug bool `yaml:"debug" json:"debug"`
}

// Default returns the settings used when no config file is given.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "8080",
			SleepDelay:      "5s",
			ShutdownTimeout: "10s",
		},
		Pool: PoolConfig{
			Workers:      4,
			Backpressure: "block",
		},
		Admin: AdminConfig{
			Enabled: true,
			Addr:    "127.0.0.1:9090",
		},
	}
}

// LoadFile reads path over the defaults. Fields missing from the file keep their default.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	ext := strings.ToLower(filepath.Ext(path))

	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}

	return &config, nil
}

// Validate checks the config for values the server cannot start with.
func (c *Config) Validate() error {
	if c.Pool.Workers <= 0 {
		return fmt.Errorf("pool.workers must be positive")
	}
	if c.Pool.QueueCapacity < 0 {
		return fmt.Errorf("pool.queue_capacity must be non-negative")
	}
	if _, err := c.Backpressure(); err != nil {
		return err
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	if _, err := c.SleepDelay(); err != nil {
		return err
	}
	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	if c.Admin.Enabled && c.Admin.Addr == "" {
		return fmt.Errorf("admin.addr is required when admin is enabled")
	}
	return nil
}

// Address is the host:port the server listens on.
func (c *Config) Address() string {
	return net.JoinHostPort(c.Server.Host, c.Server.Port)
}

func (c *Config) Backpressure() (fpool.Backpressure, error) {
	switch strings.ToLower(c.Pool.Backpressure) {
	case "", "block":
		return fpool.BackpressureBlock, nil
	case "reject":
		return fpool.BackpressureReject, nil
	default:
		return 0, fmt.Errorf("unknown backpressure policy: %s", c.Pool.Backpressure)
	}
}

func (c *Config) SleepDelay() (time.Duration, error) {
	return parseDuration("server.sleep_delay", c.Server.SleepDelay)
}

func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

// PoolOptions turns the pool section into fpool options.
func (c *Config) PoolOptions() ([]fpool.Option, error) {
	bp, err := c.Backpressure()
	if err != nil {
		return nil, err
	}
	return []fpool.Option{
		fpool.WithQueueCapacity(c.Pool.QueueCapacity),
		fpool.WithBackpressure(bp),
	}, nil
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must be non-negative", field)
	}
	return d, nil
}
