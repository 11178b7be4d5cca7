package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Account AccountConfig `yaml:"account"`
	Log     LogConfig     `yaml:"log"`
}

type AccountConfig struct {
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	Token        string `yaml:"token"`
	Host         string `yaml:"host"`
	Manufacturer string `yaml:"manufacturer"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Account.Host == "" {
		c.Account.Host = "e3.lvi.eu"
	}
	if c.Account.Manufacturer == "" {
		c.Account.Manufacturer = "purmo"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
