package config

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// ServerConfig locates the CouchDB server.
type ServerConfig struct {
	URL string `yaml:"url"`

	// Timeout is the per-request timeout in seconds. Zero disables it.
	Timeout int `yaml:"timeout_seconds"`
}

// AuthConfig carries the credentials applied to every request. When a
// JWT secret is set it takes precedence over basic authentication.
type AuthConfig struct {
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	JWTSecret string `yaml:"jwt_secret"`
}

// Config is the client configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Auth   AuthConfig   `yaml:"auth"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			URL:     "http://localhost:5984",
			Timeout: 30,
		},
	}
}

// Load builds the configuration by layering, in increasing precedence:
// defaults, config/config.yml, config/config.local.yml, environment
// variables (COUCH_URL, COUCH_TIMEOUT, COUCH_USERNAME, COUCH_PASSWORD,
// COUCH_JWT_SECRET). Missing files are fine; fields absent from a layer
// keep the value of the layer below.
func Load() Config {
	cfg := DefaultConfig()
	applyFile(&cfg, "config/config.yml")
	applyFile(&cfg, "config/config.local.yml")
	applyEnv(&cfg)
	return cfg
}

func applyFile(cfg *Config, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}
	// Unmarshal only touches fields present in the document, which is
	// exactly the inherit-from-lower-layer behavior wanted here.
	_ = yaml.Unmarshal(data, cfg)
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("COUCH_URL"); v != "" {
		cfg.Server.URL = v
	}
	if v := os.Getenv("COUCH_TIMEOUT"); v != "" {
		if timeout, err := strconv.Atoi(v); err == nil {
			cfg.Server.Timeout = timeout
		}
	}
	if v := os.Getenv("COUCH_USERNAME"); v != "" {
		cfg.Auth.Username = v
	}
	if v := os.Getenv("COUCH_PASSWORD"); v != "" {
		cfg.Auth.Password = v
	}
	if v := os.Getenv("COUCH_JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
}
