// Package config loads application settings from a TOML file with
// environment variable overrides.
//
// The config file lives at ~/.config/bannerlord/config.toml. Every field
// has a working default, so a missing file is not an error. Environment
// variables win over file values, which keeps secrets out of the file:
//
//	OPENAI_API_KEY          advisor credentials
//	OPENAI_BASE_URL         alternate advisor endpoint
//	OPENAI_MODEL            advisor model override
//	DIFFUSION_ENDPOINT      background generation service
//	BANNERLORD_OUTPUT_DIR   artifact directory
//	BANNERLORD_CACHE_DIR    advisor response cache
//	REDIS_ADDR              switch the cache backend to Redis
package config

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config holds all application settings.
type Config struct {
	Advisor   AdvisorConfig   `toml:"advisor"`
	Generator GeneratorConfig `toml:"generator"`
	Output    OutputConfig    `toml:"output"`
	Cache     CacheConfig     `toml:"cache"`
	Server    ServerConfig    `toml:"server"`
}

// AdvisorConfig configures the design advisor.
type AdvisorConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
	Model   string `toml:"model"`
}

// GeneratorConfig configures background generation.
type GeneratorConfig struct {
	Endpoint string `toml:"endpoint"`
	Steps    int    `toml:"steps"`
}

// OutputConfig configures artifact output.
type OutputConfig struct {
	Dir string `toml:"dir"`
}

// CacheConfig configures the advisor response cache.
type CacheConfig struct {
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	Disabled      bool   `toml:"disabled"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		Output: OutputConfig{Dir: "outputs"},
		Cache:  CacheConfig{Dir: defaultCacheDir()},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// Path returns the config file location.
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "bannerlord", "config.toml")
}

// Load reads the config file if present and applies environment
// overrides. A missing file yields the defaults.
func Load() (Config, error) {
	return load(Path())
}

func load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := toml.Unmarshal(data, &cfg); err != nil {
				return cfg, err
			}
		} else if !os.IsNotExist(err) {
			return cfg, err
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.Advisor.APIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		cfg.Advisor.BaseURL = v
	}
	if v := os.Getenv("OPENAI_MODEL"); v != "" {
		cfg.Advisor.Model = v
	}
	if v := os.Getenv("DIFFUSION_ENDPOINT"); v != "" {
		cfg.Generator.Endpoint = v
	}
	if v := os.Getenv("BANNERLORD_OUTPUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("BANNERLORD_CACHE_DIR"); v != "" {
		cfg.Cache.Dir = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".bannerlord-cache"
	}
	return filepath.Join(home, ".cache", "bannerlord")
}
