package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"websearch/content"
	"websearch/fetcher"
	"websearch/search"
	"websearch/summary"

	"gopkg.in/yaml.v3"
)

var (
	ErrInvalidMode      = errors.New("invalid content mode")
	ErrInvalidTimeout   = errors.New("timeout must be positive")
	ErrInvalidCacheSize = errors.New("cache_size must be positive")
	ErrInvalidLength    = errors.New("content lengths must be positive")
)

type Config struct {
	Headers   map[string]string `yaml:"headers"`
	Proxies   map[string]string `yaml:"proxies"`
	Timeout   time.Duration     `yaml:"timeout"`
	CacheSize int               `yaml:"cache_size"`
	Content   ContentConfig     `yaml:"content"`
	Log       LogConfig         `yaml:"log"`
	Endpoints EndpointsConfig   `yaml:"endpoints"`
}

type ContentConfig struct {
	Mode             string `yaml:"mode"`
	MaxLength        int    `yaml:"max_length"`
	MinSummaryLength int    `yaml:"min_summary_length"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type EndpointsConfig struct {
	Google         string `yaml:"google"`
	DuckDuckGoLite string `yaml:"duckduckgo_lite"`
	Bing           string `yaml:"bing"`
	Baidu          string `yaml:"baidu"`
	BaiduOrigin    string `yaml:"baidu_origin"`
}

func Defaults() *Config {
	endpoints := search.DefaultEndpoints()
	return &Config{
		Headers:   map[string]string{"User-Agent": fetcher.DefaultUserAgent},
		Proxies:   map[string]string{},
		Timeout:   fetcher.DefaultTimeout,
		CacheSize: search.DefaultCacheSize,
		Content: ContentConfig{
			Mode:             string(content.ModeText),
			MaxLength:        content.DefaultMaxLength,
			MinSummaryLength: summary.DefaultMinLength,
		},
		Log: LogConfig{
			Level: "info",
		},
		Endpoints: EndpointsConfig{
			Google:         endpoints.Google,
			DuckDuckGoLite: endpoints.DuckDuckGoLite,
			Bing:           endpoints.Bing,
			Baidu:          endpoints.Baidu,
			BaiduOrigin:    endpoints.BaiduOrigin,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	cfg.Log.Level = getEnvOrDefault("LOG_LEVEL", cfg.Log.Level)

	if proxyURL := os.Getenv("PROXY_URL"); proxyURL != "" {
		if cfg.Proxies == nil {
			cfg.Proxies = map[string]string{}
		}
		cfg.Proxies["http"] = proxyURL
		cfg.Proxies["https"] = proxyURL
	}

	if sec := getEnvIntOrDefault("SEARCH_TIMEOUT_SEC", 0); sec > 0 {
		cfg.Timeout = time.Duration(sec) * time.Second
	}
}

func (c *Config) Validate() error {
	if _, err := content.ParseMode(c.Content.Mode); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Content.Mode)
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.CacheSize <= 0 {
		return ErrInvalidCacheSize
	}
	if c.Content.MaxLength <= 0 || c.Content.MinSummaryLength < 0 {
		return ErrInvalidLength
	}
	return nil
}

// Fetcher returns the page fetcher settings.
func (c *Config) Fetcher() fetcher.Config {
	return fetcher.Config{
		Headers: c.Headers,
		Proxies: c.Proxies,
		Timeout: c.Timeout,
	}
}

func (c *Config) SearchEndpoints() search.Endpoints {
	return search.Endpoints{
		Google:         c.Endpoints.Google,
		DuckDuckGoLite: c.Endpoints.DuckDuckGoLite,
		Bing:           c.Endpoints.Bing,
		Baidu:          c.Endpoints.Baidu,
		BaiduOrigin:    c.Endpoints.BaiduOrigin,
	}
}

// ContentExtractor returns the extractor settings. Validate must have passed.
func (c *Config) ContentExtractor() content.Config {
	mode, _ := content.ParseMode(c.Content.Mode)
	return content.Config{
		Mode:      mode,
		MaxLength: c.Content.MaxLength,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
