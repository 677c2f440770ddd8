package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var ErrNoCategories = errors.New("at least one category is required")

// Loader reads the relay configuration from a YAML file and keeps the last
// successfully loaded version.
type Loader struct {
	path    string
	current *Config
	mu      sync.RWMutex
}

func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load reads and validates the configuration file. A missing file yields the
// built-in default configuration.
func (l *Loader) Load() (*Config, error) {
	config, err := l.parseConfig()
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", l.path, err)
	}

	l.mu.Lock()
	l.current = config
	l.mu.Unlock()

	slog.Debug("Configuration loaded", "path", l.path, "feeds", len(config.Feeds), "categories", len(config.Categories), "match_mode", config.MatchMode)
	return config, nil
}

// Current returns the last loaded configuration, or the default one if
// nothing has been loaded yet.
func (l *Loader) Current() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if l.current == nil {
		return Default()
	}
	return l.current
}

func (l *Loader) parseConfig() (*Config, error) {
	if l.path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(l.path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("Configuration file not found, using built-in defaults", "path", l.path)
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML document and applies defaults. It does not validate.
func Parse(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	setDefaults(&config)
	return &config, nil
}

func setDefaults(config *Config) {
	if config.MatchMode == "" {
		config.MatchMode = MatchSubstring
	}
	if config.Settings.Timeout == 0 {
		config.Settings.Timeout = 30
	}
	for i := range config.Categories {
		category := &config.Categories[i]
		category.Name = strings.TrimSpace(category.Name)
		if category.Link == "" && strings.HasPrefix(category.Destination, "@") {
			category.Link = "https://t.me/" + strings.TrimPrefix(category.Destination, "@")
		}
	}
}

func Validate(config *Config) error {
	if config == nil {
		return fmt.Errorf("config is nil")
	}

	if len(config.Feeds) == 0 {
		return fmt.Errorf("at least one feed is required")
	}
	for i, feedURL := range config.Feeds {
		parsed, err := url.Parse(feedURL)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid feed URL at index %d: %q", i, feedURL)
		}
	}

	switch config.MatchMode {
	case MatchSubstring, MatchWord:
	default:
		return fmt.Errorf("invalid match_mode: %s", config.MatchMode)
	}

	if config.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must be non-negative")
	}

	if len(config.Categories) == 0 {
		return ErrNoCategories
	}

	seen := make(map[string]bool, len(config.Categories))
	for i, category := range config.Categories {
		if category.Name == "" {
			return fmt.Errorf("category at index %d has no name", i)
		}
		if category.Destination == "" {
			return fmt.Errorf("category %s has no destination", category.Name)
		}
		if seen[category.Name] {
			return fmt.Errorf("duplicate category: %s", category.Name)
		}
		seen[category.Name] = true
	}

	return nil
}
