package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relay.yml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValidConfig(t *testing.T) {
	path := writeConfig(t, `
feeds:
  - https://example.com/rss.xml
match_mode: word
settings:
  timeout: 15
categories:
  - name: спорт
    destination: "@sport"
    synonyms: [футбол, хоккей]
  - name: кино
    destination: "-1001234"
    link: https://t.me/+invite
`)

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	want := &Config{
		Feeds:     []string{"https://example.com/rss.xml"},
		MatchMode: MatchWord,
		Settings:  Settings{Timeout: 15},
		Categories: []Category{
			{Name: "спорт", Destination: "@sport", Link: "https://t.me/sport", Synonyms: []string{"футбол", "хоккей"}},
			{Name: "кино", Destination: "-1001234", Link: "https://t.me/+invite"},
		},
	}
	if diff := cmp.Diff(want, config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if config.Settings.GetTimeout() != 15*time.Second {
		t.Errorf("Expected timeout 15s, got %v", config.Settings.GetTimeout())
	}
}

func TestLoadConfigWithDefaults(t *testing.T) {
	path := writeConfig(t, `
feeds: [https://example.com/rss.xml]
categories:
  - name: news
    destination: "@news"
`)

	config, err := NewLoader(path).Load()
	if err != nil {
		t.Fatal(err)
	}

	if config.MatchMode != MatchSubstring {
		t.Errorf("Expected default match mode %q, got %q", MatchSubstring, config.MatchMode)
	}
	if config.Settings.Timeout != 30 {
		t.Errorf("Expected default timeout 30, got %d", config.Settings.Timeout)
	}
}

func TestLoadMissingFileUsesDefault(t *testing.T) {
	loader := NewLoader(filepath.Join(t.TempDir(), "absent.yml"))

	config, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(Default(), config); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
	if len(loader.Current().Categories) != 5 {
		t.Errorf("Expected 5 default categories, got %d", len(loader.Current().Categories))
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	path := writeConfig(t, "feeds: [unclosed")

	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Feeds:      []string{"https://example.com/rss.xml"},
			MatchMode:  MatchSubstring,
			Categories: []Category{{Name: "a", Destination: "@a"}},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"valid", func(*Config) {}, true},
		{"no feeds", func(c *Config) { c.Feeds = nil }, false},
		{"relative feed url", func(c *Config) { c.Feeds = []string{"/rss.xml"} }, false},
		{"unknown match mode", func(c *Config) { c.MatchMode = "regex" }, false},
		{"negative timeout", func(c *Config) { c.Settings.Timeout = -1 }, false},
		{"no categories", func(c *Config) { c.Categories = nil }, false},
		{"missing destination", func(c *Config) { c.Categories[0].Destination = "" }, false},
		{"missing name", func(c *Config) { c.Categories[0].Name = "" }, false},
		{"duplicate category", func(c *Config) { c.Categories = append(c.Categories, c.Categories[0]) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			tt.mutate(config)
			err := Validate(config)
			if tt.ok && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

func TestValidateNoCategoriesSentinel(t *testing.T) {
	config := &Config{Feeds: []string{"https://example.com/rss.xml"}, MatchMode: MatchSubstring}

	if err := Validate(config); !errors.Is(err, ErrNoCategories) {
		t.Errorf("Expected ErrNoCategories, got %v", err)
	}
}

func TestDefaultIsValid(t *testing.T) {
	if err := Validate(Default()); err != nil {
		t.Fatalf("Default config is invalid: %v", err)
	}
}

func TestCategoryKeywords(t *testing.T) {
	category := Category{Name: "спорт", Synonyms: []string{"футбол", " теннис"}}

	if diff := cmp.Diff([]string{"спорт", "футбол", " теннис"}, category.Keywords()); diff != "" {
		t.Errorf("keywords mismatch (-want +got):\n%s", diff)
	}
}

func TestDestinationsDistinct(t *testing.T) {
	config := &Config{Categories: []Category{
		{Name: "спорт", Destination: "@sport"},
		{Name: "футбол", Destination: "@sport"},
		{Name: "кино", Destination: "@cinema"},
	}}

	want := []string{"@sport", "@cinema"}
	if diff := cmp.Diff(want, config.Destinations()); diff != "" {
		t.Errorf("Destinations() mismatch (-want +got):\n%s", diff)
	}
}
