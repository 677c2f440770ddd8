package config

import "time"

const (
	MatchSubstring = "substring"
	MatchWord      = "word"
)

// Config is the relay configuration: which feeds to poll and where each
// category of news is delivered.
type Config struct {
	Feeds      []string   `yaml:"feeds"`
	MatchMode  string     `yaml:"match_mode"`
	Settings   Settings   `yaml:"settings"`
	Categories []Category `yaml:"categories"`
}

type Settings struct {
	Timeout int `yaml:"timeout"` // seconds
}

// Category maps a topic to its destination channel. The category name is
// itself a keyword in addition to the listed synonyms.
type Category struct {
	Name        string   `yaml:"name"`
	Destination string   `yaml:"destination"`
	Link        string   `yaml:"link"`
	Synonyms    []string `yaml:"synonyms"`
}

func (s Settings) GetTimeout() time.Duration {
	if s.Timeout <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.Timeout) * time.Second
}

// Keywords returns the name followed by every synonym, as configured.
func (c Category) Keywords() []string {
	keywords := make([]string, 0, len(c.Synonyms)+1)
	keywords = append(keywords, c.Name)
	keywords = append(keywords, c.Synonyms...)
	return keywords
}

// Destinations lists the distinct chats categories deliver to, in order of
// first appearance.
func (c *Config) Destinations() []string {
	seen := make(map[string]bool, len(c.Categories))
	destinations := make([]string, 0, len(c.Categories))
	for _, category := range c.Categories {
		if seen[category.Destination] {
			continue
		}
		seen[category.Destination] = true
		destinations = append(destinations, category.Destination)
	}
	return destinations
}
