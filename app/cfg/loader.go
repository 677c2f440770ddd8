package cfg

import (
	"cmp"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath     string `long:"db-path" env:"DB_PATH" default:"./data/relay.db" description:"SQLite database file"`
	ConfigPath string `long:"config" env:"CONFIG_PATH" default:"./relay.yml" description:"Relay configuration file (feeds and categories)"`

	// Telegram
	TelegramToken string `long:"telegram-token" env:"TELEGRAM_TOKEN" description:"Telegram bot token (required)" required:"true"`

	// Relay behaviour
	SchedulerInterval int `long:"scheduler-interval" env:"SCHEDULER_INTERVAL" default:"3800" description:"Seconds between feed poll cycles"`
	CleanupInterval   int `long:"cleanup-interval" env:"CLEANUP_INTERVAL" default:"86400" description:"Seconds between retention sweeps"`
	RetentionDays     int `long:"retention-days" env:"RETENTION_DAYS" default:"20" description:"Days to remember delivered items"`
	SendDelayMs       int `long:"send-delay" env:"SEND_DELAY_MS" default:"1000" description:"Pause after each successful delivery, in milliseconds"`
	SummaryMaxLength  int `long:"summary-max-length" env:"SUMMARY_MAX_LENGTH" default:"1500" description:"Maximum summary length in characters"`
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"1" description:"Number of background workers"`

	// HTTP
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`
	UserAgent    string `long:"user-agent" env:"USER_AGENT" default:"RSS Relay/1.0" description:"User agent string for HTTP requests"`

	// Application metadata
	Timezone string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Europe/Moscow)"`
	Debug    bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

// Load parses command line flags and environment. It returns nil, nil when
// help was requested.
func Load() (*Cfg, error) {
	cfg, err := parse(os.Args[1:])
	if err != nil || cfg == nil {
		return nil, err
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		slog.Warn("Invalid timezone, using system default", "timezone", cfg.Timezone, "error", err)
	}

	return cfg, nil
}

func parse(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:            raw.DBPath,
		ConfigPath:        raw.ConfigPath,
		TelegramToken:     raw.TelegramToken,
		SchedulerInterval: raw.SchedulerInterval,
		CleanupInterval:   raw.CleanupInterval,
		RetentionDays:     raw.RetentionDays,
		SendDelayMs:       raw.SendDelayMs,
		SummaryMaxLength:  raw.SummaryMaxLength,
		WorkerCount:       raw.WorkerCount,
		Port:              raw.Port,
		APIAccessKey:      raw.APIAccessKey,
		UserAgent:         raw.UserAgent,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func validate(cfg *Cfg) error {
	positive := []struct {
		name  string
		value int
	}{
		{"scheduler interval", cfg.SchedulerInterval},
		{"cleanup interval", cfg.CleanupInterval},
		{"retention days", cfg.RetentionDays},
		{"summary max length", cfg.SummaryMaxLength},
		{"worker count", cfg.WorkerCount},
	}
	for _, field := range positive {
		if field.value <= 0 {
			return fmt.Errorf("%s must be positive, got %d", field.name, field.value)
		}
	}
	if cfg.SendDelayMs < 0 {
		return fmt.Errorf("send delay must be non-negative, got %d", cfg.SendDelayMs)
	}
	return nil
}

func applyTimezone(timezone string) error {
	if timezone == "" {
		return nil
	}
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return err
	}
	time.Local = loc
	slog.Debug("Timezone configured", "timezone", timezone)
	return nil
}
