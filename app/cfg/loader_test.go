package cfg

import (
	"os"
	"testing"
	"time"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestParseDefaults(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	cfg, err := parse(nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.TelegramToken != "123:abc" {
		t.Errorf("Expected token from env, got '%s'", cfg.TelegramToken)
	}
	if cfg.GetSchedulerInterval() != 3800*time.Second {
		t.Errorf("Expected scheduler interval 3800s, got %v", cfg.GetSchedulerInterval())
	}
	if cfg.GetCleanupInterval() != 24*time.Hour {
		t.Errorf("Expected cleanup interval 24h, got %v", cfg.GetCleanupInterval())
	}
	if cfg.GetRetention() != 20*24*time.Hour {
		t.Errorf("Expected retention 20 days, got %v", cfg.GetRetention())
	}
	if cfg.GetSendDelay() != time.Second {
		t.Errorf("Expected send delay 1s, got %v", cfg.GetSendDelay())
	}
	if cfg.SummaryMaxLength != 1500 {
		t.Errorf("Expected summary max length 1500, got %d", cfg.SummaryMaxLength)
	}
	if cfg.WorkerCount != 1 {
		t.Errorf("Expected 1 worker, got %d", cfg.WorkerCount)
	}
	if cfg.Port != "8080" {
		t.Errorf("Expected port '8080', got '%s'", cfg.Port)
	}
	if cfg.Version == "" {
		t.Error("Expected version to be set")
	}
}

func TestParseFlagsOverrideEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("PORT", "9000")

	cfg, err := parse([]string{"--port", "9100", "--retention-days", "7", "--db-path", "/tmp/x.db"})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if cfg.Port != "9100" {
		t.Errorf("Expected port '9100', got '%s'", cfg.Port)
	}
	if cfg.RetentionDays != 7 {
		t.Errorf("Expected retention 7, got %d", cfg.RetentionDays)
	}
	if cfg.DBPath != "/tmp/x.db" {
		t.Errorf("Expected db path '/tmp/x.db', got '%s'", cfg.DBPath)
	}
}

func TestParseRequiresToken(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "")
	os.Unsetenv("TELEGRAM_TOKEN")

	if _, err := parse(nil); err == nil {
		t.Error("Expected error when telegram token is missing")
	}
}

func TestParseRejectsInvalidValues(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")

	tests := [][]string{
		{"--worker-count", "0"},
		{"--retention-days=-1"},
		{"--send-delay=-5"},
		{"--summary-max-length", "0"},
	}

	for _, args := range tests {
		if _, err := parse(args); err == nil {
			t.Errorf("Expected error for %v", args)
		}
	}
}
