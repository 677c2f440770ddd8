package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath     string
	ConfigPath string

	// Telegram
	TelegramToken string

	// Relay behaviour
	SchedulerInterval int
	CleanupInterval   int
	RetentionDays     int
	SendDelayMs       int
	SummaryMaxLength  int
	WorkerCount       int

	// HTTP
	Port         string
	APIAccessKey string
	UserAgent    string

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}

func (c *Cfg) GetSchedulerInterval() time.Duration {
	return time.Duration(c.SchedulerInterval) * time.Second
}

func (c *Cfg) GetCleanupInterval() time.Duration {
	return time.Duration(c.CleanupInterval) * time.Second
}

func (c *Cfg) GetSendDelay() time.Duration {
	return time.Duration(c.SendDelayMs) * time.Millisecond
}

func (c *Cfg) GetRetention() time.Duration {
	return time.Duration(c.RetentionDays) * 24 * time.Hour
}
