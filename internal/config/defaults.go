package config

import "time"

// ApplyDefaults fills zero values with the stock archiving policy.
func (c *Config) ApplyDefaults() {
	if c.Source.Suffix == "" {
		c.Source.Suffix = DefaultSuffix
	}
	if c.Source.Watch.Mode == "" {
		c.Source.Watch.Mode = "off"
	}
	if c.Source.Watch.PollInterval == 0 {
		c.Source.Watch.PollInterval = time.Minute
	}
	if c.Source.Watch.DebounceWindow == 0 {
		c.Source.Watch.DebounceWindow = 30 * time.Second
	}
	if c.Policy.MaxSize == 0 {
		c.Policy.MaxSize = DefaultMaxSize
	}
	if c.Policy.MinSize == 0 {
		c.Policy.MinSize = DefaultMinSize
	}
	if c.Policy.AgeCutoff == 0 {
		c.Policy.AgeCutoff = DefaultAgeCutoff
	}
	if c.Encryption.BufferSize == 0 {
		c.Encryption.BufferSize = DefaultBufferSize
	}
	if c.Schedule.Cron == "" {
		c.Schedule.Cron = DefaultCron
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
}
