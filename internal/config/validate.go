package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
)

// Validate checks the fields a sweep depends on. The passphrase is not
// checked here; a missing one fails the encryption step at run time.
func (c *Config) Validate() error {
	var errs []error

	if c.Source.Path == "" {
		errs = append(errs, errors.New("source.path is required"))
	}
	if c.Destination.Target == "" {
		errs = append(errs, errors.New("destination.target is required"))
	}
	if c.Destination.Completed == "" {
		errs = append(errs, errors.New("destination.completed is required"))
	}
	if c.Policy.MinSize <= 0 || c.Policy.MaxSize <= 0 {
		errs = append(errs, errors.New("policy sizes must be positive"))
	} else if c.Policy.MinSize > c.Policy.MaxSize {
		errs = append(errs, fmt.Errorf("policy.minSize %s exceeds policy.maxSize %s", c.Policy.MinSize, c.Policy.MaxSize))
	}
	if c.Policy.AgeCutoff <= 0 {
		errs = append(errs, errors.New("policy.ageCutoff must be positive"))
	}
	if c.Encryption.BufferSize <= 0 || c.Encryption.BufferSize%16 != 0 {
		errs = append(errs, fmt.Errorf("encryption.bufferSize must be a positive multiple of 16, got %d", c.Encryption.BufferSize))
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		errs = append(errs, fmt.Errorf("schedule.cron: %w", err))
	}
	switch c.Source.Watch.Mode {
	case "off", "auto", "poll", "fsnotify":
	default:
		errs = append(errs, fmt.Errorf("source.watch.mode: unknown mode %q", c.Source.Watch.Mode))
	}

	return errors.Join(errs...)
}
