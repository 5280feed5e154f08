package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/raoulx24/thinning/internal/logging"
	"github.com/raoulx24/thinning/internal/retention"
)

type Config struct {
	Roots     []string        `yaml:"roots"`
	DryRun    bool            `yaml:"dryRun"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	LockFile  string          `yaml:"lockFile"`
}

type RetentionConfig struct {
	MonthlyGapDays   int `yaml:"monthlyGapDays"`
	WeeklyGapDays    int `yaml:"weeklyGapDays"`
	WeeklyWindowDays int `yaml:"weeklyWindowDays"` // relative to the newest backup
	KeepLatest       int `yaml:"keepLatest"`
}

type LoggingConfig struct {
	Verbosity int    `yaml:"verbosity"` // same as the -V count
	Color     string `yaml:"color"`     // "auto", "always", "never"
}

type ScheduleConfig struct {
	Cron string `yaml:"cron"` // standard 5-field spec or @every/@daily
}

// Default returns the built-in configuration.
func Default() *Config {
	p := retention.DefaultPolicy()
	return &Config{
		Retention: RetentionConfig{
			MonthlyGapDays:   p.MonthlyGapDays,
			WeeklyGapDays:    p.WeeklyGapDays,
			WeeklyWindowDays: p.WeeklyWindowDays,
			KeepLatest:       p.KeepLatest,
		},
		Logging: LoggingConfig{
			Color: logging.ColorAuto,
		},
	}
}

// Policy converts the retention section.
func (c *Config) Policy() retention.Policy {
	return retention.Policy{
		MonthlyGapDays:   c.Retention.MonthlyGapDays,
		WeeklyGapDays:    c.Retention.WeeklyGapDays,
		WeeklyWindowDays: c.Retention.WeeklyWindowDays,
		KeepLatest:       c.Retention.KeepLatest,
	}
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Policy().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("retention: %w", err))
	}
	if c.Logging.Verbosity < 0 {
		errs = append(errs, fmt.Errorf("logging: verbosity must not be negative"))
	}
	switch c.Logging.Color {
	case logging.ColorAuto, logging.ColorAlways, logging.ColorNever:
	default:
		errs = append(errs, fmt.Errorf("logging: unknown color mode %q", c.Logging.Color))
	}
	if err := c.ValidateSchedule(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateSchedule checks only the cron spec; an empty spec is valid.
func (c *Config) ValidateSchedule() error {
	if c.Schedule.Cron == "" {
		return nil
	}
	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("schedule: invalid cron %q: %w", c.Schedule.Cron, err)
	}
	return nil
}
