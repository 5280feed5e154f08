package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/raoulx24/thinning/internal/config"
)

var errNoDirs = errors.New("please specify at least one directory")

type options struct {
	configFile string
	dummy      bool
	verbose    int
	keepLatest int
	keepWeekly int
	monthlyGap int
	weeklyGap  int
	lockFile   string
	color      string
}

func (o *options) register(cmd *cobra.Command) {
	def := config.Default()
	f := cmd.PersistentFlags()

	f.StringVarP(&o.configFile, "config", "c", "", "YAML config file")
	f.BoolVarP(&o.dummy, "dummy", "0", false, "Dummy mode. Do not remove anything. Nothing changes on disk.")
	f.CountVarP(&o.verbose, "verbose", "V", "Be more verbose. May be specified multiple times.")
	f.IntVarP(&o.keepLatest, "keep-latest", "K", def.Retention.KeepLatest, "Always keep the latest N backups, regardless of their date.")
	f.IntVarP(&o.keepWeekly, "keep-weekly", "W", def.Retention.WeeklyWindowDays, "Keep weekly backups for last N days relative to latest backup.")
	f.IntVar(&o.monthlyGap, "monthly-gap", def.Retention.MonthlyGapDays, "Keep at least one backup every N days.")
	f.IntVar(&o.weeklyGap, "weekly-gap", def.Retention.WeeklyGapDays, "Gap in days between weekly backups.")
	f.StringVar(&o.lockFile, "lock-file", "", "Hold an exclusive lock on this file while thinning")
	f.StringVar(&o.color, "color", def.Logging.Color, "Color output: auto, always or never")
}

// resolve builds the effective config: defaults, then the config file, then
// explicitly set flags, then positional dirs.
func (o *options) resolve(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.Default()
	if o.configFile != "" {
		loaded, err := config.Load(o.configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("dummy") {
		cfg.DryRun = o.dummy
	}
	if flags.Changed("verbose") {
		cfg.Logging.Verbosity = o.verbose
	}
	if flags.Changed("keep-latest") {
		cfg.Retention.KeepLatest = o.keepLatest
	}
	if flags.Changed("keep-weekly") {
		cfg.Retention.WeeklyWindowDays = o.keepWeekly
	}
	if flags.Changed("monthly-gap") {
		cfg.Retention.MonthlyGapDays = o.monthlyGap
	}
	if flags.Changed("weekly-gap") {
		cfg.Retention.WeeklyGapDays = o.weeklyGap
	}
	if flags.Changed("lock-file") {
		cfg.LockFile = o.lockFile
	}
	if flags.Changed("color") {
		cfg.Logging.Color = o.color
	}
	if len(args) > 0 {
		cfg.Roots = args
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if len(cfg.Roots) == 0 {
		return nil, errNoDirs
	}
	return cfg, nil
}
