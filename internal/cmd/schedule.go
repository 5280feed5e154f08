package cmd

import (
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/raoulx24/thinning/internal/config"
	"github.com/raoulx24/thinning/internal/logging"
	"github.com/raoulx24/thinning/internal/mailbox"
	"github.com/raoulx24/thinning/internal/retention"
	"github.com/raoulx24/thinning/internal/worker"
)

var errNoSchedule = errors.New("no cron schedule given (use --cron or schedule.cron in the config file)")

func newScheduleCommand(opts *options) *cobra.Command {
	var (
		spec string
		now  bool
	)

	cmd := &cobra.Command{
		Use:   "schedule [DIRS...]",
		Short: "Thin backup dirs repeatedly on a cron schedule",
		Long: `Run the thinning pass on a cron schedule until interrupted.

Passes never overlap: triggers that fire while a pass is running collapse
into one follow-up pass. When a config file is used, SIGHUP reloads it.`,
		Example: `  thinning schedule --cron "30 3 * * *" -V /backup/main
  thinning schedule -c /etc/thinning.yaml --now`,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolve := func() (*config.Config, error) {
				cfg, err := opts.resolve(cmd, args)
				if err != nil {
					return nil, err
				}
				if cmd.Flags().Changed("cron") {
					cfg.Schedule.Cron = spec
				}
				if cfg.Schedule.Cron == "" {
					return nil, errNoSchedule
				}
				return cfg, cfg.ValidateSchedule()
			}

			cfg, err := resolve()
			if err != nil {
				return err
			}

			log := newLogger(cmd, cfg)
			engine := retention.New(cfg.Policy())
			w := worker.New(settingsFor(cfg, engine, log), log, mailbox.New[worker.Job]())
			if err := w.Schedule(cfg.Schedule.Cron); err != nil {
				return err
			}
			log.Info("scheduled thinning of %d dirs at %q", len(cfg.Roots), cfg.Schedule.Cron)

			if opts.configFile != "" {
				go reloadOnHangup(cmd, w, engine, resolve)
			}
			if now {
				w.Trigger()
			}

			w.Start(cmd.Context())
			return nil
		},
	}

	cmd.Flags().StringVar(&spec, "cron", "", `cron spec, e.g. "30 3 * * *" or "@daily"`)
	cmd.Flags().BoolVar(&now, "now", false, "Run one pass immediately at startup")

	return cmd
}

func settingsFor(cfg *config.Config, engine *retention.Engine, log logging.Logger) worker.Settings {
	return worker.Settings{
		Roots:    cfg.Roots,
		LockFile: cfg.LockFile,
		Driver:   newDriver(cfg, engine, log),
	}
}

// reloadOnHangup re-reads the config on SIGHUP. The schedule itself is kept.
func reloadOnHangup(cmd *cobra.Command, w *worker.Worker, engine *retention.Engine, resolve func() (*config.Config, error)) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP)
	defer signal.Stop(sigCh)

	ctx := cmd.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-sigCh:
		}

		if err := reload(cmd, w, engine, resolve); err != nil {
			newLogger(cmd, config.Default()).Error("config reload failed: %v", err)
		}
	}
}

// reload applies a freshly resolved config to the running worker and engine.
func reload(cmd *cobra.Command, w *worker.Worker, engine *retention.Engine, resolve func() (*config.Config, error)) error {
	cfg, err := resolve()
	if err != nil {
		return err
	}
	log := newLogger(cmd, cfg)
	engine.UpdateConfig(cfg.Policy())
	w.UpdateConfig(settingsFor(cfg, engine, log))
	log.Info("config reloaded")
	return nil
}
