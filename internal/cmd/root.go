package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/raoulx24/thinning/internal/config"
	"github.com/raoulx24/thinning/internal/filelock"
	"github.com/raoulx24/thinning/internal/logging"
	"github.com/raoulx24/thinning/internal/retention"
	"github.com/raoulx24/thinning/internal/thinning"
)

// Version is injected at build time via -ldflags
var Version = "0.1.3"

const longHelp = `Remove obsolete backup dirs from a set of daily incremental backups.

This tool finds all subdirectories under the given DIR(S) which match the
pattern YYYY-MM-DD (ISO 8601 date) and removes all obsolete subdirs.
All subdirs matching the pattern are deleted, except:
- (d) Daily: The latest 30 backups are never deleted
             (can be configured with --keep-latest).
- (w) Weekly: The weekly backups in the latest 90 days since the latest backup
              are never deleted (can be configured with --keep-weekly).
- (m) Monthly: At least one backup every 28 days is kept.
- (o) Oldest: The oldest backup is never deleted.

- The current date and the filesystem date are not taken into account.
  Just the directory names are inspected.
- Subdirs not matching the YYYY-MM-DD pattern are ignored and are not deleted.

(The characters in parentheses indicate the reason to keep a subdirectory when
verbosity level 2 (-VV) is specified.)`

const examples = `  Check what would be deleted, without actually deleting it:
  thinning -0V /backup/main

  Delete obsolete backup dirs:
  thinning -V /backup/main`

// errReported marks an error that has already been printed.
type errReported struct{ error }

func (e errReported) Unwrap() error { return e.error }

// IsReported reports whether err was already shown to the user.
func IsReported(err error) bool {
	var r errReported
	return errors.As(err, &r)
}

// NewRootCommand creates and returns the root cobra command for thinning
func NewRootCommand() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:     "thinning [OPTIONS] DIRS...",
		Short:   "Remove obsolete backup dirs",
		Long:    longHelp,
		Example: examples,
		Version: Version,
		Args:    cobra.ArbitraryArgs,
		// errors are printed by the caller
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd, args)
			if err != nil {
				return err
			}
			return runOnce(cmd, cfg)
		},
	}

	opts.register(cmd)
	cmd.AddCommand(newScheduleCommand(opts))

	return cmd
}

func newLogger(cmd *cobra.Command, cfg *config.Config) *logging.Console {
	return logging.NewConsole(cmd.OutOrStdout(), cfg.Logging.Verbosity, cfg.Logging.Color).
		WithErrors(cmd.ErrOrStderr())
}

func newDriver(cfg *config.Config, engine *retention.Engine, log logging.Logger) *thinning.Driver {
	return thinning.New(nil, engine, log, cfg.DryRun)
}

// runOnce thins every root once and prints the summary, even after an error.
func runOnce(cmd *cobra.Command, cfg *config.Config) error {
	log := newLogger(cmd, cfg)
	driver := newDriver(cfg, retention.New(cfg.Policy()), log)

	var c thinning.Counters
	err := filelock.WithLock(cfg.LockFile, func() error {
		return driver.Run(cfg.Roots, &c)
	})
	if err != nil {
		log.Error("%v", err)
	}

	log.Info("--")
	log.Info("%s", c)

	if err != nil {
		return errReported{err}
	}
	return nil
}
