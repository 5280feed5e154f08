// Package thinning removes obsolete backup dirs from one or more backup roots.
package thinning

import (
	"errors"
	"fmt"

	"github.com/raoulx24/thinning/internal/fs"
	"github.com/raoulx24/thinning/internal/logging"
	"github.com/raoulx24/thinning/internal/retention"
	"github.com/raoulx24/thinning/internal/snapshot"
)

// Counters accumulate across all roots of one run.
type Counters struct {
	Total   int
	Kept    int
	Removed int
}

func (c Counters) String() string {
	return fmt.Sprintf("%d dirs removed, %d dirs kept, %d dirs total", c.Removed, c.Kept, c.Total)
}

// Driver thins backup roots sequentially.
type Driver struct {
	fs        fs.FS
	retention *retention.Engine
	log       logging.Logger
	dryRun    bool
}

// New creates a driver. A nil filesystem means the local OS filesystem.
func New(filesystem fs.FS, r *retention.Engine, log logging.Logger, dryRun bool) *Driver {
	if filesystem == nil {
		filesystem = fs.New()
	}
	return &Driver{
		fs:        filesystem,
		retention: r,
		log:       log,
		dryRun:    dryRun,
	}
}

// Precheck lists every root so an unreadable one fails the run before
// anything is deleted.
func (d *Driver) Precheck(roots []string) error {
	for _, root := range roots {
		if _, err := d.fs.ReadDir(root); err != nil {
			return fmt.Errorf("listing %s: %w", root, err)
		}
	}
	return nil
}

// Run prechecks all roots, then thins them in order.
func (d *Driver) Run(roots []string, c *Counters) error {
	if err := d.Precheck(roots); err != nil {
		return err
	}
	for _, root := range roots {
		if _, err := d.ThinRoot(root, c); err != nil {
			return err
		}
	}
	return nil
}

// ThinRoot tags and removes the obsolete backups directly under root and
// returns the tagged catalog. A root without backups is reported and yields
// a nil catalog and no error.
func (d *Driver) ThinRoot(root string, c *Counters) ([]snapshot.Snapshot, error) {
	d.log.Info("Processing dir %s", root)

	entries, err := d.fs.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", root, err)
	}

	snaps, err := snapshot.BuildCatalog(root, entries)
	if errors.Is(err, snapshot.ErrEmptyCatalog) {
		d.log.Warn("Directory %s does not contain any backup dirs.", root)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snaps = d.retention.Tag(snaps)

	for _, s := range snaps {
		d.log.Trace("%s", s)
	}

	for _, s := range snaps {
		c.Total++
		if s.Keep {
			d.log.Debug("keeping  %s (%s)", s.Path, s.Reason)
			c.Kept++
			continue
		}
		d.log.Info("removing %s", s.Path)
		if !d.dryRun {
			if err := d.fs.RemoveAll(s.Path); err != nil {
				return snaps, fmt.Errorf("removing %s: %w", s.Path, err)
			}
		}
		c.Removed++
	}

	return snaps, nil
}
