package snapshot

import (
	"errors"
	"path/filepath"
	"sort"

	"github.com/raoulx24/thinning/internal/fs"
)

// ErrEmptyCatalog means a root holds no dated backup directories.
var ErrEmptyCatalog = errors.New("no backup dirs")

// BuildCatalog filters the children of root down to real directories with
// valid date names, sorted oldest first.
func BuildCatalog(root string, entries []fs.DirEntry) ([]Snapshot, error) {
	var snaps []Snapshot
	for _, ent := range entries {
		if !ent.IsDir || ent.IsSymlink {
			continue
		}
		ord, err := ParseDateName(ent.Name)
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Name:    ent.Name,
			Path:    filepath.Join(root, ent.Name),
			Ordinal: ord,
		})
	}

	if len(snaps) == 0 {
		return nil, ErrEmptyCatalog
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Name < snaps[j].Name
	})
	return snaps, nil
}
