package fs

import (
	"os"
	"path/filepath"
)

// OSFS is the concrete implementation of FS backed by the local OS filesystem.
type OSFS struct{}

func New() *OSFS {
	return &OSFS{}
}

func (o *OSFS) ReadDir(path string) ([]DirEntry, error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}

	out := make([]DirEntry, 0, len(entries))
	for _, ent := range entries {
		de := DirEntry{
			Name:      ent.Name(),
			IsDir:     ent.IsDir(),
			IsSymlink: ent.Type()&os.ModeSymlink != 0,
		}
		if de.IsSymlink {
			// follow the link so IsDir reports the target kind
			if st, err := os.Stat(filepath.Join(path, ent.Name())); err == nil {
				de.IsDir = st.IsDir()
			}
		}
		out = append(out, de)
	}
	return out, nil
}

func (o *OSFS) RemoveAll(path string) error {
	return os.RemoveAll(path)
}
