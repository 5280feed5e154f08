// Package fs defines the filesystem abstraction used by thinning.
// It provides the FS interface and the DirEntry type shared across the system.
package fs

// DirEntry is one immediate child of a listed directory.
type DirEntry struct {
	Name      string
	IsDir     bool // true also for a symlink pointing at a directory
	IsSymlink bool
}

// FS lists directories and removes subtrees.
type FS interface {
	ReadDir(path string) ([]DirEntry, error)
	RemoveAll(path string) error
}
