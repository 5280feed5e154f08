// Package snapshot turns the children of a backup root into an ordered
// catalog of dated snapshot directories.
package snapshot

import (
	"fmt"
	"strings"
)

// Reason tags recorded on kept snapshots.
const (
	ReasonOldest  = 'o'
	ReasonMonthly = 'm'
	ReasonWeekly  = 'w'
	ReasonLatest  = 'd'
)

// Snapshot represents a single dated backup directory.
type Snapshot struct {
	Name    string // 2020-12-31
	Path    string // /backup/main/2020-12-31
	Ordinal int    // days since 1970-01-01
	Keep    bool
	Reason  string
}

// MarkKeep sets Keep and records tag once.
func (s *Snapshot) MarkKeep(tag rune) {
	s.Keep = true
	if !strings.ContainsRune(s.Reason, tag) {
		s.Reason += string(tag)
	}
}

func (s Snapshot) String() string {
	keep := ""
	if s.Keep {
		keep = "keep"
	}
	return fmt.Sprintf("%s %d %s %s", s.Path, s.Ordinal, keep, s.Reason)
}
