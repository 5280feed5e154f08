package snapshot

import (
	"errors"
	"regexp"
	"time"
)

const dateLayout = "2006-01-02"

var (
	// ErrNotDateName is returned for names not shaped like YYYY-MM-DD.
	ErrNotDateName = errors.New("not a date name")
	// ErrInvalidDate is returned for date-shaped names that are not calendar dates.
	ErrInvalidDate = errors.New("invalid calendar date")
)

// coarse shape only; month 13 or day 39 still match
var dateNamePattern = regexp.MustCompile(`^20[0-9][0-9]-[0-1][0-9]-[0-3][0-9]$`)

// IsDateName reports whether name has the YYYY-MM-DD shape.
func IsDateName(name string) bool {
	return dateNamePattern.MatchString(name)
}

// ParseDateName validates name and returns its day ordinal.
func ParseDateName(name string) (int, error) {
	if !IsDateName(name) {
		return 0, ErrNotDateName
	}
	t, err := time.Parse(dateLayout, name)
	if err != nil {
		return 0, errors.Join(ErrInvalidDate, err)
	}
	return int(t.Unix() / 86400), nil
}
