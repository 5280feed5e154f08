package worker

import (
	"time"
)

// Job requests one thinning pass over all configured roots.
type Job struct {
	Trigger time.Time
}
