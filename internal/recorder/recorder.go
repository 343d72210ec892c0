package recorder

import (
	"time"

	"TontineSim/internal/engine"
)

// RunInfo identifies one recorded simulation run.
type RunInfo struct {
	ID        string
	Seed      uint64
	Months    int // month budget
	StartDate time.Time
	Members   int // opening roster size
	Source    string
}

// Recorder persists run history for later analysis. A run is opened with
// BeginRun and closed by the final report.
type Recorder interface {
	engine.Reporter
	BeginRun(info *RunInfo) error
	Close() error
}
