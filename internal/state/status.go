package state

import "time"

// Status is the collector's self-report, served on /api/status and polled by
// the monitor. It carries counters only, never log content.
type Status struct {
	State         string            `json:"state"`
	PID           int               `json:"pid"`
	Command       string            `json:"command"`
	SinkPath      string            `json:"sink_path"`
	Colored       bool              `json:"colored"`
	Filter        []string          `json:"filter,omitempty"`
	LinesRead     uint64            `json:"lines_read"`
	LinesWritten  uint64            `json:"lines_written"`
	LinesDropped  uint64            `json:"lines_dropped"`
	BytesWritten  int64             `json:"bytes_written"`
	Clears        uint64            `json:"clears"`
	ClearFailures uint64            `json:"clear_failures"`
	Categories    map[string]uint64 `json:"categories,omitempty"`
	StartedAt     time.Time         `json:"started_at,omitempty"`
	LastLineAt    time.Time         `json:"last_line_at,omitempty"`
	LastError     string            `json:"last_error,omitempty"`
}

// Clone returns a deep copy of s.
func (s Status) Clone() Status {
	dup := s
	if s.Filter != nil {
		dup.Filter = append([]string(nil), s.Filter...)
	}
	if s.Categories != nil {
		dup.Categories = make(map[string]uint64, len(s.Categories))
		for k, v := range s.Categories {
			dup.Categories[k] = v
		}
	}
	return dup
}

// Running reports whether the collection loop is still active.
func (s Status) Running() bool {
	return s.State == "running" || s.State == "draining"
}
