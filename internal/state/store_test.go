package state

import (
	"errors"
	"testing"
	"time"
)

func TestStore_UpdateAndSnapshotClone(t *testing.T) {
	var s Store

	status := &Status{
		State:        "running",
		PID:          123,
		Filter:       []string{"ERROR"},
		Categories:   map[string]uint64{"ERROR": 2},
		LinesWritten: 2,
	}

	before := time.Now()
	s.Update(status, nil)

	snap := s.Snapshot()
	if !snap.HasStatus || snap.Status.PID != 123 {
		t.Fatalf("snapshot status = %#v, want pid=123 HasStatus=true", snap.Status)
	}
	if snap.LastUpdated.Before(before) {
		t.Fatalf("LastUpdated = %v, want >= %v", snap.LastUpdated, before)
	}
	if snap.LastError != nil {
		t.Fatalf("LastError = %v, want nil", snap.LastError)
	}

	// Neither the caller's value nor a returned snapshot may alias the store.
	status.Categories["ERROR"] = 99
	snap.Status.Filter[0] = "WARN"
	snap.Status.Categories["ERROR"] = 42
	snap2 := s.Snapshot()
	if snap2.Status.Categories["ERROR"] != 2 {
		t.Fatalf("Categories[ERROR] = %d, want 2", snap2.Status.Categories["ERROR"])
	}
	if snap2.Status.Filter[0] != "ERROR" {
		t.Fatalf("Filter[0] = %q, want ERROR", snap2.Status.Filter[0])
	}
}

func TestStore_UpdateErrorKeepsPreviousData(t *testing.T) {
	var s Store

	s.Update(&Status{PID: 1, LinesRead: 10}, nil)
	prev := s.Snapshot()

	origErr := errors.New("boom")
	s.Update(nil, origErr)
	s.Update(nil, origErr)

	snap := s.Snapshot()
	if snap.HasStatus != prev.HasStatus || snap.Status.LinesRead != prev.Status.LinesRead {
		t.Fatalf("status changed on error: got %#v want %#v", snap.Status, prev.Status)
	}
	if !errors.Is(snap.LastError, origErr) {
		t.Fatalf("LastError = %v, want wrapping %v", snap.LastError, origErr)
	}
	if snap.ConsecutiveFailures != 2 || !snap.IsOffline() {
		t.Fatalf("ConsecutiveFailures = %d IsOffline = %v, want 2 and true", snap.ConsecutiveFailures, snap.IsOffline())
	}

	s.Update(&Status{PID: 1}, nil)
	if snap := s.Snapshot(); snap.ConsecutiveFailures != 0 || snap.IsOffline() {
		t.Fatalf("failures not reset after success: %d", snap.ConsecutiveFailures)
	}
}

func TestStatus_Running(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{"idle", false},
		{"running", true},
		{"draining", true},
		{"stopped", false},
	}
	for _, tt := range tests {
		if got := (Status{State: tt.state}).Running(); got != tt.want {
			t.Errorf("Running(%q) = %v, want %v", tt.state, got, tt.want)
		}
	}
}
