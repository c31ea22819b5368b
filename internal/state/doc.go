// Package state holds the collector status shared between the poller and the
// monitor UI.
//
// # Overview
//
// Status is what a running collector reports about itself: loop state, sink
// path and line counters. The monitor polls it over the status API and keeps
// the latest copy in a Store.
//
//	Producer (Poller):             Consumer (UI):
//	┌────────────────┐            ┌─────────────────┐
//	│ FetchStatus()  │            │                 │
//	│      ↓         │            │                 │
//	│ store.Update() │───────────→│ store.Snapshot()│
//	│      ↓         │  (mutex)   │      ↓          │
//	│  repeat...     │            │  render UI      │
//	└────────────────┘            └─────────────────┘
//
// # Update Semantics
//
// A successful Update replaces the status and clears the error. A failed
// Update keeps the previous status, records the error and bumps
// ConsecutiveFailures, so the UI can keep showing the last known counters
// while flagging the collector as offline.
//
// Both Update and Snapshot copy the status deeply (filter slice and category
// map), so neither side can mutate what the other holds.
//
// The zero Store is ready to use.
package state
