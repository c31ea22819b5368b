// Package ui is the terminal monitor for a running collector.
//
// The monitor is a single Bubble Tea view. Two header lines show the loop
// state badge and counters polled from the status API (via a state.Store
// that the app package keeps fresh), plus the sink path being tailed. Below
// them a viewport shows the last lines of the sink file, read directly from
// disk with logtail.Read. Lines from colored sinks are unwrapped and drawn in
// their category color.
//
// # Layout
//
//	┌───────────────────────────────────────────────┐
//	│ logcollector  RUNNING  Read: 1,204  ...       │ header (state, counters)
//	│ sink ~/.local/share/.../logcat.html  FOLLOW   │ header (sink, follow)
//	├───────────────────────────────────────────────┤
//	│ 10-18 12:00:01.123 E/Thing( 42): boom         │ viewport (sink tail)
//	│ ...                                           │
//	├───────────────────────────────────────────────┤
//	│ f:Pause  j/k:Scroll  ...  T:Dracula           │ command bar
//	└───────────────────────────────────────────────┘
//
// Every tick re-reads the store snapshot and the tail. The view follows the
// end of the file until the user scrolls up; f or G resumes following.
// T cycles themes and saves the choice to the prefs file.
package ui
