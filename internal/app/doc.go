// Package app is the composition root of logcollector.
//
// # Overview
//
// The package wires configuration, the collection controller, metrics, the
// status API, the crash handler and the terminal monitor into the three
// commands the CLI exposes: run, monitor and status. Domain behavior lives
// in the collector, sink, source and tags packages; app only connects them.
//
// # Architecture
//
// Collect (the run command) follows a fixed start-up order:
//
//  1. Load the config file (TOML, or YAML by extension) and apply
//     command-line overrides on top of it
//  2. Create the process crash.Handler and a metrics.Recorder
//  3. Build a collector.Controller and apply filter, colors, background
//     and clean_cache through its setters
//  4. Trap SIGINT, SIGTERM and SIGHUP; any of them notifies the crash
//     handler, which stops the loop
//  5. Serve the status API, unless disabled
//  6. Start the loop with a host and block until it stops
//
// Monitor (the monitor command) polls the status API into a state.Store and
// runs the bubbletea UI over it. The UI tails the sink file directly.
//
// PrintStatus (the status command) fetches one status document and prints
// it as indented JSON.
//
// # Components
//
//   - app.go: Options, command-line overrides and Collect
//   - host.go: the collector.Host handed to the controller
//   - monitor.go: Monitor and PrintStatus
//   - poller.go: background status polling with exponential backoff
//
// # Data Flow
//
//	┌──────────────┐
//	│  Collect()   │
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()            Read config, apply overrides
//	       ├─────> newController()          Controller + setters
//	       ├─────> crash.Handler.Watch()    Signals become a crash
//	       ├─────> statusapi.NewServer()    Optional; failure is logged
//	       └─────> Controller.Start(host)   Blocks in Wait()
//
//	Host callbacks during Start:
//	┌─────────────────────────────────────────┐
//	│ host.SinkPath(colored, clean)           │
//	│  ├─> config.PurgeSinks()  (clean only)  │
//	│  └─> config.ResolveSinkPath(colored)    │
//	│ host.Subscribe(listener)                │
//	│  └─> crash.Handler.Subscribe()          │
//	└─────────────────────────────────────────┘
//
// # Clean Cache
//
// The sink is truncated each time a loop opens it, so a run never appends
// to an earlier document. With clean_cache set the host also removes the
// sink files of both output modes before the path is resolved, leaving no
// stale logcat.txt behind a colored run or the reverse.
//
// # Error Handling
//
// Fatal errors (returned from Collect):
//   - Config file unreadable or invalid
//   - Unknown filter name or more colors than categories
//   - Sink path resolution or purge failure
//   - The loop's terminal error (spawn, read, sink open or write, panic)
//
// Recoverable errors (logged, collection continues):
//   - Status API bind failure: collection runs without the API
//   - Status API serve errors after start
//   - Monitor poll failures, which back off up to 30s
//
// A panic inside the loop is logged, notifies the crash handler and ends
// the run with collector.ErrPanic once the source and sink are released.
//
// # Configuration
//
// Options select the config and prefs files, poll interval, log verbosity
// and log output. Overrides win over the file; nil pointers and empty
// slices leave the file value in place. NoAPI disables the status API.
//
// # Usage Example
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	opts := app.Options{
//		Verbosity: 1,
//		Overrides: app.Overrides{
//			Filter: []string{"WARN", "ERROR"},
//			Colors: []string{"", "", "", "#FFA500", "#FF0000"},
//		},
//	}
//	if err := app.Collect(ctx, opts); err != nil {
//		log.Fatalf("collect: %v", err)
//	}
//
// # Dependencies
//
//   - collector: the controller and loop
//   - config: config file, sink path resolution and purge
//   - crash: process-wide crash notification
//   - metrics: Prometheus recorder behind /metrics
//   - statusapi: status server and client
//   - state, ui, prefs: the terminal monitor
package app
