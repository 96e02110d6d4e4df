// Package app provides the orchestration layer for the kickoff application.
//
// # Overview
//
// This package wires together configuration, logging, the timetable client,
// the session controller, the request file watcher and the UI. It is the
// composition root where all dependencies are initialized and connected.
//
// # Startup
//
//  1. Load ~/.config/kickoff/config.toml, then KICKOFF_* environment overrides
//  2. Open the JSON log file (the terminal belongs to the UI)
//  3. Create the timetable client, the shared state.Store and the controller
//  4. Load the request file; a broken file is logged, not fatal
//  5. Check status once with data, so a search that was already running
//     shows up with its tournament, teams and day window
//  6. Run the poller, the request watcher and the TUI under one errgroup
//
// # Data Flow
//
//	┌──────────────┐
//	│   Run()      │ Initialize everything
//	└──────┬───────┘
//	       │
//	       ├─────> config.Load()        Read config + env
//	       ├─────> logging.Open()       JSON log file
//	       ├─────> timetable.NewClient() HTTP client
//	       ├─────> session.New()        Controller over state.Store
//	       ├─────> request.NewSource()  Request file
//	       ├─────> ctrl.Poll(ctx, true) Resume a running search
//	       └─────> errgroup
//	                ├─> RunPoller()     Poll every 2s
//	                ├─> source.Watch()  Reload request on change
//	                └─> program.Run()   TUI (blocks)
//
// # Polling Behavior
//
// The poller calls Controller.Poll without data at a fixed cadence (default
// 2 seconds). The next call is scheduled after the previous one completes,
// whether it succeeded or not; polling stops only when the context ends.
// Failures leave the session untouched and are logged once per streak at warn
// level, then at debug level until a poll succeeds again.
//
// # Shutdown
//
// Quitting the UI cancels the shared context, which stops the poller and the
// watcher. A signal cancels the context from the outside and the UI exits in
// turn.
//
// # Error Handling
//
// Fatal errors (returned from Run):
//   - Config file unreadable or invalid
//   - Log file cannot be opened
//   - Invalid api_bind
//   - The UI failing to run
//
// Recoverable errors (logged, the app keeps running):
//   - Status poll failures
//   - Request file parse errors
//   - Request watcher failures
package app
