// Package session drives the lifecycle of one backend search job.
//
// # State Machine
//
//	Idle ──Start ok──────────> Running ──Stop sent──> Stopping ──Stop ok──> Idle
//	Idle ──Poll "process"────> Running                Stopping ──Stop err─> Running
//	Running ──Poll other─────> Idle
//
// Start, Stop and LoadExisting share one in-flight slot (the trigger): while
// one runs the others return ErrBusy and Snapshot().Busy is true. Poll does
// not take the slot and may interleave with any of them.
//
// # Errors
//
//   - *ValidationError: a field format outside 3..7; nothing is sent
//   - ErrBusy, ErrSessionActive, ErrNoSession: refusals, no state change
//   - transport failures: returned wrapped and kept as Snapshot().LastError
//
// A failed or timed out Poll leaves the state exactly as it was.
package session
