// Package logtail reads the tail of kickoff's own log file for the log view.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries while scanning the file once,
// so memory stays O(maxLines) no matter how large the file has grown. A
// missing file yields no lines and no error: the log is created lazily.
//
// # Decoding
//
// Log lines are zerolog JSON objects. Parse lifts the well-known keys (time,
// level, component, message, err) into Entry fields and keeps everything else
// as sorted key/value text for display. Lines that are not JSON, such as a
// panic trace appended by the runtime, come back as a bare message.
//
// Styling is left to the UI.
package logtail
