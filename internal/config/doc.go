// Package config loads kickoff's configuration file.
//
// # Resolution Order
//
//  1. Built-in defaults
//  2. The TOML file at the given path, or ~/.config/kickoff/config.toml
//  3. KICKOFF_* environment variables
//
// Command-line flags are applied by the caller on top of the result. A missing
// file is not an error. Blank values fall back to the defaults and every path
// field is tilde-expanded and made absolute.
//
// # Keys
//
//	api_bind     = "127.0.0.1:8899"                     # KICKOFF_API_BIND
//	request_file = "~/.config/kickoff/request.toml"     # KICKOFF_REQUEST_FILE
//	download_dir = "~/Downloads"                        # KICKOFF_DOWNLOAD_DIR
//	log_file     = "~/.local/state/kickoff/kickoff.log" # KICKOFF_LOG_FILE
//	log_level    = "info"                               # KICKOFF_LOG_LEVEL
package config
