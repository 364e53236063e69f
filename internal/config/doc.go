// Package config loads mapgrid's TOML configuration.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/mapgrid/config.toml (default)
//  3. If the config file doesn't exist, fall back to defaults
//  4. If the file exists but fields are missing/empty, use defaults
//  5. MAPGRID_BASE_URL, when set, replaces base_url
//
// The command line loads a .env file before calling Load, so the variable
// can also live there. A --base-url flag beats all of the above.
//
// # Default Values
//
//   - Config file: ~/.config/mapgrid/config.toml
//   - API base URL: https://localhost:7219
//   - Request timeout: 15s
//   - Log level / format: info / text
//   - State directory: ~/.local/state/mapgrid
//   - TUI log file: <state_dir>/mapgrid.log
//
// # TOML Format
//
//	base_url = "https://localhost:7219"
//	timeout = "15s"
//	log_level = "info"
//	log_format = "text"
//	state_dir = "~/.local/state/mapgrid"
//
// Every field is optional. Tilde expansion is performed on state_dir.
//
// # Error Handling
//
// Load returns errors for:
//   - Path expansion failures (e.g., cannot determine home directory)
//   - File read errors (except os.ErrNotExist, which triggers defaults)
//   - TOML parsing errors
//   - A timeout that is not a positive Go duration
//
// The returned Config is a plain value read once at startup. Nothing in the
// package holds global state.
package config
