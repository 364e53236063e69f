// Package app wires configuration, logging, the map API client, the map list
// poller and the terminal UI together.
//
// Run is the entry point for the tui command. It opens the log file from the
// config's state directory, builds a transport and client, seeds a
// state.Store with one synchronous refresh, and starts a background poller
// before handing control to package ui.
//
// # Polling
//
// The poller calls ListMaps every PollEvery interval. Each consecutive failure
// doubles the wait, capped at 30 seconds:
//
//	failures: 0    1    2    3     4+
//	wait:     2s   4s   8s   16s   30s   (2s base)
//
// The store keeps the last good list while the API is unreachable, and the UI
// shows the offline banner once two polls in a row have failed.
package app
