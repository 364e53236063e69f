// Package logtail reads the tail of the mapgrid log file for the logs command.
//
// # Reading
//
// Read keeps a ring buffer of maxLines entries and scans the file once, so
// memory stays proportional to the requested tail rather than the file size.
// Lines come back oldest first. A missing file is not an error; the log is
// only created once the TUI has run.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// # Levels
//
// The log is written by logrus in either text or JSON format. LineLevel
// recognizes both:
//
//	time="2026-10-18T09:12:03Z" level=warning msg="map list poll failed"
//	{"level":"warning","msg":"map list poll failed","time":"..."}
//
// Filter drops lines below a minimum severity and keeps lines it cannot
// classify, such as wrapped stack output.
//
// # Colors
//
// Colorize paints warning and error lines with lipgloss when the output is a
// terminal. lipgloss strips the styling on its own for non-TTY writers.
package logtail
