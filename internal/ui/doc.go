// Package ui implements the mapgrid terminal interface on Bubble Tea.
//
// # Screens
//
// The program moves between three screens:
//
//	map list ──enter──▶ map overview ──enter──▶ floor editor
//	    ▲                   │  ▲                    │
//	    └───────esc─────────┘  └────────esc─────────┘
//
// The map list renders the state.Store snapshot that the background poller
// keeps current. The overview fetches one map with its floor summaries. The
// editor drives a grid.Manager: LoadAsync and SaveAsync hand back tasks that
// are awaited inside tea.Cmds, so the event loop never blocks on the network.
//
// # Editing
//
// Space toggles the cell under the cursor. Edits that differ from the last
// saved state are drawn in the theme's dirty color and counted in the info
// line. s submits every dirty cell as one batch; a failed save keeps the
// edits and shows the server's message with its HTTP status. r reloads the
// floor from the server and u drops all unsaved edits. Leaving the editor or
// quitting with unsaved edits needs a second key press.
//
// # Prompts
//
// Creating and renaming use a bubbles textinput on the status line. A new
// floor is entered as "<name> <width>x<height>" and gets the next free floor
// number. Deletes ask for y/N confirmation.
//
// # Themes
//
// T cycles through the built-in palettes and writes the choice to the prefs
// file together with the last opened map.
package ui
