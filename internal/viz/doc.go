// Package viz draws a running world in the terminal.
//
// [Model] is a Bubble Tea program that steps a world at a fixed frame rate
// and renders it on a braille [Canvas], next to a panel with step
// statistics and an energy graph.
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Rebuild the scene
//	+/-   - Zoom
//	T     - Cycle colour themes
//	?     - Show help overlay
//	Q     - Quit
package viz
