// Package viz draws an orrery in the terminal.
//
// A [Canvas] packs a 2x4 dot grid into each Braille cell. The [Camera]
// orbits the sun and projects world points onto it, and [DrawScene] renders
// every placed geometry of a scene back to front. [Model] is the Bubble Tea
// program that steps the simulation and redraws each frame; [Menu] picks a
// preset before handing over to it.
//
// # Key Bindings
//
//	Space  - Pause/Resume
//	R      - Reset to initial state
//	[ ]    - Replay history
//	Arrows - Orbit the camera
//	+ -    - Zoom
//	T      - Cycle color themes
//	?      - Show help
package viz
