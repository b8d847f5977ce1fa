// Package control provides input sources for the simulation host.
//
// The only one is [None], a pass-through that feeds zeros of the
// system's control dimension every step.
package control
