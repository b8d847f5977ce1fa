// Package analysis recovers revolution periods from recorded trajectories.
//
// The spectrum of cos(θ(t)) peaks at the revolution frequency, so a run
// that integrated the rates faithfully reports the period it was started
// with:
//
//	periods, err := analysis.Periods(states, times, meta.Bodies)
//	for _, p := range periods {
//	    fmt.Printf("%s %.3f (want %.3f)\n", p.Body, p.Measured, p.Expected)
//	}
//
// Resolution is one bin, n·dt seconds wide in period space, before
// interpolation; record several revolutions of the slowest body.
package analysis
