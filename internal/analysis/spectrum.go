package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

var (
	ErrTooShort   = errors.New("analysis: too few samples")
	ErrNoPeak     = errors.New("analysis: signal has no periodic component")
	ErrNonUniform = errors.New("analysis: samples are not evenly spaced")
)

const minSamples = 8

// Spectrum returns the magnitudes of the non-negative frequency bins of
// the discrete Fourier transform of data.
func Spectrum(data []float64) []float64 {
	coeffs := fft.FFTReal(data)
	ps := make([]float64, len(coeffs)/2+1)
	for i := range ps {
		ps[i] = cmplx.Abs(coeffs[i])
	}
	return ps
}

// DominantPeriod estimates the revolution period of an angle sampled every
// dt. It transforms cos(angle), picks the strongest bin above zero and
// refines it by fitting a parabola through the peak and its neighbours.
func DominantPeriod(angles []float64, dt float64) (float64, error) {
	n := len(angles)
	if n < minSamples {
		return 0, fmt.Errorf("%w: %d", ErrTooShort, n)
	}

	signal := make([]float64, n)
	mean := 0.0
	for i, a := range angles {
		signal[i] = math.Cos(a)
		mean += signal[i]
	}
	mean /= float64(n)
	for i := range signal {
		signal[i] -= mean
	}

	ps := Spectrum(signal)
	peak := 1
	for k := 2; k < len(ps); k++ {
		if ps[k] > ps[peak] {
			peak = k
		}
	}
	if ps[peak] < 1e-9*float64(n) {
		return 0, ErrNoPeak
	}

	offset := 0.0
	if peak+1 < len(ps) {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if d := a - 2*b + c; d != 0 {
			offset = 0.5 * (a - c) / d
		}
	}
	return float64(n) * dt / (float64(peak) + offset), nil
}

// BodyPeriod compares the period measured from a trajectory with the one
// implied by the body's initial rate.
type BodyPeriod struct {
	Body     string
	Measured float64
	Expected float64
}

// Periods measures every body's period from a stored trajectory whose
// states hold len(bodies) angles followed by as many rates.
func Periods(states [][]float64, times []float64, bodies []string) ([]BodyPeriod, error) {
	if len(states) < minSamples || len(times) != len(states) {
		return nil, fmt.Errorf("%w: %d states, %d times", ErrTooShort, len(states), len(times))
	}
	dt := times[1] - times[0]
	for i := 2; i < len(times); i++ {
		if math.Abs(times[i]-times[i-1]-dt) > 1e-6*dt {
			return nil, fmt.Errorf("%w: step %d is %g, first is %g", ErrNonUniform, i, times[i]-times[i-1], dt)
		}
	}

	n := len(bodies)
	out := make([]BodyPeriod, 0, n)
	angles := make([]float64, len(states))
	for b, name := range bodies {
		for i, x := range states {
			if len(x) < 2*n {
				return nil, fmt.Errorf("analysis: state %d has %d entries for %d bodies", i, len(x), n)
			}
			angles[i] = x[b]
		}
		measured, err := DominantPeriod(angles, dt)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		expected := math.Inf(1)
		if rate := states[0][n+b]; rate != 0 {
			expected = 2 * math.Pi / math.Abs(rate)
		}
		out = append(out, BodyPeriod{Body: name, Measured: measured, Expected: expected})
	}
	return out, nil
}
