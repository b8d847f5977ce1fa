package metrics

import (
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
)

// PhaseError is the largest deviation of any integrated angle from the
// closed form θ0 + ω0·t, with θ0 and ω0 taken from the first observation.
// The state layout is n angles followed by n rates.
type PhaseError struct {
	name     string
	theta0   []float64
	omega0   []float64
	t0       float64
	maxError float64
}

func NewPhaseError() *PhaseError {
	return &PhaseError{name: "phase_error"}
}

func (p *PhaseError) Name() string { return p.name }

func (p *PhaseError) Observe(x dynamo.State, u dynamo.Control, t float64) {
	n := len(x) / 2
	if p.theta0 == nil {
		p.theta0 = append([]float64(nil), x[:n]...)
		p.omega0 = append([]float64(nil), x[n:2*n]...)
		p.t0 = t
		return
	}
	for i := 0; i < n && i < len(p.theta0); i++ {
		want := p.theta0[i] + p.omega0[i]*(t-p.t0)
		p.maxError = math.Max(p.maxError, math.Abs(x[i]-want))
	}
}

func (p *PhaseError) Value() float64 { return p.maxError }

func (p *PhaseError) Reset() {
	p.theta0 = nil
	p.omega0 = nil
	p.t0 = 0
	p.maxError = 0
}

// RateDrift is the largest change of any angular rate from its first
// observed value. Rates are constants of motion, so anything above zero
// is a defect in the model or the integrator.
type RateDrift struct {
	name     string
	omega0   []float64
	maxDrift float64
}

func NewRateDrift() *RateDrift {
	return &RateDrift{name: "rate_drift"}
}

func (r *RateDrift) Name() string { return r.name }

func (r *RateDrift) Observe(x dynamo.State, u dynamo.Control, t float64) {
	n := len(x) / 2
	if r.omega0 == nil {
		r.omega0 = append([]float64(nil), x[n:2*n]...)
		return
	}
	for i := 0; i < n && i < len(r.omega0); i++ {
		r.maxDrift = math.Max(r.maxDrift, math.Abs(x[n+i]-r.omega0[i]))
	}
}

func (r *RateDrift) Value() float64 { return r.maxDrift }

func (r *RateDrift) Reset() {
	r.omega0 = nil
	r.maxDrift = 0
}
