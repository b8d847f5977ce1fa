package metrics

import (
	"fmt"
	"math"

	"github.com/san-kum/orrery/internal/dynamo"
)

// Revolutions counts the whole turns a body has made since the first
// observation, in either direction.
type Revolutions struct {
	name    string
	index   int
	start   float64
	last    float64
	samples int
}

func NewRevolutions(body string, index int) *Revolutions {
	return &Revolutions{
		name:  fmt.Sprintf("revolutions_%s", body),
		index: index,
	}
}

func (r *Revolutions) Name() string { return r.name }

func (r *Revolutions) Observe(x dynamo.State, u dynamo.Control, t float64) {
	if r.index >= len(x) {
		return
	}
	if r.samples == 0 {
		r.start = x[r.index]
	}
	r.last = x[r.index]
	r.samples++
}

func (r *Revolutions) Value() float64 {
	if r.samples == 0 {
		return 0
	}
	return math.Floor(math.Abs(r.last-r.start) / (2 * math.Pi))
}

func (r *Revolutions) Reset() {
	r.start = 0
	r.last = 0
	r.samples = 0
}
