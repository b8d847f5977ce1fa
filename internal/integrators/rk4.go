package integrators

import "github.com/san-kum/orrery/internal/dynamo"

// RK4 is the classical fourth-order Runge-Kutta method. Stage buffers are
// reused between steps, so an RK4 must not be shared between goroutines.
type RK4 struct {
	k       [4]dynamo.State
	scratch dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.scratch) != n {
		for i := range r.k {
			r.k[i] = make(dynamo.State, n)
		}
		r.scratch = make(dynamo.State, n)
	}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	n := len(x)
	r.ensureScratch(n)

	copy(r.k[0], dyn.Derive(x, u, t))

	axpy(r.scratch, x, dt/2, r.k[0])
	copy(r.k[1], dyn.Derive(r.scratch, u, t+dt/2))

	axpy(r.scratch, x, dt/2, r.k[1])
	copy(r.k[2], dyn.Derive(r.scratch, u, t+dt/2))

	axpy(r.scratch, x, dt, r.k[2])
	copy(r.k[3], dyn.Derive(r.scratch, u, t+dt))

	result := make(dynamo.State, n)
	dt6 := dt / 6
	for i := 0; i < n; i++ {
		result[i] = x[i] + dt6*(r.k[0][i]+2*r.k[1][i]+2*r.k[2][i]+r.k[3][i])
	}
	return result
}

// axpy sets dst = x + a*k.
func axpy(dst, x dynamo.State, a float64, k dynamo.State) {
	for i := range dst {
		dst[i] = x[i] + a*k[i]
	}
}
