package lifecycle

import "time"

// Runtime accumulates the processing time of the current cycle. Idle time
// is never added: it is the budget the runtime is charged against.
type Runtime struct {
	total time.Duration
}

func (r *Runtime) Add(d time.Duration) {
	if d > 0 {
		r.total += d
	}
}

func (r *Runtime) Reset() { r.total = 0 }

func (r *Runtime) Elapsed() time.Duration { return r.total }

func (r *Runtime) Seconds() float64 { return r.total.Seconds() }
