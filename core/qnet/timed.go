package qnet

import (
	"sync"
	"time"
)

// idleSpin is the busy-wait increment used while a timer's interval
// elapses, grounded in the source material's idle task
// (quantica.models.QTimed.__idle__), which polls a monotonic clock in
// ~100µs increments rather than relying on a single time.Sleep — useful
// because it keeps the overlapping-embedding lock held for close to the
// exact configured interval instead of oversleeping by a scheduler quantum.
const idleSpin = 100 * time.Microsecond

// TimedSubnet is the canonical three-node timed sub-net: an input
// transition feeds a capacity-1 place whose task sleeps for interval; an
// output transition then drains it. The capacity-1 bound, combined with
// the enabling rule, means no second token can enter until the one
// present is consumed — enforcing a minimum inter-firing spacing equal to
// interval between T_IN and T_OUT.
type TimedSubnet struct {
	*Net

	lock sync.Mutex
}

// NewTimedSubnet constructs a timed sub-net with the given label and
// delay. Overlapping embeddings of the same TimedSubnet value share the
// idle task's lock, so concurrent firings of T_IN across embeddings
// cannot race the interval measurement.
func NewTimedSubnet(label string, interval time.Duration) *TimedSubnet {
	ts := &TimedSubnet{Net: NewNet(label)}

	tInURI, _ := ts.CreateTransition("T_IN")
	one := 1
	pURI, _ := ts.CreatePlace("P", 0, ts.idle(interval), &one)
	tOutURI, _ := ts.CreateTransition("T_OUT")

	_ = ts.Connect(tInURI, pURI, 1)
	_ = ts.Connect(pURI, tOutURI, 1)

	return ts
}

// InputURI returns the URI a parent net should connect into after
// embedding this sub-net — the boundary input transition, addressed as
// the parent will see it (label suffixed with this sub-net's label).
func (ts *TimedSubnet) InputURI() string {
	return mintURI("T_IN", ts.Label)
}

// OutputURI returns the boundary output transition's parent-facing URI.
func (ts *TimedSubnet) OutputURI() string {
	return mintURI("T_OUT", ts.Label)
}

// idle returns the place task that blocks for interval, serialized by the
// timed sub-net's own lock so concurrent productions of the same timer
// cannot race.
func (ts *TimedSubnet) idle(interval time.Duration) Task {
	return func() {
		ts.lock.Lock()
		defer ts.lock.Unlock()

		start := time.Now()
		for time.Since(start) < interval {
			time.Sleep(idleSpin)
		}
	}
}
