package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Systems sharing a phase
// run in registration order.
type Runner struct {
	systems []System
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{systems: make([]System, 0, 8)}
}

// Register inserts systems after every registered system of the same or an
// earlier phase.
func (r *Runner) Register(systems ...System) {
	for _, s := range systems {
		i := sort.Search(len(r.systems), func(i int) bool {
			return r.systems[i].Phase() > s.Phase()
		})
		r.systems = append(r.systems, nil)
		copy(r.systems[i+1:], r.systems[i:])
		r.systems[i] = s
	}
}

// Len reports the number of registered systems.
func (r *Runner) Len() int { return len(r.systems) }

// Ticks reports how many ticks have run.
func (r *Runner) Ticks() uint64 { return r.ticks }

// Phases counts registered systems per phase.
func (r *Runner) Phases() map[Phase]int {
	out := make(map[Phase]int, len(r.systems))
	for _, s := range r.systems {
		out[s.Phase()]++
	}
	return out
}

func (r *Runner) Tick(dt time.Duration) {
	for _, s := range r.systems {
		s.Update(dt)
	}
	r.ticks++
}
