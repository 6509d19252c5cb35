package horde

import "time"

// pendingReturn is a dying zombie waiting out its death animation.
type pendingReturn struct {
	due    time.Duration
	zombie *Zombie
	held   bool // due is still relative; stamped by the next Advance
}

// DelayQueue holds deferred pool returns keyed to simulation time. It only
// advances when the manager ticks, so a paused game pauses the countdown.
type DelayQueue struct {
	now     time.Duration
	entries []pendingReturn
}

// Now returns the simulation clock.
func (q *DelayQueue) Now() time.Duration { return q.now }

// Len returns the number of entries not yet fired.
func (q *DelayQueue) Len() int { return len(q.entries) }

// Schedule queues z to fire after delay.
func (q *DelayQueue) Schedule(delay time.Duration, z *Zombie) {
	q.entries = append(q.entries, pendingReturn{due: q.now + delay, zombie: z})
}

// Hold queues z to fire delay after the clock time of the next Advance. It is
// for returns scheduled between ticks, whose countdown belongs to the tick
// about to run rather than the one that has finished.
func (q *DelayQueue) Hold(delay time.Duration, z *Zombie) {
	q.entries = append(q.entries, pendingReturn{due: delay, zombie: z, held: true})
}

// Advance moves the clock forward by dt and fires every entry now due, in
// scheduling order. Each entry fires exactly once.
func (q *DelayQueue) Advance(dt time.Duration, fire func(*Zombie)) {
	q.now += dt
	for i := range q.entries {
		if e := &q.entries[i]; e.held {
			e.due += q.now
			e.held = false
		}
	}
	kept := q.entries[:0]
	var due []*Zombie
	for _, e := range q.entries {
		if e.due <= q.now {
			due = append(due, e.zombie)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(q.entries); i++ {
		q.entries[i] = pendingReturn{}
	}
	q.entries = kept
	for _, z := range due {
		fire(z)
	}
}
