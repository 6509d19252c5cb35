package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: player movement + weapon
	PhasePreUpdate               // 1: dispatch last tick's events, follow camera
	PhaseUpdate                  // 2: population tick (switch, behaviour, dummy move, batches)
	PhasePostUpdate              // 3: spawn scheduler
	PhaseOutput                  // 4: present frame
	PhasePersist                 // 5: session bookkeeping
	PhaseCleanup                 // 6: destroy queued entities
)

func (p Phase) String() string {
	switch p {
	case PhaseInput:
		return "input"
	case PhasePreUpdate:
		return "pre-update"
	case PhaseUpdate:
		return "update"
	case PhasePostUpdate:
		return "post-update"
	case PhaseOutput:
		return "output"
	case PhasePersist:
		return "persist"
	case PhaseCleanup:
		return "cleanup"
	}
	return "unknown"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
