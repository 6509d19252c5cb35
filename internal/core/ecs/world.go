package ecs

// World owns the entity pool, the stores cleared on destroy, and a deferred
// destruction queue flushed by CleanupSystem at the end of each tick.
type World struct {
	pool   *EntityPool
	stores []Removable
	queue  []EntityID
	queued map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:   NewEntityPool(),
		queue:  make([]EntityID, 0, 64),
		queued: make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

// Track registers a store whose entries are dropped when their entity is
// destroyed.
func (w *World) Track(s Removable) { w.stores = append(w.stores, s) }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }
func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues a live entity for end-of-tick cleanup. Dead and
// already queued ids are ignored.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	if _, dup := w.queued[id]; dup {
		return
	}
	w.queued[id] = struct{}{}
	w.queue = append(w.queue, id)
}

// Pending returns the number of entities waiting in the destroy queue.
func (w *World) Pending() int { return len(w.queue) }

// FlushDestroyQueue destroys every queued entity, clears it from the tracked
// stores and returns how many were destroyed.
func (w *World) FlushDestroyQueue() int {
	n := len(w.queue)
	for _, id := range w.queue {
		for _, s := range w.stores {
			s.Remove(id)
		}
		w.pool.Destroy(id)
		delete(w.queued, id)
	}
	w.queue = w.queue[:0]
	return n
}
