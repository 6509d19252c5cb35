package event

import "reflect"

// Bus is a double-buffered event bus. Events emitted during tick N are
// delivered during tick N+1, in emission order across all types. Handlers are
// registered at setup; the bus is used only from the game loop goroutine.
type Bus struct {
	front    []any
	back     []any
	handlers map[reflect.Type][]func(any)
}

func NewBus() *Bus {
	return &Bus{handlers: make(map[reflect.Type][]func(any))}
}

// Emit queues an event for the next dispatch.
// A nil bus drops the event, so simulation code can run without one.
func Emit[T any](b *Bus, event T) {
	if b == nil {
		return
	}
	b.back = append(b.back, event)
}

// Subscribe registers a typed handler for events of type T.
func Subscribe[T any](b *Bus, fn func(T)) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	b.handlers[t] = append(b.handlers[t], func(ev any) { fn(ev.(T)) })
}

// Pending returns the number of events waiting for the next swap.
func (b *Bus) Pending() int { return len(b.back) }

// SwapBuffers makes last tick's events dispatchable and starts an empty
// queue. Called once at tick start.
func (b *Bus) SwapBuffers() {
	clear(b.front)
	b.front, b.back = b.back, b.front[:0]
}

// DispatchAll delivers the swapped events to their handlers. Events without a
// handler are dropped.
func (b *Bus) DispatchAll() {
	for _, ev := range b.front {
		for _, h := range b.handlers[reflect.TypeOf(ev)] {
			h(ev)
		}
	}
}
