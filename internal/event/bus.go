package event

// Handler receives an event of the kind it was registered for.
type Handler func(Event)

// Emitter is the sending half of a Bus, handed to simulation components.
type Emitter interface {
	Emit(e Event)
}

// Bus is a per-session dispatch table keyed by event kind.
// It is not safe for concurrent use; a session runs on one goroutine.
type Bus struct {
	handlers [kindCount][]Handler
}

// NewBus creates an empty dispatch table.
func NewBus() *Bus {
	return &Bus{}
}

// Handle registers h for events of kind k.
func (b *Bus) Handle(k Kind, h Handler) {
	b.handlers[k] = append(b.handlers[k], h)
}

// Emit delivers e to every handler registered for its kind, synchronously.
// Events with no handlers are dropped.
func (b *Bus) Emit(e Event) {
	if b == nil || e == nil {
		return
	}
	k := e.Kind()
	if k < 0 || k >= kindCount {
		return
	}
	for _, h := range b.handlers[k] {
		h(e)
	}
}

// Subscribe registers a typed handler. The kind is taken from E's zero value.
func Subscribe[E Event](b *Bus, fn func(E)) {
	var zero E
	b.Handle(zero.Kind(), func(e Event) {
		if typed, ok := e.(E); ok {
			fn(typed)
		}
	})
}

// Discard is an Emitter that drops every event.
type Discard struct{}

// Emit implements Emitter.
func (Discard) Emit(Event) {}
