package atomspace

// EventKind enumerates the lifecycle events an AtomSpace notifies
// observers about (spec §4.1 "Change-notification contract").
type EventKind int

const (
	EventAdd EventKind = iota
	EventRemove
	EventTruthValueChanged
	EventAttentionValueChanged
)

// Event describes one AtomSpace mutation. It is delivered
// synchronously, inside the writer's critical section; observers must
// treat the handler as non-blocking bounded work (spec §5: "observers
// must perform only bounded, non-blocking work, e.g. enqueue onto a
// channel") and must never re-enter a mutating AtomSpace call from
// within OnEvent.
type Event struct {
	Kind  EventKind
	Atom  *Atom
	Prior TruthValue // valid only for EventTruthValueChanged
}

// Observer receives synchronous lifecycle notifications. Implementers
// that need to do real work (storage backends, the ECAN neighbor
// graph) must enqueue onto their own channel/goroutine and return
// immediately, per spec §9's "model observers as message passers"
// design note.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a plain function to the Observer interface.
type ObserverFunc func(Event)

// OnEvent implements Observer.
func (f ObserverFunc) OnEvent(e Event) { f(e) }
