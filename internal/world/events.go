package world

import (
	"github.com/san-kum/rigidsim/internal/body"
)

type EventKind int

const (
	EventAddBody EventKind = iota
	EventRemoveBody
	EventAddSpring
	EventRemoveSpring
	EventPostStep
)

func (k EventKind) String() string {
	switch k {
	case EventAddBody:
		return "addBody"
	case EventRemoveBody:
		return "removeBody"
	case EventAddSpring:
		return "addSpring"
	case EventRemoveSpring:
		return "removeSpring"
	case EventPostStep:
		return "postStep"
	default:
		return "unknown"
	}
}

// Event is published to listeners. Body or Spring is set for the
// registry events that concern one.
type Event struct {
	Kind   EventKind
	Body   *body.Body
	Spring *body.Spring
}

type Listener func(Event)

type listenerEntry struct {
	id int
	fn Listener
}

// On registers a listener and returns a handle for Off.
func (w *World) On(fn Listener) int {
	w.nextListenerID++
	w.listeners = append(w.listeners, listenerEntry{id: w.nextListenerID, fn: fn})
	return w.nextListenerID
}

// Off removes a listener. Unknown handles are ignored.
func (w *World) Off(id int) {
	kept := make([]listenerEntry, 0, len(w.listeners))
	for _, l := range w.listeners {
		if l.id != id {
			kept = append(kept, l)
		}
	}
	w.listeners = kept
}

func (w *World) emit(e Event) {
	for _, l := range w.listeners {
		l.fn(e)
	}
}
