package engine

// ListenerID identifies a registered listener so it can be removed later.
// Function values are not comparable in Go, so removal goes through the ID.
type ListenerID uint64

// Event is a multi-cast event with no payload.
type Event struct {
	next      ListenerID
	listeners []eventListener[struct{}]
}

type eventListener[T any] struct {
	id ListenerID
	fn func(T)
}

// AddListener adds a callback to be invoked when the event fires
func (e *Event) AddListener(callback func()) ListenerID {
	if callback == nil {
		return 0
	}
	e.next++
	e.listeners = append(e.listeners, eventListener[struct{}]{id: e.next, fn: func(struct{}) { callback() }})
	return e.next
}

// RemoveListener removes the listener registered under id.
func (e *Event) RemoveListener(id ListenerID) {
	e.listeners = removeListener(e.listeners, id)
}

// RemoveAllListeners clears all listeners
func (e *Event) RemoveAllListeners() {
	e.listeners = nil
}

// Invoke calls all registered listeners
func (e *Event) Invoke() {
	for _, l := range e.listeners {
		l.fn(struct{}{})
	}
}

// GetListenerCount returns the number of registered listeners
func (e *Event) GetListenerCount() int {
	return len(e.listeners)
}

// EventWithArg is a generic event with one argument
type EventWithArg[T any] struct {
	next      ListenerID
	listeners []eventListener[T]
}

func (e *EventWithArg[T]) AddListener(callback func(T)) ListenerID {
	if callback == nil {
		return 0
	}
	e.next++
	e.listeners = append(e.listeners, eventListener[T]{id: e.next, fn: callback})
	return e.next
}

func (e *EventWithArg[T]) RemoveListener(id ListenerID) {
	e.listeners = removeListener(e.listeners, id)
}

func (e *EventWithArg[T]) RemoveAllListeners() {
	e.listeners = nil
}

func (e *EventWithArg[T]) Invoke(arg T) {
	for _, l := range e.listeners {
		l.fn(arg)
	}
}

func (e *EventWithArg[T]) GetListenerCount() int {
	return len(e.listeners)
}

func removeListener[T any](listeners []eventListener[T], id ListenerID) []eventListener[T] {
	for i, l := range listeners {
		if l.id == id {
			return append(listeners[:i], listeners[i+1:]...)
		}
	}
	return listeners
}
