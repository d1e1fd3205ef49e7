// Package events provides the publish/subscribe capability shared by views
// and models.
//
// Every subscription carries a [Tag], the identity of the listener that
// registered it. A view subscribes to the models it observes under its own
// ID so that teardown can drop exactly its own subscriptions with a single
// Off("", id) call, without holding on to handler values.
package events

import (
	"sync"
)

// Tag identifies the listener that owns a subscription.
type Tag string

// Handler receives the arguments passed to Trigger.
type Handler func(args ...any)

// Bindable is implemented by anything a view can subscribe to or relate to,
// including other views.
type Bindable interface {
	// On subscribes fn to event under tag.
	On(event string, tag Tag, fn Handler) Subscription
	// Off removes subscriptions. An empty event matches every event and an
	// empty tag matches every tag, so Off("", "") removes everything.
	Off(event string, tag Tag)
	// Trigger calls every handler subscribed to event, in subscription order.
	Trigger(event string, args ...any)
}

// Subscription is a handle to one registered handler.
type Subscription struct {
	Event string
	Tag   Tag
	id    uint64
}

type listener struct {
	id   uint64
	tag  Tag
	fn   Handler
	dead bool
}

// Emitter implements Bindable. The zero value is ready to use; embed it in
// models and views.
//
// Handlers are invoked outside the emitter's lock, so they may subscribe or
// unsubscribe re-entrantly. A handler removed during a Trigger that has not
// yet run is skipped.
type Emitter struct {
	mu        sync.Mutex
	listeners map[string][]*listener
	nextID    uint64
}

// On subscribes fn to event under tag. A nil fn is ignored.
func (e *Emitter) On(event string, tag Tag, fn Handler) Subscription {
	if fn == nil {
		return Subscription{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*listener)
	}
	e.nextID++
	l := &listener{id: e.nextID, tag: tag, fn: fn}
	e.listeners[event] = append(e.listeners[event], l)
	return Subscription{Event: event, Tag: tag, id: l.id}
}

// Off removes every subscription matching event and tag.
func (e *Emitter) Off(event string, tag Tag) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, ls := range e.listeners {
		if event != "" && name != event {
			continue
		}
		kept := ls[:0]
		for _, l := range ls {
			if tag == "" || l.tag == tag {
				l.dead = true
				continue
			}
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			delete(e.listeners, name)
		} else {
			e.listeners[name] = kept
		}
	}
}

// Unsubscribe removes a single subscription.
func (e *Emitter) Unsubscribe(sub Subscription) {
	if sub.id == 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	ls := e.listeners[sub.Event]
	for i, l := range ls {
		if l.id == sub.id {
			l.dead = true
			ls = append(ls[:i], ls[i+1:]...)
			break
		}
	}
	if len(ls) == 0 {
		delete(e.listeners, sub.Event)
	} else {
		e.listeners[sub.Event] = ls
	}
}

// Trigger calls every handler subscribed to event.
func (e *Emitter) Trigger(event string, args ...any) {
	e.mu.Lock()
	snapshot := append([]*listener(nil), e.listeners[event]...)
	e.mu.Unlock()

	for _, l := range snapshot {
		e.mu.Lock()
		dead := l.dead
		e.mu.Unlock()
		if dead {
			continue
		}
		l.fn(args...)
	}
}

// ListenerCount returns the number of subscriptions for event, or for all
// events when event is empty.
func (e *Emitter) ListenerCount(event string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if event != "" {
		return len(e.listeners[event])
	}
	n := 0
	for _, ls := range e.listeners {
		n += len(ls)
	}
	return n
}

// ListenerCountFor returns the number of subscriptions registered under tag.
func (e *Emitter) ListenerCountFor(tag Tag) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, ls := range e.listeners {
		for _, l := range ls {
			if l.tag == tag {
				n++
			}
		}
	}
	return n
}
