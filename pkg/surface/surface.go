// Package surface provides the presentation surface a view renders into.
//
// [Surface] is the contract the view lifecycle depends on. [Element] is the
// shipped implementation: an HTML element tree backed by golang.org/x/net/html,
// queried with CSS selectors, with a delegated event table in the style of
// DOM event delegation. It needs no browser, which keeps views testable.
package surface

import (
	"strings"
)

// Surface is an exclusively owned handle to a renderable element.
type Surface interface {
	// Show makes the element visible.
	Show()
	// Hide makes the element invisible.
	Hide()
	// Visible reports whether the element is shown.
	Visible() bool
	// Remove detaches the element from its document and, for a root
	// element, drops every delegated listener.
	Remove()
	// Removed reports whether Remove has been called.
	Removed() bool
	// Query returns the descendants matching a CSS selector.
	Query(selector string) ([]Surface, error)
	// AddClass adds class names.
	AddClass(names ...string)
	// RemoveClass removes class names.
	RemoveClass(names ...string)
	// HasClass reports whether the element carries a class name.
	HasClass(name string) bool
	// SetHTML replaces the element's content with parsed markup.
	SetHTML(markup string) error
	// HTML returns the element's serialized content.
	HTML() string
	// On registers a delegated listener. An empty selector listens on the
	// element itself; otherwise the handler runs for descendants matching
	// the selector.
	On(event, selector string, fn EventHandler) error
	// OffAll drops every delegated listener.
	OffAll()
	// Dispatch delivers an event at target and bubbles it towards the root.
	Dispatch(event string, target Surface) *Event
}

// Factory creates the root element of a new view.
type Factory func(tag string, classes ...string) Surface

// DefaultFactory creates an [Element].
func DefaultFactory(tag string, classes ...string) Surface {
	return New(tag, classes...)
}

// EventHandler handles a DOM-style event.
type EventHandler func(ev *Event)

// Event is a DOM-style event delivered by Dispatch.
type Event struct {
	// Type is the event name, e.g. "mouseover".
	Type string
	// Target is the element the event was dispatched at.
	Target Surface
	// Current is the element matching the delegated selector, or the
	// listening root for selector-less listeners.
	Current Surface

	defaultPrevented bool
	stopped          bool
}

// PreventDefault marks the default action as cancelled.
func (e *Event) PreventDefault() { e.defaultPrevented = true }

// StopPropagation stops the event from bubbling further.
func (e *Event) StopPropagation() { e.stopped = true }

// Kill prevents the default action and stops propagation. It accepts a nil
// event.
func (e *Event) Kill() {
	if e == nil {
		return
	}
	e.PreventDefault()
	e.StopPropagation()
}

// DefaultPrevented reports whether PreventDefault was called.
func (e *Event) DefaultPrevented() bool { return e.defaultPrevented }

// Stopped reports whether StopPropagation was called.
func (e *Event) Stopped() bool { return e.stopped }

// Handlers maps "event selector" keys to handlers, e.g.
// "mouseover .js-bubbleItem". A key without a selector listens on the root.
type Handlers map[string]EventHandler

// MergeHandlers returns a new table with every entry of base and extra;
// extra wins on duplicate keys.
func MergeHandlers(base, extra Handlers) Handlers {
	out := make(Handlers, len(base)+len(extra))
	for k, fn := range base {
		out[k] = fn
	}
	for k, fn := range extra {
		out[k] = fn
	}
	return out
}

// Delegate registers every entry of hs on s.
func Delegate(s Surface, hs Handlers) error {
	for key, fn := range hs {
		event, selector := SplitKey(key)
		if err := s.On(event, selector, fn); err != nil {
			return err
		}
	}
	return nil
}

// SplitKey splits a handler key into event name and selector.
func SplitKey(key string) (event, selector string) {
	key = strings.TrimSpace(key)
	event, selector, _ = strings.Cut(key, " ")
	return event, strings.TrimSpace(selector)
}
