package testing

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/metrics"
	"github.com/go-drift/viewkit/pkg/surface"
	"github.com/go-drift/viewkit/pkg/view"
)

// ViewTester provides an isolated view context for tests.
type ViewTester struct {
	ctx      *view.Context
	clock    *FakeClock
	recorder *metrics.Memory
	capture  *Capture
	nextID   int
}

// NewViewTester creates a tester with a fresh context. Options are applied
// after the test defaults and may replace them. Call Cleanup() when done,
// or use NewViewTesterWithT() instead.
func NewViewTester(opts ...view.ContextOption) *ViewTester {
	t := &ViewTester{
		clock:    NewFakeClock(),
		recorder: metrics.NewMemory(),
		capture:  NewCapture(),
	}
	base := []view.ContextOption{
		view.WithClock(t.clock),
		view.WithRecorder(t.recorder),
		view.WithIDs(t.newID),
		view.WithLogger(slog.New(slog.DiscardHandler)),
	}
	t.ctx = view.NewContext(append(base, opts...)...)
	errors.SetHandler(t.capture)
	return t
}

// NewViewTesterWithT creates a tester that auto-cleans up via t.Cleanup().
// This is the recommended constructor for tests.
func NewViewTesterWithT(t testing.TB, opts ...view.ContextOption) *ViewTester {
	tester := NewViewTester(opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup tears down every live view and restores the default error
// handler. Must be called if not using NewViewTesterWithT.
func (t *ViewTester) Cleanup() {
	for _, root := range t.Roots() {
		root.Teardown()
	}
	errors.SetHandler(nil)
}

func (t *ViewTester) newID() view.ID {
	t.nextID++
	return view.ID(fmt.Sprintf("view-%04d", t.nextID))
}

// Context returns the tester's view context.
func (t *ViewTester) Context() *view.Context {
	return t.ctx
}

// Clock returns the fake clock stamped on new views.
func (t *ViewTester) Clock() *FakeClock {
	return t.clock
}

// Recorder returns the in-memory instrumentation hook.
func (t *ViewTester) Recorder() *metrics.Memory {
	return t.recorder
}

// Errors returns the handler capturing reported errors, panics and audit
// findings.
func (t *ViewTester) Errors() *Capture {
	return t.capture
}

// LiveCount returns the number of live views in the context.
func (t *ViewTester) LiveCount() int {
	return t.ctx.LiveCount()
}

// Roots returns the live views without an owner, ordered by ID.
func (t *ViewTester) Roots() []view.Node {
	var roots []view.Node
	for _, n := range t.ctx.Nodes() {
		if n.AsView().Owner() == nil {
			roots = append(roots, n)
		}
	}
	return roots
}

// Find evaluates finder over every live tree.
func (t *ViewTester) Find(finder Finder) FinderResult {
	var nodes []view.Node
	for _, root := range t.Roots() {
		nodes = append(nodes, finder.Evaluate(root)...)
	}
	return FinderResult{nodes: nodes, finder: finder}
}

// Dispatch delivers event at the index-th element matching selector inside
// v's element. An empty selector targets v's element itself.
func (t *ViewTester) Dispatch(v view.Node, event, selector string, index int) (*surface.Event, error) {
	el := v.AsView().Element()
	if el == nil {
		return nil, errors.Newf("dispatch %s: view %s has no element", event, v.AsView().ID())
	}
	if selector == "" {
		return el.Dispatch(event, el), nil
	}
	targets, err := el.Query(selector)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(targets) {
		return nil, errors.Newf("dispatch %s: index %d out of range (found %d for %q)", event, index, len(targets), selector)
	}
	return el.Dispatch(event, targets[index]), nil
}

// Hover dispatches "mouseover" at the index-th match of selector.
func (t *ViewTester) Hover(v view.Node, selector string, index int) (*surface.Event, error) {
	return t.Dispatch(v, "mouseover", selector, index)
}

// Leave dispatches "mouseout" at the index-th match of selector.
func (t *ViewTester) Leave(v view.Node, selector string, index int) (*surface.Event, error) {
	return t.Dispatch(v, "mouseout", selector, index)
}

// Click dispatches "click" at the index-th match of selector.
func (t *ViewTester) Click(v view.Node, selector string, index int) (*surface.Event, error) {
	return t.Dispatch(v, "click", selector, index)
}
