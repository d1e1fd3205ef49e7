package view

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/metrics"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var epoch = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

// captureHandler records everything reported to the global error handler.
type captureHandler struct {
	mu       sync.Mutex
	errs     []*errors.ViewError
	panics   []*errors.PanicError
	findings []*errors.LeakFinding
}

func (h *captureHandler) HandleError(err *errors.ViewError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *captureHandler) HandlePanic(err *errors.PanicError) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.panics = append(h.panics, err)
}

func (h *captureHandler) HandleFinding(f *errors.LeakFinding) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.findings = append(h.findings, f)
}

type fixture struct {
	ctx      *Context
	recorder *metrics.Memory
	handler  *captureHandler
}

func newFixture(t *testing.T, opts ...ContextOption) *fixture {
	t.Helper()
	f := &fixture{recorder: metrics.NewMemory(), handler: &captureHandler{}}
	n := 0
	base := []ContextOption{
		WithRecorder(f.recorder),
		WithClock(fixedClock{epoch}),
		WithIDs(func() ID {
			n++
			return ID(fmt.Sprintf("v%03d", n))
		}),
	}
	f.ctx = NewContext(append(base, opts...)...)
	errors.SetHandler(f.handler)
	t.Cleanup(func() { errors.SetHandler(nil) })
	return f
}

func (f *fixture) view(t *testing.T) *View {
	t.Helper()
	v, err := New(f.ctx, Options{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}
