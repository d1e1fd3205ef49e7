package testing

import (
	"sync"

	"github.com/go-drift/viewkit/pkg/errors"
)

// Capture is an errors.ErrorHandler that records everything reported to it.
type Capture struct {
	mu       sync.Mutex
	errs     []*errors.ViewError
	panics   []*errors.PanicError
	findings []*errors.LeakFinding
}

// NewCapture returns an empty capture.
func NewCapture() *Capture {
	return &Capture{}
}

func (c *Capture) HandleError(err *errors.ViewError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs = append(c.errs, err)
}

func (c *Capture) HandlePanic(err *errors.PanicError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panics = append(c.panics, err)
}

func (c *Capture) HandleFinding(f *errors.LeakFinding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.findings = append(c.findings, f)
}

// Errors returns the reported errors in order.
func (c *Capture) Errors() []*errors.ViewError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*errors.ViewError(nil), c.errs...)
}

// Panics returns the reported panics in order.
func (c *Capture) Panics() []*errors.PanicError {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*errors.PanicError(nil), c.panics...)
}

// Findings returns the reported audit findings in order.
func (c *Capture) Findings() []*errors.LeakFinding {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*errors.LeakFinding(nil), c.findings...)
}

// Reset drops everything captured so far.
func (c *Capture) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errs, c.panics, c.findings = nil, nil, nil
}
