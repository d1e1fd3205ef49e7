// Package metrics provides the instrumentation hook notified by the view
// lifecycle. Recording is fire-and-forget: a Recorder must never fail into
// the caller, and [Safe] enforces that for recorders that might.
package metrics

import (
	"sync"

	"github.com/go-drift/viewkit/pkg/errors"
)

// TotalViews is the metric recorded with the live view count after every
// construction.
const TotalViews = "total_views"

// Recorder receives named numeric samples.
type Recorder interface {
	Record(name string, value float64)
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(name string, value float64)

// Record calls f.
func (f RecorderFunc) Record(name string, value float64) {
	f(name, value)
}

// Nop discards every sample.
type Nop struct{}

// Record does nothing.
func (Nop) Record(string, float64) {}

// Safe wraps a Recorder so that a panic inside it is reported through
// errors.ReportPanic instead of unwinding into the caller.
func Safe(r Recorder) Recorder {
	if r == nil {
		return Nop{}
	}
	if _, ok := r.(safeRecorder); ok {
		return r
	}
	return safeRecorder{r}
}

type safeRecorder struct {
	inner Recorder
}

func (s safeRecorder) Record(name string, value float64) {
	defer errors.Recover("metrics.Record")
	s.inner.Record(name, value)
}

// Sample is one recorded value.
type Sample struct {
	Name  string
	Value float64
}

// Memory keeps every sample in order. It is safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	samples []Sample
}

// NewMemory returns an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends a sample.
func (m *Memory) Record(name string, value float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = append(m.samples, Sample{Name: name, Value: value})
}

// Samples returns a copy of every sample recorded under name, or of all
// samples when name is empty.
func (m *Memory) Samples(name string) []Sample {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Sample, 0, len(m.samples))
	for _, s := range m.samples {
		if name == "" || s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

// Last returns the most recent value recorded under name.
func (m *Memory) Last(name string) (float64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.samples) - 1; i >= 0; i-- {
		if m.samples[i].Name == name {
			return m.samples[i].Value, true
		}
	}
	return 0, false
}

// Reset drops all samples.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.samples = nil
}
