// Package legend provides the bubble legend: a widget that draws nested
// bubbles sized relative to the largest one, value labels alongside, and a
// marker for the average.
package legend

import (
	"slices"
	"sync"

	"github.com/go-drift/viewkit/pkg/events"
)

// EventChange is triggered on a Model after every setter.
const EventChange = "change"

// Data is the plain content of a legend model.
type Data struct {
	Sizes     []float64 `yaml:"sizes"`
	Values    []float64 `yaml:"values"`
	Avg       float64   `yaml:"avg"`
	FillColor string    `yaml:"fillColor"`
}

// Model is an observable legend model. Setters trigger EventChange with the
// model as the only argument.
type Model struct {
	events.Emitter

	mu   sync.RWMutex
	data Data
}

// NewModel returns a model holding a copy of d.
func NewModel(d Data) *Model {
	return &Model{data: cloneData(d)}
}

// Data returns a copy of the model's content.
func (m *Model) Data() Data {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return cloneData(m.data)
}

// Set replaces the whole content.
func (m *Model) Set(d Data) {
	m.update(func(cur *Data) { *cur = cloneData(d) })
}

func (m *Model) SetSizes(sizes []float64) {
	m.update(func(d *Data) { d.Sizes = slices.Clone(sizes) })
}

func (m *Model) SetValues(values []float64) {
	m.update(func(d *Data) { d.Values = slices.Clone(values) })
}

func (m *Model) SetAvg(avg float64) {
	m.update(func(d *Data) { d.Avg = avg })
}

func (m *Model) SetFillColor(color string) {
	m.update(func(d *Data) { d.FillColor = color })
}

func (m *Model) update(fn func(*Data)) {
	m.mu.Lock()
	fn(&m.data)
	m.mu.Unlock()
	m.Trigger(EventChange, m)
}

func cloneData(d Data) Data {
	d.Sizes = slices.Clone(d.Sizes)
	d.Values = slices.Clone(d.Values)
	return d
}
