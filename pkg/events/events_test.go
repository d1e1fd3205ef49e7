package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmitter_TriggerOrderAndArgs(t *testing.T) {
	var e Emitter
	var calls []string
	e.On("change", "a", func(args ...any) { calls = append(calls, "a:"+args[0].(string)) })
	e.On("change", "b", func(args ...any) { calls = append(calls, "b:"+args[0].(string)) })
	e.On("other", "a", func(args ...any) { calls = append(calls, "other") })

	e.Trigger("change", "x")

	assert.Equal(t, []string{"a:x", "b:x"}, calls)
}

func TestEmitter_OffByTag(t *testing.T) {
	var e Emitter
	count := 0
	e.On("change", "view-1", func(...any) { count++ })
	e.On("reset", "view-1", func(...any) { count++ })
	e.On("change", "view-2", func(...any) { count += 10 })

	e.Off("", "view-1")
	e.Trigger("change")
	e.Trigger("reset")

	assert.Equal(t, 10, count)
	assert.Equal(t, 0, e.ListenerCountFor("view-1"))
	assert.Equal(t, 1, e.ListenerCount(""))
}

func TestEmitter_OffByEvent(t *testing.T) {
	var e Emitter
	e.On("change", "a", func(...any) {})
	e.On("change", "b", func(...any) {})
	e.On("reset", "a", func(...any) {})

	e.Off("change", "")

	assert.Equal(t, 0, e.ListenerCount("change"))
	assert.Equal(t, 1, e.ListenerCount("reset"))

	e.Off("", "")
	assert.Equal(t, 0, e.ListenerCount(""))
}

func TestEmitter_Unsubscribe(t *testing.T) {
	var e Emitter
	count := 0
	sub := e.On("change", "a", func(...any) { count++ })
	e.On("change", "a", func(...any) { count += 10 })

	e.Unsubscribe(sub)
	e.Unsubscribe(Subscription{})
	e.Trigger("change")

	assert.Equal(t, 10, count)
}

func TestEmitter_RemovedDuringTriggerIsSkipped(t *testing.T) {
	var e Emitter
	var calls []string
	e.On("change", "first", func(...any) {
		calls = append(calls, "first")
		e.Off("", "second")
	})
	e.On("change", "second", func(...any) { calls = append(calls, "second") })

	e.Trigger("change")

	assert.Equal(t, []string{"first"}, calls)
}

func TestEmitter_SubscribeDuringTriggerWaitsForNext(t *testing.T) {
	var e Emitter
	count := 0
	e.On("change", "a", func(...any) {
		e.On("change", "b", func(...any) { count++ })
	})

	e.Trigger("change")
	assert.Equal(t, 0, count)

	e.Trigger("change")
	assert.Equal(t, 1, count)
}

func TestEmitter_NilHandlerIgnored(t *testing.T) {
	var e Emitter
	sub := e.On("change", "a", nil)

	assert.Equal(t, Subscription{}, sub)
	assert.Equal(t, 0, e.ListenerCount("change"))
}

func TestEmitter_ImplementsBindable(t *testing.T) {
	var _ Bindable = &Emitter{}
}
