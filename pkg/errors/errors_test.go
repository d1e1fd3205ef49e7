package errors

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewErrorString(t *testing.T) {
	err := &ViewError{
		Op:   "view.Relate",
		Kind: KindProgrammer,
		Err:  ErrNilModel,
	}
	assert.Equal(t, "view.Relate [programmer]: added non valid model", err.Error())
}

func TestViewErrorWithView(t *testing.T) {
	err := &ViewError{
		Op:   "view.AttachChild",
		Kind: KindProgrammer,
		View: "v-1",
		Err:  ErrCycle,
	}
	assert.Contains(t, err.Error(), "view=v-1")
}

func TestViewErrorIsSentinel(t *testing.T) {
	err := New("view.Relate", KindProgrammer, "v-1", Wrapf(ErrTornDown, "relate"))
	assert.True(t, Is(err, ErrTornDown))
	assert.False(t, Is(err, ErrNilModel))
	assert.Equal(t, KindProgrammer, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(ErrCycle))
	assert.NotEmpty(t, err.StackTrace)
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindProgrammer, "programmer"},
		{KindMissingTemplate, "missing-template"},
		{KindDegenerateInput, "degenerate-input"},
		{KindRender, "render"},
		{KindPanic, "panic"},
		{KindConfig, "config"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.kind.String(), "ErrorKind(%d)", tt.kind)
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom", Timestamp: time.Now()}
	assert.Equal(t, "panic: boom", err.Error())

	err.Op = "view.Teardown"
	assert.Equal(t, "panic in view.Teardown: boom", err.Error())
}

func TestProgrammerReports(t *testing.T) {
	handler := &testHandler{}
	SetHandler(handler)
	defer SetHandler(nil)

	err := Programmer("view.Relate", "v-9", ErrNilModel)

	require.Len(t, handler.errs, 1)
	assert.Same(t, err, handler.errs[0])
	assert.Equal(t, "v-9", handler.errs[0].View)
	assert.False(t, handler.errs[0].Timestamp.IsZero())
}

func TestReportFinding(t *testing.T) {
	handler := &testHandler{}
	SetHandler(handler)
	defer SetHandler(nil)

	ReportFinding(&LeakFinding{Parent: "p", ParentType: "*legend.Bubble", Field: "Tooltip", Child: "c"})
	ReportFinding(nil)

	require.Len(t, handler.findings, 1)
	assert.Equal(t, "untracked view c in *legend.Bubble.Tooltip (parent p)", handler.findings[0].String())
	assert.False(t, handler.findings[0].Timestamp.IsZero())
}

func TestRecover(t *testing.T) {
	handler := &testHandler{}
	SetHandler(handler)
	defer SetHandler(nil)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	require.Len(t, handler.panics, 1)
	assert.Equal(t, "intentional test panic", handler.panics[0].Value)
	assert.Equal(t, "test.recover", handler.panics[0].Op)
}

func TestRecoverWithCallback(t *testing.T) {
	handler := &testHandler{}
	SetHandler(handler)
	defer SetHandler(nil)

	var got any
	func() {
		defer RecoverWithCallback("test.callback", func(r any) { got = r })
		panic(42)
	}()

	assert.Equal(t, 42, got)
	assert.Len(t, handler.panics, 1)
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	assert.NotEmpty(t, stack)
	assert.Contains(t, stack, "testing")
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	_, ok := DefaultHandler.(*LogHandler)
	assert.True(t, ok, "SetHandler(nil) should install LogHandler, got %T", DefaultHandler)
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Logger: slog.New(slog.NewTextHandler(&buf, nil)), Verbose: true}

	h.HandleError(&ViewError{Op: "templates.Lookup", Kind: KindMissingTemplate, Err: ErrTemplateNotFound, StackTrace: "frame"})
	h.HandlePanic(&PanicError{Op: "metrics.Record", Value: "bad"})
	h.HandleFinding(&LeakFinding{Parent: "p", Field: "Tooltip", Child: "c"})

	out := buf.String()
	assert.Contains(t, out, "kind=missing-template")
	assert.Contains(t, out, "stack=frame")
	assert.Contains(t, out, "op=metrics.Record")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "field=Tooltip")
}

type testHandler struct {
	errs     []*ViewError
	panics   []*PanicError
	findings []*LeakFinding
}

func (h *testHandler) HandleError(err *ViewError) { h.errs = append(h.errs, err) }
func (h *testHandler) HandlePanic(err *PanicError) { h.panics = append(h.panics, err) }
func (h *testHandler) HandleFinding(f *LeakFinding) { h.findings = append(h.findings, f) }
