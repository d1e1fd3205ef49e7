// Package errors provides structured error handling for viewkit.
//
// Programmer errors (relating a nil model, touching a torn-down view, building
// an ownership cycle) are returned as [*ViewError] and also reported to the
// global [ErrorHandler] so they surface during development. Leak-detector
// output is advisory and travels as [*LeakFinding], never as an error.
package errors

import (
	"fmt"
	"time"

	crerrors "github.com/cockroachdb/errors"
)

// Sentinel errors. Match them with [Is]; they survive wrapping.
var (
	// ErrNilModel is returned when a view is related to a nil model.
	ErrNilModel = crerrors.New("added non valid model")
	// ErrNilView is returned when a nil view is attached or initialized.
	ErrNilView = crerrors.New("nil view")
	// ErrNotInitialized is returned by operations on a view that was never
	// passed through view.Init.
	ErrNotInitialized = crerrors.New("view not initialized")
	// ErrTornDown is returned by any mutating operation on a torn-down view.
	ErrTornDown = crerrors.New("view already torn down")
	// ErrCycle is returned when attaching a child would create an ownership cycle.
	ErrCycle = crerrors.New("view ownership cycle")
	// ErrTemplateNotFound is returned when a named template is not registered.
	ErrTemplateNotFound = crerrors.New("template not found")
	// ErrDegenerateInput is returned by normalization on empty or zero-anchored input.
	ErrDegenerateInput = crerrors.New("degenerate input")
)

// ErrorKind identifies the category of an error.
type ErrorKind int

const (
	// KindUnknown indicates an error of unknown type.
	KindUnknown ErrorKind = iota
	// KindProgrammer indicates misuse of the view lifecycle API.
	KindProgrammer
	// KindMissingTemplate indicates a template lookup failure.
	KindMissingTemplate
	// KindDegenerateInput indicates input a computation cannot normalize.
	KindDegenerateInput
	// KindRender indicates a template execution or markup failure.
	KindRender
	// KindPanic indicates a recovered panic.
	KindPanic
	// KindConfig indicates an invalid configuration.
	KindConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindProgrammer:
		return "programmer"
	case KindMissingTemplate:
		return "missing-template"
	case KindDegenerateInput:
		return "degenerate-input"
	case KindRender:
		return "render"
	case KindPanic:
		return "panic"
	case KindConfig:
		return "config"
	default:
		return "unknown"
	}
}

// ViewError represents a structured error raised by a view operation.
type ViewError struct {
	// Op is the operation that failed (e.g., "view.Relate").
	Op string
	// Kind categorizes the error.
	Kind ErrorKind
	// View is the ID of the view the operation ran on, if any.
	View string
	// Err is the underlying error.
	Err error
	// StackTrace contains the call stack at the time of the error.
	StackTrace string
	// Timestamp is when the error occurred.
	Timestamp time.Time
}

func (e *ViewError) Error() string {
	if e.View != "" {
		return fmt.Sprintf("%s [%s] view=%s: %v", e.Op, e.Kind, e.View, e.Err)
	}
	return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
}

func (e *ViewError) Unwrap() error {
	return e.Err
}

// PanicError represents a recovered panic.
type PanicError struct {
	// Op is the operation that panicked (e.g., "view.Teardown").
	Op string
	// Value is the value passed to panic().
	Value any
	// StackTrace contains the call stack at the time of the panic.
	StackTrace string
	// Timestamp is when the panic occurred.
	Timestamp time.Time
}

func (e *PanicError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("panic in %s: %v", e.Op, e.Value)
	}
	return fmt.Sprintf("panic: %v", e.Value)
}

// LeakFinding reports a view held in a field of another view without being
// one of its children.
type LeakFinding struct {
	// Parent is the ID of the view holding the reference.
	Parent string
	// ParentType is the Go type of the holding view.
	ParentType string
	// Field is the dotted field path of the reference.
	Field string
	// Child is the ID of the untracked view.
	Child string
	// Timestamp is when the audit found it.
	Timestamp time.Time
}

func (f *LeakFinding) String() string {
	return fmt.Sprintf("untracked view %s in %s.%s (parent %s)", f.Child, f.ParentType, f.Field, f.Parent)
}

// New builds a ViewError of the given kind and captures the stack.
func New(op string, kind ErrorKind, view string, err error) *ViewError {
	return &ViewError{
		Op:         op,
		Kind:       kind,
		View:       view,
		Err:        err,
		StackTrace: CaptureStack(),
		Timestamp:  time.Now(),
	}
}

// Programmer builds a KindProgrammer error and reports it before returning it.
func Programmer(op string, view string, err error) *ViewError {
	verr := New(op, KindProgrammer, view, err)
	Report(verr)
	return verr
}

// Wrapf annotates err with a formatted message, keeping sentinel identity.
func Wrapf(err error, format string, args ...any) error {
	return crerrors.Wrapf(err, format, args...)
}

// Newf formats a new error with a stack attached.
func Newf(format string, args ...any) error {
	return crerrors.Newf(format, args...)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return crerrors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return crerrors.As(err, target)
}

// KindOf returns the kind of the first ViewError in err's chain.
func KindOf(err error) ErrorKind {
	var verr *ViewError
	if As(err, &verr) {
		return verr.Kind
	}
	return KindUnknown
}

// ErrorHandler receives errors reported by viewkit.
type ErrorHandler interface {
	// HandleError is called when an error occurs.
	HandleError(err *ViewError)
	// HandlePanic is called when a panic is recovered.
	HandlePanic(err *PanicError)
	// HandleFinding is called for every leak-detector finding.
	HandleFinding(f *LeakFinding)
}
