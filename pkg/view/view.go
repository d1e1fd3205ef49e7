// Package view provides the lifecycle core of a view hierarchy: nodes that
// own child nodes, observe models, hold one presentation element and tear
// themselves down deterministically.
//
// Concrete views embed [Base] and call [Init] from their constructor:
//
//	type Panel struct {
//	    view.Base
//	    title string
//	}
//
//	func NewPanel(ctx *view.Context, opts view.Options) (*Panel, error) {
//	    p := &Panel{}
//	    if err := view.Init(ctx, p, opts, view.Options{ClassName: "panel"}); err != nil {
//	        return nil, err
//	    }
//	    return p, nil
//	}
//
// A view owns exactly the nodes in its children table. Models and other
// views it observes are recorded with Relate and unbound at teardown, but
// never torn down by it. Any other reference to a node should be a [Ref].
package view

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/jinzhu/copier"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/events"
	"github.com/go-drift/viewkit/pkg/metrics"
	"github.com/go-drift/viewkit/pkg/surface"
	"github.com/go-drift/viewkit/pkg/templates"
)

// ID is the opaque identity of a view, unique within its context.
type ID string

// EventTeardown is triggered on a view's own emitter as the first step of
// its teardown.
const EventTeardown = "teardown"

// Node is implemented by every view, usually by embedding [Base].
type Node interface {
	events.Bindable
	// AsView returns the embedded lifecycle state.
	AsView() *Base
	// Teardown destroys the view and its owned subtree. Views may override
	// it to release their own resources, calling the embedded Base.Teardown
	// last.
	Teardown() Node
}

// Options are resolved once at construction and frozen afterwards.
type Options struct {
	// Tag is the element tag name. Defaults to "div".
	Tag string
	// ClassName is the element's initial class list.
	ClassName string
	// TemplateName names the template used by Template("").
	TemplateName string
	// Template is inline template text that overrides any named template.
	Template string
	// Hidden, when set, decides whether the element is created hidden. Nil
	// leaves the choice to the defaults.
	Hidden *bool
	// Model, when set, is related at construction.
	Model events.Bindable
}

type lifecycle uint8

const (
	stateLive lifecycle = iota
	stateTearing
	stateTorn
)

// Base carries the lifecycle state of a view.
type Base struct {
	events.Emitter

	id        ID
	ctx       *Context
	self      Node
	el        surface.Surface
	children  map[ID]Node
	related   []events.Bindable
	parent    Node
	createdAt time.Time
	options   Options
	state     lifecycle
}

// View is a view with no behavior of its own, used for containers.
type View struct {
	Base
}

// New constructs a plain view. A nil ctx uses [Default].
func New(ctx *Context, opts Options) (*View, error) {
	v := &View{}
	if err := Init(ctx, v, opts, Options{}); err != nil {
		return nil, err
	}
	return v, nil
}

// Init initializes the Base embedded in self and registers self in ctx.
// Every zero field of opts is filled from defaults, and then from the
// context defaults. A nil ctx uses [Default].
func Init(ctx *Context, self Node, opts Options, defaults Options) error {
	const op = "view.Init"
	if isNil(self) {
		return errors.Programmer(op, "", errors.ErrNilView)
	}
	if ctx == nil {
		ctx = Default()
	}
	b := self.AsView()
	if b.ctx != nil {
		return errors.Programmer(op, string(b.id), errors.Newf("view already initialized"))
	}

	resolved, err := resolveOptions(ctx.defaults, defaults, opts)
	if err != nil {
		return errors.New(op, errors.KindConfig, "", err)
	}

	b.id = ctx.newID()
	b.ctx = ctx
	b.self = self
	b.children = make(map[ID]Node)
	b.related = nil
	b.parent = nil
	b.options = resolved
	b.state = stateLive
	b.el = ctx.surfaces(resolved.Tag, resolved.ClassName)
	if resolved.Hidden != nil && *resolved.Hidden {
		b.el.Hide()
	}
	b.createdAt = ctx.clock.Now()
	if !isNil(resolved.Model) {
		b.related = append(b.related, resolved.Model)
	}

	count := ctx.Register(self)
	ctx.recorder.Record(metrics.TotalViews, float64(count))
	ctx.logger.Debug("view created", "id", b.id, "type", fmt.Sprintf("%T", self), "live", count)
	return nil
}

func resolveOptions(layers ...Options) (Options, error) {
	var out Options
	for _, layer := range layers {
		if err := copier.CopyWithOption(&out, &layer, copier.Option{IgnoreEmpty: true}); err != nil {
			return Options{}, errors.Wrapf(err, "merge options")
		}
	}
	if out.Tag == "" {
		out.Tag = "div"
	}
	return out, nil
}

// AsView returns b.
func (b *Base) AsView() *Base {
	return b
}

// ID returns the view's identity.
func (b *Base) ID() ID {
	return b.id
}

// Context returns the context the view is registered in.
func (b *Base) Context() *Context {
	return b.ctx
}

// Element returns the view's presentation element.
func (b *Base) Element() surface.Surface {
	return b.el
}

// Options returns the resolved construction options.
func (b *Base) Options() Options {
	return b.options
}

// CreatedAt returns the construction time.
func (b *Base) CreatedAt() time.Time {
	return b.createdAt
}

// Parent returns the view b was last attached to, or nil. It is kept after
// DetachChild; use Owner for the current owner.
func (b *Base) Parent() Node {
	return b.parent
}

// Owner returns the parent only while it still holds b as a child.
func (b *Base) Owner() Node {
	if b.parent == nil || !b.parent.AsView().HasChild(b.id) {
		return nil
	}
	return b.parent
}

// Children returns a snapshot of the owned views, ordered by ID.
func (b *Base) Children() []Node {
	ids := slices.Sorted(maps.Keys(b.children))
	out := make([]Node, len(ids))
	for i, id := range ids {
		out[i] = b.children[id]
	}
	return out
}

// HasChild reports whether id is one of b's children.
func (b *Base) HasChild(id ID) bool {
	_, ok := b.children[id]
	return ok
}

// Related returns a snapshot of the related models, in relation order.
func (b *Base) Related() []events.Bindable {
	return slices.Clone(b.related)
}

// IsTornDown reports whether teardown has completed.
func (b *Base) IsTornDown() bool {
	return b.state == stateTorn
}

func (b *Base) check(op string) error {
	if b.ctx == nil {
		return errors.Programmer(op, "", errors.ErrNotInitialized)
	}
	if b.state != stateLive {
		return errors.Programmer(op, string(b.id), errors.ErrTornDown)
	}
	return nil
}

// Relate records model as observed by b so that teardown unbinds every
// subscription b holds on it. Duplicates are allowed.
func (b *Base) Relate(model events.Bindable) error {
	const op = "view.Relate"
	if err := b.check(op); err != nil {
		return err
	}
	if isNil(model) {
		return errors.Programmer(op, string(b.id), errors.ErrNilModel)
	}
	b.related = append(b.related, model)
	return nil
}

// AttachChild makes b the owner of child. A child owned elsewhere is moved.
// Attaching b to itself or to one of its descendants fails with
// errors.ErrCycle.
func (b *Base) AttachChild(child Node) error {
	const op = "view.AttachChild"
	if err := b.check(op); err != nil {
		return err
	}
	if isNil(child) {
		return errors.Programmer(op, string(b.id), errors.ErrNilView)
	}
	cb := child.AsView()
	if err := cb.check(op); err != nil {
		return err
	}
	for n := b.self; n != nil; n = n.AsView().Owner() {
		if n.AsView() == cb {
			return errors.Programmer(op, string(b.id), errors.Wrapf(errors.ErrCycle, "child %s", cb.id))
		}
	}
	if owner := cb.Owner(); owner != nil && owner.AsView() != b {
		owner.AsView().detach(cb.id)
	}
	b.children[cb.id] = child
	cb.parent = b.self
	return nil
}

// DetachChild removes child from b's children. It does not clear the
// child's parent; teardown does that.
func (b *Base) DetachChild(child Node) error {
	const op = "view.DetachChild"
	if err := b.check(op); err != nil {
		return err
	}
	if isNil(child) {
		return errors.Programmer(op, string(b.id), errors.ErrNilView)
	}
	b.detach(child.AsView().id)
	return nil
}

func (b *Base) detach(id ID) {
	delete(b.children, id)
}

// ClearChildren tears down every child and empties the children table.
func (b *Base) ClearChildren() error {
	if err := b.check("view.ClearChildren"); err != nil {
		return err
	}
	b.clearChildren()
	return nil
}

func (b *Base) clearChildren() {
	for _, child := range b.Children() {
		child.Teardown()
	}
	clear(b.children)
}

// Teardown destroys b: it triggers EventTeardown, tears down the children,
// detaches from the parent, removes the element and drops b's own
// listeners, unbinds every related model and finally unregisters. A second
// call does nothing. A panicking teardown listener aborts the teardown,
// leaving b live, and the panic propagates to the caller.
func (b *Base) Teardown() Node {
	if b.ctx == nil || b.state != stateLive {
		return b.self
	}
	ctx := b.ctx
	b.state = stateTearing
	ctx.enterTeardown()
	completed := false
	defer func() {
		if !completed {
			b.state = stateLive
			ctx.exitTeardown()
		}
	}()

	b.triggerTeardown()
	b.clearChildren()
	if b.parent != nil {
		b.parent.AsView().detach(b.id)
		b.parent = nil
	}
	b.el.Remove()
	b.el.OffAll()
	b.Emitter.Off("", "")
	for _, m := range b.related {
		m.Off("", events.Tag(b.id))
	}
	b.related = nil
	count, _ := ctx.Unregister(b.id)
	b.state = stateTorn
	completed = true

	ctx.logger.Debug("view torn down", "id", b.id, "type", fmt.Sprintf("%T", b.self), "live", count)
	if ctx.exitTeardown() && ctx.debug {
		ctx.AuditUntracked()
	}
	return b.self
}

func (b *Base) triggerTeardown() {
	defer func() {
		if r := recover(); r != nil {
			errors.ReportPanic(&errors.PanicError{
				Op:         "view.Teardown",
				Value:      r,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
			panic(r)
		}
	}()
	b.Emitter.Trigger(EventTeardown, b.self)
}

// Show makes the element visible.
func (b *Base) Show() error {
	if err := b.check("view.Show"); err != nil {
		return err
	}
	b.el.Show()
	return nil
}

// Hide makes the element invisible.
func (b *Base) Hide() error {
	if err := b.check("view.Hide"); err != nil {
		return err
	}
	b.el.Hide()
	return nil
}

// Visible reports whether the element is shown.
func (b *Base) Visible() bool {
	return b.el != nil && b.el.Visible()
}

// RelayEvent re-triggers source events of obj as target events on b, with
// the same arguments. An empty target relays under the source name. obj is
// related, so the relay ends at teardown.
func (b *Base) RelayEvent(source string, obj events.Bindable, target string) error {
	const op = "view.RelayEvent"
	if err := b.check(op); err != nil {
		return err
	}
	if isNil(obj) {
		return errors.Programmer(op, string(b.id), errors.ErrNilModel)
	}
	if target == "" {
		target = source
	}
	self := b.self
	obj.On(source, events.Tag(b.id), func(args ...any) {
		self.Trigger(target, args...)
	})
	b.related = append(b.related, obj)
	return nil
}

// Delegate binds DOM handlers on the element. They are dropped at teardown.
func (b *Base) Delegate(hs surface.Handlers) error {
	const op = "view.Delegate"
	if err := b.check(op); err != nil {
		return err
	}
	if err := surface.Delegate(b.el, hs); err != nil {
		return errors.New(op, errors.KindRender, string(b.id), err)
	}
	return nil
}

// CleanTooltips removes every ".tipsy" element inside the view's element.
func (b *Base) CleanTooltips() error {
	const op = "view.CleanTooltips"
	if err := b.check(op); err != nil {
		return err
	}
	tips, err := b.el.Query(".tipsy")
	if err != nil {
		return errors.New(op, errors.KindRender, string(b.id), err)
	}
	for _, tip := range tips {
		tip.Remove()
	}
	return nil
}

// Template returns the render function for the view. The inline
// Options.Template wins; otherwise name, or Options.TemplateName when name
// is empty, is looked up in the context's templates.
func (b *Base) Template(name string) (templates.Func, error) {
	const op = "view.Template"
	if err := b.check(op); err != nil {
		return nil, err
	}
	if b.options.Template != "" {
		return templates.Inline(b.options.Template)
	}
	if name == "" {
		name = b.options.TemplateName
	}
	if b.ctx.templates == nil {
		return nil, errors.New(op, errors.KindMissingTemplate, string(b.id),
			errors.Wrapf(errors.ErrTemplateNotFound, "%q", name))
	}
	return b.ctx.templates.Lookup(name)
}

// RenderTemplate renders data with Template(name) and replaces the
// element's content with the result.
func (b *Base) RenderTemplate(name string, data any) error {
	const op = "view.RenderTemplate"
	fn, err := b.Template(name)
	if err != nil {
		return err
	}
	markup, err := fn(data)
	if err != nil {
		return err
	}
	if err := b.el.SetHTML(markup); err != nil {
		return errors.New(op, errors.KindRender, string(b.id), err)
	}
	return nil
}

// Walk visits b and its owned subtree in pre-order, children ordered by ID.
// Returning false from fn skips that node's subtree.
func (b *Base) Walk(fn func(Node) bool) {
	if b.self == nil || !fn(b.self) {
		return
	}
	for _, child := range b.Children() {
		child.AsView().Walk(fn)
	}
}

// FindAncestor walks up the owner chain and returns the first ancestor
// matching pred.
func (b *Base) FindAncestor(pred func(Node) bool) Node {
	for n := b.Owner(); n != nil; n = n.AsView().Owner() {
		if pred(n) {
			return n
		}
	}
	return nil
}

// Root returns the topmost owner, or the view itself.
func (b *Base) Root() Node {
	root := b.self
	for root != nil && root.AsView().Owner() != nil {
		root = root.AsView().Owner()
	}
	return root
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
