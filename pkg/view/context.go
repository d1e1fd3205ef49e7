package view

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/go-drift/viewkit/pkg/metrics"
	"github.com/go-drift/viewkit/pkg/surface"
	"github.com/go-drift/viewkit/pkg/templates"
)

// Clock provides the current time for CreatedAt stamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// Context is the registry of live views together with the collaborators
// every view in it shares.
//
// Registry state is guarded by a mutex and no callback runs under it. Tree
// mutation is not atomic across nodes: attach, detach and teardown must be
// confined to one goroutine.
type Context struct {
	mu    sync.Mutex
	nodes map[ID]Node
	live  int
	depth int

	recorder  metrics.Recorder
	clock     Clock
	newID     func() ID
	surfaces  surface.Factory
	templates templates.Engine
	logger    *slog.Logger
	defaults  Options
	debug     bool
}

// ContextOption configures a Context.
type ContextOption func(*Context)

// WithRecorder sets the instrumentation hook. It is wrapped with
// metrics.Safe so a failing recorder never reaches the view lifecycle.
func WithRecorder(r metrics.Recorder) ContextOption {
	return func(c *Context) { c.recorder = metrics.Safe(r) }
}

// WithClock sets the clock used for CreatedAt.
func WithClock(clock Clock) ContextOption {
	return func(c *Context) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithIDs sets the ID generator. Generated IDs must be unique within the
// context.
func WithIDs(gen func() ID) ContextOption {
	return func(c *Context) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithSurfaceFactory sets the factory that creates view elements.
func WithSurfaceFactory(f surface.Factory) ContextOption {
	return func(c *Context) {
		if f != nil {
			c.surfaces = f
		}
	}
}

// WithTemplates sets the templating collaborator.
func WithTemplates(e templates.Engine) ContextOption {
	return func(c *Context) { c.templates = e }
}

// WithLogger sets the logger for lifecycle debug output.
func WithLogger(l *slog.Logger) ContextOption {
	return func(c *Context) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithDefaults sets context-wide option defaults, applied beneath each
// widget's own defaults.
func WithDefaults(o Options) ContextOption {
	return func(c *Context) { c.defaults = o }
}

// WithDebug enables the untracked-view audit after every top-level teardown.
func WithDebug(on bool) ContextOption {
	return func(c *Context) { c.debug = on }
}

// NewContext returns an empty registry. Without options it uses UUID
// identifiers, the system clock, [surface.DefaultFactory], the embedded
// default templates and a no-op recorder.
func NewContext(opts ...ContextOption) *Context {
	c := &Context{
		nodes:     make(map[ID]Node),
		recorder:  metrics.Nop{},
		clock:     systemClock{},
		newID:     func() ID { return ID(uuid.NewString()) },
		surfaces:  surface.DefaultFactory,
		templates: defaultTemplates(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultTemplates = sync.OnceValue(func() templates.Engine {
	set, err := templates.NewDefault()
	if err != nil {
		panic(err)
	}
	return set
})

var (
	defaultOnce sync.Once
	defaultCtx  *Context
)

// Default returns the process-wide context used when a nil context is
// passed to Init or New.
func Default() *Context {
	defaultOnce.Do(func() {
		defaultCtx = NewContext()
	})
	return defaultCtx
}

// Register adds n to the registry and returns the new live count. A node
// already registered is not counted twice.
func (c *Context) Register(n Node) int {
	id := n.AsView().id
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[id]; !ok {
		c.nodes[id] = n
		c.live++
	}
	return c.live
}

// Unregister removes id and returns the new live count and whether id was
// registered. The count never goes negative.
func (c *Context) Unregister(id ID) (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.nodes[id]; !ok {
		return c.live, false
	}
	delete(c.nodes, id)
	c.live--
	return c.live, true
}

// LiveCount returns the number of constructed, not yet torn down views.
func (c *Context) LiveCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.live
}

// Lookup returns the live view registered under id.
func (c *Context) Lookup(id ID) (Node, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	n, ok := c.nodes[id]
	return n, ok
}

// Nodes returns a snapshot of the live views, ordered by ID.
func (c *Context) Nodes() []Node {
	c.mu.Lock()
	nodes := lo.Values(c.nodes)
	c.mu.Unlock()
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].AsView().id < nodes[j].AsView().id
	})
	return nodes
}

// Debug reports whether the audit runs after top-level teardowns.
func (c *Context) Debug() bool {
	return c.debug
}

// Templates returns the templating collaborator.
func (c *Context) Templates() templates.Engine {
	return c.templates
}

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger {
	return c.logger
}

// enterTeardown and exitTeardown bracket a teardown; exitTeardown reports
// whether the outermost one finished.
func (c *Context) enterTeardown() {
	c.mu.Lock()
	c.depth++
	c.mu.Unlock()
}

func (c *Context) exitTeardown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.depth--
	return c.depth == 0
}
