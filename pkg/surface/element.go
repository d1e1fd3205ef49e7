package surface

import (
	"slices"
	"strings"
	"sync"

	"github.com/ericchiang/css"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/viewkit/pkg/errors"
)

// Element is a Surface over an x/net/html node. Elements returned by Query
// share their root's document and listener table.
type Element struct {
	node *html.Node
	doc  *document
}

type document struct {
	mu        sync.Mutex
	root      *html.Node
	delegates []delegate
	removed   bool
}

type delegate struct {
	event    string
	selector *css.Selector
	fn       EventHandler
}

// New creates a detached root element.
func New(tag string, classes ...string) *Element {
	if tag == "" {
		tag = "div"
	}
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}
	e := &Element{node: n, doc: &document{root: n}}
	e.AddClass(classes...)
	return e
}

// Node exposes the underlying html node.
func (e *Element) Node() *html.Node {
	return e.node
}

// Tag returns the element's tag name.
func (e *Element) Tag() string {
	return e.node.Data
}

// Attr returns the value of an attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.node.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets an attribute, replacing any previous value.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.node.Attr {
		if a.Key == name {
			e.node.Attr[i].Val = value
			return
		}
	}
	e.node.Attr = append(e.node.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr deletes an attribute.
func (e *Element) RemoveAttr(name string) {
	e.node.Attr = slices.DeleteFunc(e.node.Attr, func(a html.Attribute) bool {
		return a.Key == name
	})
}

func (e *Element) Show() {
	e.RemoveAttr("hidden")
}

func (e *Element) Hide() {
	e.SetAttr("hidden", "")
}

func (e *Element) Visible() bool {
	_, hidden := e.Attr("hidden")
	return !hidden
}

func (e *Element) Remove() {
	if e.node.Parent != nil {
		e.node.Parent.RemoveChild(e.node)
	}
	if e.node == e.doc.root {
		e.doc.mu.Lock()
		e.doc.removed = true
		e.doc.delegates = nil
		e.doc.mu.Unlock()
	}
}

func (e *Element) Removed() bool {
	e.doc.mu.Lock()
	removed := e.doc.removed
	e.doc.mu.Unlock()
	if removed {
		return true
	}
	for n := e.node; n != nil; n = n.Parent {
		if n == e.doc.root {
			return false
		}
	}
	return true
}

// Query returns the descendants of e matching selector, in document order.
func (e *Element) Query(selector string) ([]Surface, error) {
	sel, err := css.Parse(selector)
	if err != nil {
		return nil, errors.Wrapf(err, "surface: parse selector %q", selector)
	}
	var out []Surface
	for _, n := range sel.Select(e.node) {
		if n == e.node {
			continue
		}
		out = append(out, &Element{node: n, doc: e.doc})
	}
	return out, nil
}

func (e *Element) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

func (e *Element) AddClass(names ...string) {
	cls := e.classes()
	changed := false
	for _, name := range names {
		if name == "" || slices.Contains(cls, name) {
			continue
		}
		cls = append(cls, name)
		changed = true
	}
	if changed {
		e.SetAttr("class", strings.Join(cls, " "))
	}
}

func (e *Element) RemoveClass(names ...string) {
	if _, ok := e.Attr("class"); !ok {
		return
	}
	cls := slices.DeleteFunc(e.classes(), func(c string) bool {
		return slices.Contains(names, c)
	})
	if len(cls) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(cls, " "))
}

func (e *Element) HasClass(name string) bool {
	return slices.Contains(e.classes(), name)
}

func (e *Element) SetHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.node)
	if err != nil {
		return errors.Wrapf(err, "surface: parse markup")
	}
	for c := e.node.FirstChild; c != nil; {
		next := c.NextSibling
		e.node.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		e.node.AppendChild(n)
	}
	return nil
}

func (e *Element) HTML() string {
	var sb strings.Builder
	for c := e.node.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&sb, c)
	}
	return sb.String()
}

// OuterHTML serializes the element including its own tag.
func (e *Element) OuterHTML() string {
	var sb strings.Builder
	_ = html.Render(&sb, e.node)
	return sb.String()
}

// Text returns the concatenated text content.
func (e *Element) Text() string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(e.node)
	return sb.String()
}

// AppendChild moves child's root node under e. child must be a root
// element; it keeps its own listener table.
func (e *Element) AppendChild(child *Element) {
	if child.node.Parent != nil {
		child.node.Parent.RemoveChild(child.node)
	}
	e.node.AppendChild(child.node)
}

func (e *Element) On(event, selector string, fn EventHandler) error {
	if fn == nil {
		return nil
	}
	d := delegate{event: event, fn: fn}
	if selector != "" {
		sel, err := css.Parse(selector)
		if err != nil {
			return errors.Wrapf(err, "surface: parse selector %q", selector)
		}
		d.selector = sel
	}
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	if e.doc.removed {
		return nil
	}
	e.doc.delegates = append(e.doc.delegates, d)
	return nil
}

func (e *Element) OffAll() {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	e.doc.delegates = nil
}

// ListenerCount returns the number of delegated listeners on the document.
func (e *Element) ListenerCount() int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.doc.delegates)
}

// Dispatch delivers event at target, which must belong to e's document,
// and bubbles it up to the root. Selector listeners run for every matching
// node on the path below the root; selector-less listeners run at the root.
func (e *Element) Dispatch(event string, target Surface) *Event {
	ev := &Event{Type: event, Target: target}
	t, ok := target.(*Element)
	if !ok || t.doc != e.doc {
		return ev
	}

	e.doc.mu.Lock()
	if e.doc.removed {
		e.doc.mu.Unlock()
		return ev
	}
	var ds []delegate
	for _, d := range e.doc.delegates {
		if d.event == event {
			ds = append(ds, d)
		}
	}
	root := e.doc.root
	e.doc.mu.Unlock()
	if len(ds) == 0 {
		return ev
	}

	matches := make(map[*css.Selector]map[*html.Node]bool)
	matched := func(sel *css.Selector, n *html.Node) bool {
		set, ok := matches[sel]
		if !ok {
			set = make(map[*html.Node]bool)
			for _, m := range sel.Select(root) {
				set[m] = true
			}
			matches[sel] = set
		}
		return set[n]
	}

	for n := t.node; n != nil; n = n.Parent {
		for _, d := range ds {
			switch {
			case d.selector == nil && n == root:
			case d.selector != nil && n != root && matched(d.selector, n):
			default:
				continue
			}
			ev.Current = &Element{node: n, doc: e.doc}
			d.fn(ev)
			if ev.stopped {
				return ev
			}
		}
		if n == root {
			break
		}
	}
	return ev
}
