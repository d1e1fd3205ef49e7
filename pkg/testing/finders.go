package testing

import (
	"fmt"
	"reflect"

	"github.com/go-drift/viewkit/pkg/view"
)

// Finder locates views in the view tree.
type Finder interface {
	// Evaluate returns all matching views under root (depth-first pre-order).
	Evaluate(root view.Node) []view.Node
	// Description returns a human-readable description for error messages.
	Description() string
}

// FinderResult wraps finder results with convenient accessors.
type FinderResult struct {
	nodes  []view.Node
	finder Finder
}

// First returns the first match. Panics if no matches.
func (r FinderResult) First() view.Node {
	if len(r.nodes) == 0 {
		panic(fmt.Sprintf("Finder found no views: %s", r.description()))
	}
	return r.nodes[0]
}

// FirstOrNil returns the first match, or nil if none.
func (r FinderResult) FirstOrNil() view.Node {
	if len(r.nodes) == 0 {
		return nil
	}
	return r.nodes[0]
}

// At returns the match at index. Panics if out of range.
func (r FinderResult) At(index int) view.Node {
	if index < 0 || index >= len(r.nodes) {
		panic(fmt.Sprintf("Finder index %d out of range (found %d): %s", index, len(r.nodes), r.description()))
	}
	return r.nodes[index]
}

// All returns all matches in traversal order.
func (r FinderResult) All() []view.Node {
	return r.nodes
}

// Count returns the number of matches.
func (r FinderResult) Count() int {
	return len(r.nodes)
}

// Exists returns true if at least one match was found.
func (r FinderResult) Exists() bool {
	return len(r.nodes) > 0
}

func (r FinderResult) description() string {
	if r.finder == nil {
		return "unknown"
	}
	return r.finder.Description()
}

// --- Concrete finders ---

// typeFinder matches views of the specified type.
type typeFinder struct {
	viewType reflect.Type
	typeName string
}

func (f *typeFinder) Evaluate(root view.Node) []view.Node {
	return collectMatches(root, func(n view.Node) bool {
		return reflect.TypeOf(n) == f.viewType
	})
}

func (f *typeFinder) Description() string {
	return fmt.Sprintf("ByType(%s)", f.typeName)
}

// ByType returns a finder that matches views of type T.
func ByType[T view.Node]() Finder {
	t := reflect.TypeFor[T]()
	return &typeFinder{viewType: t, typeName: t.String()}
}

// idFinder matches the view with the given ID.
type idFinder struct {
	id view.ID
}

func (f *idFinder) Evaluate(root view.Node) []view.Node {
	return collectMatches(root, func(n view.Node) bool {
		return n.AsView().ID() == f.id
	})
}

func (f *idFinder) Description() string {
	return fmt.Sprintf("ByID(%s)", f.id)
}

// ByID returns a finder that matches the view with the given ID.
func ByID(id view.ID) Finder {
	return &idFinder{id: id}
}

// classFinder matches views whose element carries a class.
type classFinder struct {
	class string
}

func (f *classFinder) Evaluate(root view.Node) []view.Node {
	return collectMatches(root, func(n view.Node) bool {
		el := n.AsView().Element()
		return el != nil && el.HasClass(f.class)
	})
}

func (f *classFinder) Description() string {
	return fmt.Sprintf("ByClass(%q)", f.class)
}

// ByClass returns a finder that matches views whose own element has class.
func ByClass(class string) Finder {
	return &classFinder{class: class}
}

// selectorFinder matches views whose rendered content matches a selector.
type selectorFinder struct {
	selector string
}

func (f *selectorFinder) Evaluate(root view.Node) []view.Node {
	return collectMatches(root, func(n view.Node) bool {
		el := n.AsView().Element()
		if el == nil {
			return false
		}
		found, err := el.Query(f.selector)
		return err == nil && len(found) > 0
	})
}

func (f *selectorFinder) Description() string {
	return fmt.Sprintf("BySelector(%q)", f.selector)
}

// BySelector returns a finder that matches views whose element contains
// at least one descendant matching the CSS selector.
func BySelector(selector string) Finder {
	return &selectorFinder{selector: selector}
}

// predicateFinder matches views satisfying a predicate.
type predicateFinder struct {
	fn   func(view.Node) bool
	desc string
}

func (f *predicateFinder) Evaluate(root view.Node) []view.Node {
	return collectMatches(root, f.fn)
}

func (f *predicateFinder) Description() string {
	return f.desc
}

// ByPredicate returns a finder that matches views satisfying fn.
func ByPredicate(fn func(view.Node) bool) Finder {
	return &predicateFinder{fn: fn, desc: "ByPredicate(...)"}
}

// descendantFinder finds views matching 'matching' that are descendants
// of views matching 'of'.
type descendantFinder struct {
	of       Finder
	matching Finder
}

func (f *descendantFinder) Evaluate(root view.Node) []view.Node {
	var results []view.Node
	seen := make(map[view.ID]bool)
	for _, ancestor := range f.of.Evaluate(root) {
		// Search within each ancestor's subtree (skip the ancestor itself)
		for _, child := range ancestor.AsView().Children() {
			for _, match := range f.matching.Evaluate(child) {
				id := match.AsView().ID()
				if !seen[id] {
					seen[id] = true
					results = append(results, match)
				}
			}
		}
	}
	return results
}

func (f *descendantFinder) Description() string {
	return fmt.Sprintf("Descendant(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Descendant returns a finder that matches views satisfying 'matching'
// that are descendants of views matching 'of'.
func Descendant(of, matching Finder) Finder {
	return &descendantFinder{of: of, matching: matching}
}

// ancestorFinder finds views matching 'matching' that are ancestors of
// views matching 'of'.
type ancestorFinder struct {
	of       Finder
	matching Finder
}

func (f *ancestorFinder) Evaluate(root view.Node) []view.Node {
	targets := f.of.Evaluate(root)
	if len(targets) == 0 {
		return nil
	}
	return collectMatches(root, func(candidate view.Node) bool {
		if !isMatch(f.matching, candidate) {
			return false
		}
		for _, target := range targets {
			if isAncestorOf(candidate, target) {
				return true
			}
		}
		return false
	})
}

func (f *ancestorFinder) Description() string {
	return fmt.Sprintf("Ancestor(of: %s, matching: %s)", f.of.Description(), f.matching.Description())
}

// Ancestor returns a finder that matches views satisfying 'matching' that
// are ancestors of views matching 'of'.
func Ancestor(of, matching Finder) Finder {
	return &ancestorFinder{of: of, matching: matching}
}

func isMatch(f Finder, n view.Node) bool {
	matches := f.Evaluate(n)
	return len(matches) > 0 && matches[0].AsView() == n.AsView()
}

func isAncestorOf(ancestor, descendant view.Node) bool {
	return descendant.AsView().FindAncestor(func(n view.Node) bool {
		return n.AsView() == ancestor.AsView()
	}) != nil
}

func collectMatches(root view.Node, predicate func(view.Node) bool) []view.Node {
	var results []view.Node
	root.AsView().Walk(func(n view.Node) bool {
		if predicate(n) {
			results = append(results, n)
		}
		return true
	})
	return results
}
