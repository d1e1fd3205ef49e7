package view

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/go-drift/viewkit/pkg/errors"
)

// Ref is a non-owning handle to a view. Holding a Ref instead of a Node
// keeps the audit quiet and lets the referenced view be torn down freely.
type Ref struct {
	id ID
}

// RefTo returns a handle to n.
func RefTo(n Node) Ref {
	if isNil(n) {
		return Ref{}
	}
	return Ref{id: n.AsView().id}
}

// ID returns the referenced view's ID.
func (r Ref) ID() ID {
	return r.id
}

// Resolve returns the referenced view if it is still live in ctx.
func (r Ref) Resolve(ctx *Context) (Node, bool) {
	if r.id == "" || ctx == nil {
		return nil, false
	}
	return ctx.Lookup(r.id)
}

// Resolve returns the view behind r as a T.
func Resolve[T Node](ctx *Context, r Ref) (T, bool) {
	var zero T
	n, ok := r.Resolve(ctx)
	if !ok {
		return zero, false
	}
	t, ok := n.(T)
	return t, ok
}

var baseType = reflect.TypeFor[Base]()

// AuditUntracked reports every live view held in a struct field of another
// live view without being one of its children. Fields of embedded structs
// and elements of slices and arrays are inspected; the parent
// back-reference is not. Findings go to the error handler and are returned;
// they are advisory.
func (c *Context) AuditUntracked() []*errors.LeakFinding {
	nodes := c.Nodes()
	byAddr := make(map[uintptr]Node, len(nodes))
	for _, n := range nodes {
		if v := reflect.ValueOf(n); v.Kind() == reflect.Pointer {
			byAddr[v.Pointer()] = n
		}
	}

	now := c.clock.Now()
	var findings []*errors.LeakFinding
	for _, n := range nodes {
		v := reflect.ValueOf(n)
		if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
			continue
		}
		holder := n.AsView()
		scanFields(v.Elem(), "", func(field string, addr uintptr) {
			held, ok := byAddr[addr]
			if !ok || held.AsView() == holder || holder.HasChild(held.AsView().id) {
				return
			}
			findings = append(findings, &errors.LeakFinding{
				Parent:     string(holder.id),
				ParentType: fmt.Sprintf("%T", n),
				Field:      field,
				Child:      string(held.AsView().id),
				Timestamp:  now,
			})
		})
	}

	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Parent != findings[j].Parent {
			return findings[i].Parent < findings[j].Parent
		}
		return findings[i].Field < findings[j].Field
	})
	for _, f := range findings {
		errors.ReportFinding(f)
	}
	return findings
}

func scanFields(v reflect.Value, prefix string, visit func(field string, addr uintptr)) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if sf.Type == baseType {
			continue
		}
		fv := v.Field(i)
		if sf.Anonymous && fv.Kind() == reflect.Struct {
			scanFields(fv, prefix+sf.Name+".", visit)
			continue
		}
		scanValue(fv, prefix+sf.Name, visit)
	}
}

func scanValue(v reflect.Value, name string, visit func(field string, addr uintptr)) {
	switch v.Kind() {
	case reflect.Interface:
		if !v.IsNil() {
			scanValue(v.Elem(), name, visit)
		}
	case reflect.Pointer:
		if !v.IsNil() {
			visit(name, v.Pointer())
		}
	case reflect.Slice, reflect.Array:
		switch v.Type().Elem().Kind() {
		case reflect.Pointer, reflect.Interface:
		default:
			return
		}
		for i := 0; i < v.Len(); i++ {
			scanValue(v.Index(i), fmt.Sprintf("%s[%d]", name, i), visit)
		}
	}
}
