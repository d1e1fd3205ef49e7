package testing

import (
	"testing"

	"github.com/go-drift/viewkit/pkg/view"
)

type marker struct {
	view.Base
}

func newMarker(t *testing.T, tester *ViewTester, opts view.Options) *marker {
	t.Helper()
	m := &marker{}
	if err := view.Init(tester.Context(), m, opts, view.Options{}); err != nil {
		t.Fatal(err)
	}
	return m
}

func buildTree(t *testing.T) (*ViewTester, *view.View, *marker, *marker) {
	t.Helper()
	tester := NewViewTesterWithT(t)
	root, _ := view.New(tester.Context(), view.Options{ClassName: "root"})
	inner := newMarker(t, tester, view.Options{ClassName: "inner"})
	leaf := newMarker(t, tester, view.Options{Template: `<i class="tipsy"></i>`})
	if err := root.AttachChild(inner); err != nil {
		t.Fatal(err)
	}
	if err := inner.AttachChild(leaf); err != nil {
		t.Fatal(err)
	}
	if err := leaf.RenderTemplate("", nil); err != nil {
		t.Fatal(err)
	}
	return tester, root, inner, leaf
}

func TestFinders_ByTypeAndID(t *testing.T) {
	tester, root, inner, leaf := buildTree(t)

	markers := tester.Find(ByType[*marker]())
	if markers.Count() != 2 {
		t.Fatalf("expected 2 markers, got %d", markers.Count())
	}
	if markers.At(0) != view.Node(inner) || markers.At(1) != view.Node(leaf) {
		t.Error("expected pre-order traversal")
	}

	if got := tester.Find(ByID(root.ID())).First(); got != view.Node(root) {
		t.Errorf("ByID found %v", got)
	}
	if tester.Find(ByID("missing")).Exists() {
		t.Error("expected no match for unknown ID")
	}
	if tester.Find(ByID("missing")).FirstOrNil() != nil {
		t.Error("expected FirstOrNil to return nil")
	}
}

func TestFinders_ClassAndSelector(t *testing.T) {
	tester, root, inner, leaf := buildTree(t)

	if got := tester.Find(ByClass("inner")).All(); len(got) != 1 || got[0] != view.Node(inner) {
		t.Errorf("ByClass found %v", got)
	}
	if got := tester.Find(BySelector(".tipsy")).All(); len(got) != 1 || got[0] != view.Node(leaf) {
		t.Errorf("BySelector found %v", got)
	}

	if err := leaf.CleanTooltips(); err != nil {
		t.Fatal(err)
	}
	if tester.Find(BySelector(".tipsy")).Exists() {
		t.Error("expected tooltips removed")
	}
	_ = root
}

func TestFinders_DescendantAndAncestor(t *testing.T) {
	tester, root, inner, leaf := buildTree(t)

	desc := tester.Find(Descendant(ByClass("root"), ByType[*marker]()))
	if desc.Count() != 2 {
		t.Errorf("expected 2 descendants, got %d", desc.Count())
	}

	anc := tester.Find(Ancestor(ByID(leaf.ID()), ByPredicate(func(view.Node) bool { return true })))
	if anc.Count() != 2 || anc.At(0) != view.Node(root) || anc.At(1) != view.Node(inner) {
		t.Errorf("unexpected ancestors %v", anc.All())
	}
}

func TestFinderResult_FirstPanicsWhenEmpty(t *testing.T) {
	tester := NewViewTesterWithT(t)
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	tester.Find(ByClass("none")).First()
}
