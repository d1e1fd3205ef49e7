package testing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/viewkit/pkg/view"
)

// UpdateEnv names the environment variable that switches MatchesFile to
// rewriting golden files.
const UpdateEnv = "VIEWKIT_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Snapshot captures a view's rendered markup, one element or text run per
// line and indented by depth, so that golden-file diffs stay readable.
type Snapshot struct {
	Markup string
}

// CaptureSnapshot captures the current content of v's element.
func (t *ViewTester) CaptureSnapshot(v view.Node) *Snapshot {
	el := v.AsView().Element()
	if el == nil {
		return &Snapshot{}
	}
	return NewSnapshot(el.HTML())
}

// NewSnapshot normalizes markup into a snapshot.
func NewSnapshot(markup string) *Snapshot {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	})
	if err != nil {
		return &Snapshot{Markup: markup}
	}
	var sb strings.Builder
	for _, n := range nodes {
		writeNode(&sb, n, 0)
	}
	return &Snapshot{Markup: sb.String()}
}

func writeNode(sb *strings.Builder, n *html.Node, depth int) {
	indent := strings.Repeat("  ", depth)
	switch n.Type {
	case html.TextNode:
		if text := strings.TrimSpace(n.Data); text != "" {
			fmt.Fprintf(sb, "%s%s\n", indent, html.EscapeString(text))
		}
		return
	case html.ElementNode:
		sb.WriteString(indent + "<" + n.Data)
		for _, a := range n.Attr {
			fmt.Fprintf(sb, " %s=%q", a.Key, a.Val)
		}
		sb.WriteString(">\n")
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			writeNode(sb, c, depth+1)
		}
		fmt.Fprintf(sb, "%s</%s>\n", indent, n.Data)
	}
}

// MatchesFile compares this snapshot against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// VIEWKIT_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(&Snapshot{Markup: string(expected)}); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this snapshot to the given path, creating directories
// as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s.Markup), 0o644)
}

// Diff returns a unified line diff between this snapshot and other. Returns
// empty string if equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	if s.Markup == other.Markup {
		return ""
	}
	return unifiedDiff(other.Markup, s.Markup)
}

func unifiedDiff(expected, actual string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(expected),
		B:        difflib.SplitLines(actual),
		FromFile: "expected",
		ToFile:   "actual",
		Context:  3,
	})
	if err != nil {
		return fmt.Sprintf("diff failed: %v", err)
	}
	return diff
}
