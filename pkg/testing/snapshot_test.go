package testing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-drift/viewkit/pkg/view"
)

func TestNewSnapshot_Normalizes(t *testing.T) {
	snap := NewSnapshot(`<ul class="a"><li>one</li>  <li>two</li></ul>`)
	want := strings.Join([]string{
		`<ul class="a">`,
		`  <li>`,
		`    one`,
		`  </li>`,
		`  <li>`,
		`    two`,
		`  </li>`,
		`</ul>`,
		``,
	}, "\n")
	if snap.Markup != want {
		t.Errorf("unexpected snapshot:\n%s", snap.Markup)
	}
}

func TestSnapshot_RoundTrip(t *testing.T) {
	t.Setenv(UpdateEnv, "")
	tester := NewViewTesterWithT(t)
	v, _ := view.New(tester.Context(), view.Options{Template: `<p>hello</p>`})
	if err := v.RenderTemplate("", nil); err != nil {
		t.Fatal(err)
	}
	snap := tester.CaptureSnapshot(v)

	path := filepath.Join(t.TempDir(), "view.snapshot.html")
	if err := snap.UpdateFile(path); err != nil {
		t.Fatal(err)
	}
	snap.MatchesFile(t, path)
}

func TestSnapshot_MatchesFile_Missing(t *testing.T) {
	t.Setenv(UpdateEnv, "")
	snap := NewSnapshot(`<p>x</p>`)

	failed := false
	sub := &fatalRecorder{name: t.Name(), onFatal: func() { failed = true }}
	snap.MatchesFile(sub, "/nonexistent/path/snap.html")

	if !failed {
		t.Error("expected MatchesFile to fail for missing file")
	}
}

func TestSnapshot_MatchesFile_Mismatch(t *testing.T) {
	t.Setenv(UpdateEnv, "")
	path := filepath.Join(t.TempDir(), "snap.html")
	if err := NewSnapshot(`<p>first</p>`).UpdateFile(path); err != nil {
		t.Fatal(err)
	}

	errored := false
	sub := &errorRecorder{name: t.Name(), onError: func() { errored = true }}
	NewSnapshot(`<p>second</p>`).MatchesFile(sub, path)

	if !errored {
		t.Error("expected MatchesFile to report error for mismatch")
	}
}

func TestSnapshot_UpdateMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "update.snapshot.html")

	t.Setenv(UpdateEnv, "1")
	NewSnapshot(`<b>x</b>`).MatchesFile(t, path)

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("snapshot file should be created in update mode")
	}
}

func TestSnapshot_Diff(t *testing.T) {
	a := &Snapshot{Markup: "x\ny\n"}
	b := &Snapshot{Markup: "x\nz\n"}
	if a.Diff(a) != "" {
		t.Error("expected empty diff for equal snapshots")
	}
	diff := b.Diff(a)
	if !strings.Contains(diff, "-y") || !strings.Contains(diff, "+z") {
		t.Errorf("unexpected diff:\n%s", diff)
	}
}

func TestSnapshot_DiffInsertedLine(t *testing.T) {
	expected := &Snapshot{Markup: "a\nb\nc\nd\n"}
	actual := &Snapshot{Markup: "a\nx\nb\nc\nd\n"}

	diff := actual.Diff(expected)
	if !strings.Contains(diff, "+x\n") {
		t.Errorf("expected inserted line in diff:\n%s", diff)
	}
	for _, line := range []string{"-b", "-c", "-d", "+b", "+c", "+d"} {
		if strings.Contains(diff, "\n"+line+"\n") {
			t.Errorf("unchanged line reported as %q:\n%s", line, diff)
		}
	}
	if !strings.HasPrefix(diff, "--- expected\n+++ actual\n") {
		t.Errorf("missing diff header:\n%s", diff)
	}
}

// fatalRecorder intercepts Fatalf calls for testing MatchesFile failures.
type fatalRecorder struct {
	name    string
	onFatal func()
}

func (r *fatalRecorder) Fatalf(format string, args ...any) { r.onFatal() }
func (r *fatalRecorder) Errorf(format string, args ...any) {}
func (r *fatalRecorder) Helper()                           {}
func (r *fatalRecorder) Name() string                      { return r.name }

// errorRecorder intercepts Errorf calls for testing MatchesFile mismatches.
type errorRecorder struct {
	name    string
	onError func()
}

func (r *errorRecorder) Fatalf(format string, args ...any) {}
func (r *errorRecorder) Errorf(format string, args ...any) { r.onError() }
func (r *errorRecorder) Helper()                           {}
func (r *errorRecorder) Name() string                      { return r.name }
