// Package testing provides a view testing harness for viewkit.
//
// # Quick Start
//
// Create a tester, construct views in its context, and make assertions:
//
//	func TestMyLegend(t *testing.T) {
//	    tester := viewtest.NewViewTesterWithT(t)
//	    model := legend.NewModel(legend.Data{Sizes: []float64{4, 2}, Values: []float64{10, 5}})
//	    bubble, _ := legend.NewBubble(tester.Context(), model, view.Options{})
//	    bubble.Render()
//
//	    // Find views
//	    found := tester.Find(viewtest.ByType[*legend.Bubble]()).First()
//
//	    // Simulate DOM events
//	    tester.Hover(found, ".js-bubbleItem", 0)
//
//	    // Inspect reported errors and recorded metrics
//	    if len(tester.Errors().Errors()) != 0 {
//	        t.Error("unexpected error")
//	    }
//	}
//
// Every tester owns an isolated [view.Context] with sequential IDs, a
// [FakeClock], an in-memory metrics recorder and a [Capture] installed as
// the global error handler. Cleanup tears down every live view and
// restores the default handler.
//
// # Snapshot Testing
//
// Capture and compare rendered markup:
//
//	snapshot := tester.CaptureSnapshot(bubble)
//	snapshot.MatchesFile(t, "testdata/bubble.snapshot.html")
//
// Update snapshots with:
//
//	VIEWKIT_UPDATE_SNAPSHOTS=1 go test ./...
package testing
