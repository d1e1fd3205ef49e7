package legend

import (
	"github.com/samber/lo"

	"github.com/go-drift/viewkit/pkg/errors"
	"github.com/go-drift/viewkit/pkg/events"
	"github.com/go-drift/viewkit/pkg/surface"
	"github.com/go-drift/viewkit/pkg/view"
)

const (
	// TemplateName is the default template of the bubble legend.
	TemplateName = "legend/bubble"
	// ClassName is the default class of the legend element.
	ClassName = "Bubble-legend"
	// ItemSelector matches the rendered bubbles.
	ItemSelector = ".js-bubbleItem"
	// FilterClass dims the bubbles that are not hovered.
	FilterClass = "is-filter"

	eventModelChange = "model:change"
)

// Bubble renders a Model as a bubble legend and re-renders on every model
// change.
type Bubble struct {
	view.Base

	model  *Model
	format Formatter
}

// RenderData is the data bag passed to the legend template.
type RenderData struct {
	Labels    []string
	Sizes     []float64
	Positions []float64
	Average   float64
	AvgLabel  string
	FillColor string
}

// NewBubble constructs a legend over model. The legend does not render
// until Render is called or the model changes.
func NewBubble(ctx *view.Context, model *Model, opts view.Options) (*Bubble, error) {
	const op = "legend.NewBubble"
	if model == nil {
		return nil, errors.Programmer(op, "", errors.ErrNilModel)
	}
	b := &Bubble{model: model, format: FormatNumber}
	if err := view.Init(ctx, b, opts, view.Options{ClassName: ClassName, TemplateName: TemplateName}); err != nil {
		return nil, err
	}
	if err := b.RelayEvent(EventChange, model, eventModelChange); err != nil {
		b.Teardown()
		return nil, err
	}
	b.On(eventModelChange, events.Tag(b.ID()), func(...any) {
		if err := b.Render(); err != nil {
			reportRender(err, b)
		}
	})
	err := b.Delegate(surface.Handlers{
		"mouseover " + ItemSelector: b.onBubbleHover,
		"mouseout " + ItemSelector:  b.onBubbleOut,
	})
	if err != nil {
		b.Teardown()
		return nil, err
	}
	return b, nil
}

// Model returns the observed model.
func (b *Bubble) Model() *Model {
	return b.model
}

// SetFormatter replaces the label formatter. A nil f restores FormatNumber.
func (b *Bubble) SetFormatter(f Formatter) {
	if f == nil {
		f = FormatNumber
	}
	b.format = f
}

// Data computes the template data for the current model content.
func (b *Bubble) Data() (RenderData, error) {
	d := b.model.Data()
	_, values, err := DisplayOrder(d)
	if err != nil {
		return RenderData{}, err
	}
	sizes, err := RelativeSizes(d)
	if err != nil {
		return RenderData{}, err
	}
	avg, err := RelativeAverage(d)
	if err != nil {
		return RenderData{}, err
	}
	return RenderData{
		Labels:    lo.Map(values, func(v float64, _ int) string { return b.format(v) }),
		Sizes:     sizes,
		Positions: append(sizes[:len(sizes):len(sizes)], 0),
		Average:   avg,
		AvgLabel:  b.format(d.Avg),
		FillColor: NormalizeColor(d.FillColor),
	}, nil
}

// Render replaces the element's content with the rendered legend.
func (b *Bubble) Render() error {
	data, err := b.Data()
	if err != nil {
		return err
	}
	return b.RenderTemplate("", data)
}

func (b *Bubble) onBubbleHover(ev *surface.Event) {
	items, err := b.Element().Query(ItemSelector)
	if err != nil {
		return
	}
	for _, item := range items {
		item.AddClass(FilterClass)
	}
	ev.Current.RemoveClass(FilterClass)
}

func (b *Bubble) onBubbleOut(*surface.Event) {
	items, err := b.Element().Query(ItemSelector)
	if err != nil {
		return
	}
	for _, item := range items {
		item.RemoveClass(FilterClass)
	}
}

func reportRender(err error, b *Bubble) {
	var verr *errors.ViewError
	if !errors.As(err, &verr) {
		verr = errors.New("legend.Render", errors.KindRender, string(b.ID()), err)
	}
	errors.Report(verr)
	b.Context().Logger().Warn("legend render failed", "id", b.ID(), "err", err)
}
