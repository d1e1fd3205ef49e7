package legend

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"
	"golang.org/x/image/colornames"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/go-drift/viewkit/pkg/errors"
)

// DisplayOrder returns copies of the sizes and values, both reversed when
// the first size is smaller than the last, so that the largest bubble
// comes first. Index alignment between the two is kept.
func DisplayOrder(d Data) (sizes, values []float64, err error) {
	const op = "legend.DisplayOrder"
	if len(d.Sizes) == 0 {
		return nil, nil, degenerate(op, "no sizes")
	}
	if len(d.Sizes) != len(d.Values) {
		return nil, nil, degenerate(op, "%d sizes for %d values", len(d.Sizes), len(d.Values))
	}
	sizes = slices.Clone(d.Sizes)
	values = slices.Clone(d.Values)
	if sizes[0] < sizes[len(sizes)-1] {
		lo.Reverse(sizes)
		lo.Reverse(values)
	}
	return sizes, values, nil
}

// RelativeSizes returns each ordered size as a percentage of the first.
// The first entry is exactly 100.
func RelativeSizes(d Data) ([]float64, error) {
	sizes, _, err := DisplayOrder(d)
	if err != nil {
		return nil, err
	}
	maxSize := sizes[0]
	if maxSize == 0 {
		return nil, degenerate("legend.RelativeSizes", "largest size is zero")
	}
	return lo.Map(sizes, func(size float64, i int) float64 {
		if i == 0 {
			return 100
		}
		return size * 100 / maxSize
	}), nil
}

// LabelPositions returns RelativeSizes followed by the 0 baseline.
func LabelPositions(d Data) ([]float64, error) {
	rel, err := RelativeSizes(d)
	if err != nil {
		return nil, err
	}
	return append(rel, 0), nil
}

// RelativeAverage returns Avg as a percentage of the first ordered value.
func RelativeAverage(d Data) (float64, error) {
	_, values, err := DisplayOrder(d)
	if err != nil {
		return 0, err
	}
	if values[0] == 0 {
		return 0, degenerate("legend.RelativeAverage", "first value is zero")
	}
	return d.Avg * 100 / values[0], nil
}

func degenerate(op, format string, args ...any) error {
	return errors.New(op, errors.KindDegenerateInput, "",
		errors.Wrapf(errors.ErrDegenerateInput, format, args...))
}

// Formatter turns a value into a label.
type Formatter func(v float64) string

// FormatNumber formats v as an English decimal with digit grouping and at
// most two fraction digits.
func FormatNumber(v float64) string {
	p := message.NewPrinter(language.English)
	return p.Sprint(number.Decimal(v, number.MaxFractionDigits(2)))
}

// NormalizeColor maps an SVG color name to its #rrggbb form. Anything else
// is returned unchanged.
func NormalizeColor(c string) string {
	rgba, ok := colornames.Map[strings.ToLower(strings.TrimSpace(c))]
	if !ok {
		return c
	}
	return fmt.Sprintf("#%02x%02x%02x", rgba.R, rgba.G, rgba.B)
}
