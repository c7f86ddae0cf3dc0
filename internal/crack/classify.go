package crack

import (
	"fmt"
	"math"
)

// Unknown is the label for values no range covers.
const Unknown = "Unknown"

// Range is a half-open interval [Low, High) with a label.
type Range struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Label string  `json:"label"`
}

// Contains reports whether Low <= v < High.
func (r Range) Contains(v float64) bool {
	return r.Low <= v && v < r.High
}

// Table is an ordered list of ranges. Ranges may leave gaps; values in a
// gap classify as Unknown.
type Table []Range

// DefaultTable returns the crack width classes in millimetres. The last
// class is unbounded above.
func DefaultTable() Table {
	return Table{
		{Low: 0, High: 0.3, Label: "Hairline"},
		{Low: 0.3, High: 1.0, Label: "Fine"},
		{Low: 1.0, High: 3.0, Label: "Medium"},
		{Low: 3.0, High: math.Inf(1), Label: "Wide"},
	}
}

// Classify returns the label of the first range containing v, or Unknown.
func (t Table) Classify(v float64) string {
	for _, r := range t {
		if r.Contains(v) {
			return r.Label
		}
	}
	return Unknown
}

// Labels returns the labels in table order.
func (t Table) Labels() []string {
	labels := make([]string, len(t))
	for i, r := range t {
		labels[i] = r.Label
	}
	return labels
}

// Validate checks that every range is non-empty and labelled.
func (t Table) Validate() error {
	for i, r := range t {
		if r.Label == "" {
			return fmt.Errorf("range %d has no label", i)
		}
		if math.IsNaN(r.Low) || math.IsNaN(r.High) || !(r.Low < r.High) {
			return fmt.Errorf("range %q is empty: [%v, %v)", r.Label, r.Low, r.High)
		}
	}
	return nil
}
