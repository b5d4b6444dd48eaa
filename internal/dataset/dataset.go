// Package dataset holds the encoded representation every oversampling
// component works on: a shared attribute header and a list of numeric
// examples labelled by class index.
package dataset

import (
	"fmt"
	"math"
	"strconv"
)

// Kind governs how synthetic values are produced for an attribute.
type Kind uint8

const (
	KindNumeric Kind = iota
	KindNominal
	KindOther
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindNominal:
		return "nominal"
	default:
		return "other"
	}
}

// Missing returns the sentinel stored for unknown attribute values and labels.
func Missing() float64 {
	return math.NaN()
}

// IsMissing reports whether v is the missing value sentinel.
func IsMissing(v float64) bool {
	return math.IsNaN(v)
}

type Attribute struct {
	Name string
	Kind Kind
}

// Example is a fixed-length attribute vector with a class label. Examples are
// never modified after construction; producers build new ones.
type Example struct {
	Values    []float64
	Label     float64
	Weight    float64
	Synthetic bool
}

// NewExample returns an original (non-synthetic) example with weight 1.
func NewExample(values []float64, label float64) Example {
	return Example{Values: values, Label: label, Weight: 1}
}

// HasLabel reports whether the class label is known.
func (e Example) HasLabel() bool {
	return !IsMissing(e.Label)
}

// Dataset is an ordered list of examples sharing one attribute header.
type Dataset struct {
	Attributes []Attribute
	Classes    []string
	Examples   []Example
}

func New(attrs []Attribute, classes []string, examples ...Example) *Dataset {
	return &Dataset{Attributes: attrs, Classes: classes, Examples: examples}
}

func (d *Dataset) Len() int {
	return len(d.Examples)
}

func (d *Dataset) NumAttributes() int {
	return len(d.Attributes)
}

// Empty returns a dataset with the same header and no examples.
func (d *Dataset) Empty() *Dataset {
	return &Dataset{Attributes: d.Attributes, Classes: d.Classes}
}

// Clone copies the example list. Example values are shared since examples are
// immutable.
func (d *Dataset) Clone() *Dataset {
	examples := make([]Example, len(d.Examples))
	copy(examples, d.Examples)
	return &Dataset{Attributes: d.Attributes, Classes: d.Classes, Examples: examples}
}

// Append adds examples after checking their width against the header.
func (d *Dataset) Append(examples ...Example) error {
	for _, e := range examples {
		if len(e.Values) != len(d.Attributes) {
			return fmt.Errorf("example has %d values, dataset has %d attributes", len(e.Values), len(d.Attributes))
		}
	}
	d.Examples = append(d.Examples, examples...)
	return nil
}

// WithoutMissingLabels returns a copy holding only examples with a known class.
func (d *Dataset) WithoutMissingLabels() *Dataset {
	out := d.Empty()
	for _, e := range d.Examples {
		if e.HasLabel() {
			out.Examples = append(out.Examples, e)
		}
	}
	return out
}

// ClassCounts counts examples per class index. Unknown labels are skipped.
func (d *Dataset) ClassCounts() map[int]int {
	counts := map[int]int{}
	for _, e := range d.Examples {
		if !e.HasLabel() {
			continue
		}
		counts[int(e.Label)]++
	}
	return counts
}

// SyntheticCount returns the number of generated examples in the dataset.
func (d *Dataset) SyntheticCount() int {
	var n int
	for _, e := range d.Examples {
		if e.Synthetic {
			n++
		}
	}
	return n
}

// ClassName resolves a label to its class name, or "?" when unknown.
func (d *Dataset) ClassName(label float64) string {
	if IsMissing(label) {
		return "?"
	}
	idx := int(label)
	if idx < 0 || idx >= len(d.Classes) {
		return fmt.Sprintf("%g", label)
	}
	return d.Classes[idx]
}

// Table renders the dataset as string cells, one column per attribute
// followed by the class name and the synthetic flag. Missing values are "?".
func (d *Dataset) Table() ([]string, [][]string) {
	header := make([]string, 0, d.NumAttributes()+2)
	for _, a := range d.Attributes {
		header = append(header, a.Name)
	}
	header = append(header, "class", "synthetic")

	rows := make([][]string, d.Len())
	for i, e := range d.Examples {
		row := make([]string, 0, len(header))
		for _, v := range e.Values {
			row = append(row, formatValue(v))
		}
		row = append(row, d.ClassName(e.Label), strconv.FormatBool(e.Synthetic))
		rows[i] = row
	}
	return header, rows
}

func formatValue(v float64) string {
	if IsMissing(v) {
		return "?"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
