package encoder

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sod/smote/internal/dataset"
)

type Option func(*NominalToBinary)

// WithTransformAllValues controls whether two-valued nominal columns are
// expanded into indicators too. When false they stay a single nominal
// attribute holding the value index.
func WithTransformAllValues(t bool) Option {
	return func(n *NominalToBinary) {
		n.transformAll = t
	}
}

// WithNominalIndicators marks indicator attributes as nominal, so synthetic
// values for them are rounded to 0 or 1.
func WithNominalIndicators() Option {
	return func(n *NominalToBinary) {
		n.indicatorKind = dataset.KindNominal
	}
}

type column struct {
	name   string
	kind   RawKind
	values []string
	index  map[string]int
	// expanded means one indicator attribute per nominal value
	expanded bool
}

// NominalToBinary turns raw tables into numeric datasets so that Euclidean
// distance is meaningful. Nominal columns become indicator attributes, the
// class column becomes the label.
type NominalToBinary struct {
	transformAll  bool
	indicatorKind dataset.Kind

	fitted     bool
	header     []string
	classIndex int
	columns    []column
	classes    []string
	classIdx   map[string]int
	attributes []dataset.Attribute
}

func NewNominalToBinary(opts ...Option) *NominalToBinary {
	n := &NominalToBinary{transformAll: true, indicatorKind: dataset.KindNumeric}
	for _, f := range opts {
		f(n)
	}
	return n
}

func (n *NominalToBinary) Attributes() []dataset.Attribute {
	return n.attributes
}

func (n *NominalToBinary) Classes() []string {
	return n.classes
}

// Fit learns column types and nominal values from raw and returns its encoding.
func (n *NominalToBinary) Fit(raw *Raw) (*dataset.Dataset, error) {
	if err := raw.validate(); err != nil {
		return nil, err
	}
	n.header = raw.Header
	n.classIndex = raw.ClassIndex
	n.columns = make([]column, len(raw.Header))
	n.classes = nil
	n.classIdx = map[string]int{}

	for j, name := range raw.Header {
		kind := RawAuto
		if raw.Kinds != nil {
			kind = raw.Kinds[j]
		}
		if j == raw.ClassIndex {
			if kind != RawAuto && kind != RawNominal {
				return nil, fmt.Errorf("%w: class attribute %q must be nominal", ErrEncoding, name)
			}
			for _, row := range raw.Rows {
				v := strings.TrimSpace(row[j])
				if IsMissingValue(v) {
					continue
				}
				if _, ok := n.classIdx[v]; !ok {
					n.classIdx[v] = len(n.classes)
					n.classes = append(n.classes, v)
				}
			}
			continue
		}
		if kind == RawAuto {
			kind = inferKind(raw.Rows, j)
		}
		col := column{name: name, kind: kind}
		switch kind {
		case RawNumeric, RawDate:
		case RawNominal:
			col.index = map[string]int{}
			for _, row := range raw.Rows {
				v := strings.TrimSpace(row[j])
				if IsMissingValue(v) {
					continue
				}
				if _, ok := col.index[v]; !ok {
					col.index[v] = len(col.values)
					col.values = append(col.values, v)
				}
			}
			col.expanded = n.transformAll || len(col.values) != 2
		default:
			return nil, fmt.Errorf("%w: attribute %q has unsupported type", ErrEncoding, name)
		}
		n.columns[j] = col
	}

	n.attributes = nil
	for j, col := range n.columns {
		if j == n.classIndex {
			continue
		}
		switch {
		case col.kind == RawNumeric:
			n.attributes = append(n.attributes, dataset.Attribute{Name: col.name, Kind: dataset.KindNumeric})
		case col.kind == RawDate:
			n.attributes = append(n.attributes, dataset.Attribute{Name: col.name, Kind: dataset.KindOther})
		case col.expanded:
			for _, v := range col.values {
				n.attributes = append(n.attributes, dataset.Attribute{Name: col.name + "=" + v, Kind: n.indicatorKind})
			}
		default:
			n.attributes = append(n.attributes, dataset.Attribute{Name: col.name, Kind: dataset.KindNominal})
		}
	}
	n.fitted = true

	return n.Transform(raw)
}

// Transform encodes raw with the learned columns.
func (n *NominalToBinary) Transform(raw *Raw) (*dataset.Dataset, error) {
	if !n.fitted {
		return nil, fmt.Errorf("%w: encoder is not fitted", ErrEncoding)
	}
	if err := raw.validate(); err != nil {
		return nil, err
	}
	if len(raw.Header) != len(n.header) {
		return nil, fmt.Errorf("%w: %d columns, encoder was fitted on %d", ErrEncoding, len(raw.Header), len(n.header))
	}
	out := dataset.New(n.attributes, n.classes)
	out.Examples = make([]dataset.Example, 0, len(raw.Rows))
	for i, row := range raw.Rows {
		e, err := n.EncodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		out.Examples = append(out.Examples, e)
	}
	return out, nil
}

// EncodeRow encodes a single row. The class cell may be omitted entirely or
// left missing.
func (n *NominalToBinary) EncodeRow(row []string) (dataset.Example, error) {
	if !n.fitted {
		return dataset.Example{}, fmt.Errorf("%w: encoder is not fitted", ErrEncoding)
	}
	if len(row) == len(n.header)-1 {
		full := make([]string, 0, len(n.header))
		full = append(full, row[:n.classIndex]...)
		full = append(full, "?")
		row = append(full, row[n.classIndex:]...)
	}
	if len(row) != len(n.header) {
		return dataset.Example{}, fmt.Errorf("%w: row has %d values, expected %d", ErrEncoding, len(row), len(n.header))
	}

	values := make([]float64, 0, len(n.attributes))
	label := dataset.Missing()
	for j, col := range n.columns {
		cell := strings.TrimSpace(row[j])
		if j == n.classIndex {
			if IsMissingValue(cell) {
				continue
			}
			idx, ok := n.classIdx[cell]
			if !ok {
				return dataset.Example{}, fmt.Errorf("%w: unknown class value %q", ErrEncoding, cell)
			}
			label = float64(idx)
			continue
		}
		encoded, err := n.encodeCell(col, cell)
		if err != nil {
			return dataset.Example{}, err
		}
		values = append(values, encoded...)
	}
	return dataset.NewExample(values, label), nil
}

func (n *NominalToBinary) encodeCell(col column, cell string) ([]float64, error) {
	missing := IsMissingValue(cell)
	switch col.kind {
	case RawNumeric:
		if missing {
			return []float64{dataset.Missing()}, nil
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q of numeric attribute %q", ErrEncoding, cell, col.name)
		}
		return []float64{v}, nil
	case RawDate:
		if missing {
			return []float64{dataset.Missing()}, nil
		}
		ts, err := time.Parse(time.RFC3339, cell)
		if err != nil {
			return nil, fmt.Errorf("%w: value %q of date attribute %q", ErrEncoding, cell, col.name)
		}
		return []float64{float64(ts.Unix())}, nil
	}

	idx, known := col.index[cell]
	if !col.expanded {
		if missing || !known {
			return []float64{dataset.Missing()}, nil
		}
		return []float64{float64(idx)}, nil
	}
	out := make([]float64, len(col.values))
	for i := range out {
		switch {
		case missing:
			out[i] = dataset.Missing()
		case known && i == idx:
			out[i] = 1
		}
	}
	return out, nil
}

// inferKind types a column as numeric unless a known value fails to parse.
func inferKind(rows [][]string, j int) RawKind {
	for _, row := range rows {
		v := strings.TrimSpace(row[j])
		if IsMissingValue(v) {
			continue
		}
		if _, err := strconv.ParseFloat(v, 64); err != nil {
			return RawNominal
		}
	}
	return RawNumeric
}
