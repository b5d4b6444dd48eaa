package encoder

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

var ErrEncoding = fmt.Errorf("encoding error")

// RawKind is the declared type of a raw column.
type RawKind uint8

const (
	RawAuto RawKind = iota
	RawNumeric
	RawNominal
	RawDate
	RawString
)

func ParseKind(s string) (RawKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return RawAuto, nil
	case "numeric", "real", "integer":
		return RawNumeric, nil
	case "nominal":
		return RawNominal, nil
	case "date":
		return RawDate, nil
	case "string":
		return RawString, nil
	default:
		return RawAuto, fmt.Errorf("%w: unknown attribute type %q", ErrEncoding, s)
	}
}

// Raw is an unencoded table. Kinds may be nil, in which case every column is
// typed automatically.
type Raw struct {
	Header     []string
	Kinds      []RawKind
	ClassIndex int
	Rows       [][]string
}

// IsMissingValue reports whether a raw cell denotes an unknown value.
func IsMissingValue(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || s == "?"
}

// ColumnIndex finds a column by name.
func (r *Raw) ColumnIndex(name string) (int, error) {
	for i, h := range r.Header {
		if h == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: column %q not found", ErrEncoding, name)
}

func (r *Raw) validate() error {
	if len(r.Header) == 0 {
		return fmt.Errorf("%w: empty header", ErrEncoding)
	}
	if r.ClassIndex < 0 || r.ClassIndex >= len(r.Header) {
		return fmt.Errorf("%w: class index %d out of range", ErrEncoding, r.ClassIndex)
	}
	if r.Kinds != nil && len(r.Kinds) != len(r.Header) {
		return fmt.Errorf("%w: %d kinds for %d columns", ErrEncoding, len(r.Kinds), len(r.Header))
	}
	for i, row := range r.Rows {
		if len(row) != len(r.Header) {
			return fmt.Errorf("%w: row %d has %d values, header has %d", ErrEncoding, i, len(row), len(r.Header))
		}
	}
	return nil
}

// ReadCSV reads a table whose first record is the header. An empty
// classColumn selects the last column.
func ReadCSV(r io.Reader, classColumn string) (*Raw, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: csv has no header", ErrEncoding)
	}
	raw := &Raw{Header: records[0], Rows: records[1:], ClassIndex: len(records[0]) - 1}
	if classColumn != "" {
		idx, err := raw.ColumnIndex(classColumn)
		if err != nil {
			return nil, err
		}
		raw.ClassIndex = idx
	}
	return raw, nil
}

// WriteCSV writes rows under the header.
func WriteCSV(w io.Writer, header []string, rows [][]string) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("unable to write csv header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("unable to write csv rows: %w", err)
	}
	return nil
}
