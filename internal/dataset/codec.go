package dataset

import (
	"fmt"
	"io"

	xdr "github.com/davecgh/go-xdr/xdr2"
)

const codecVersion int32 = 1

type wireAttribute struct {
	Name string
	Kind int32
}

type wireExample struct {
	Values    []float64
	Label     float64
	Weight    float64
	Synthetic bool
}

type wireDataset struct {
	Version    int32
	Attributes []wireAttribute
	Classes    []string
	Examples   []wireExample
}

// Encode writes the dataset in XDR form.
func Encode(w io.Writer, d *Dataset) error {
	wd := wireDataset{
		Version:    codecVersion,
		Attributes: make([]wireAttribute, len(d.Attributes)),
		Classes:    d.Classes,
		Examples:   make([]wireExample, len(d.Examples)),
	}
	if wd.Classes == nil {
		wd.Classes = []string{}
	}
	for i, a := range d.Attributes {
		wd.Attributes[i] = wireAttribute{Name: a.Name, Kind: int32(a.Kind)}
	}
	for i, e := range d.Examples {
		values := e.Values
		if values == nil {
			values = []float64{}
		}
		wd.Examples[i] = wireExample{Values: values, Label: e.Label, Weight: e.Weight, Synthetic: e.Synthetic}
	}
	if _, err := xdr.Marshal(w, &wd); err != nil {
		return fmt.Errorf("unable to encode dataset: %w", err)
	}
	return nil
}

// Decode reads a dataset written by Encode.
func Decode(r io.Reader) (*Dataset, error) {
	var wd wireDataset
	if _, err := xdr.Unmarshal(r, &wd); err != nil {
		return nil, fmt.Errorf("unable to decode dataset: %w", err)
	}
	if wd.Version != codecVersion {
		return nil, fmt.Errorf("unsupported dataset codec version %d", wd.Version)
	}
	d := &Dataset{
		Attributes: make([]Attribute, len(wd.Attributes)),
		Classes:    wd.Classes,
		Examples:   make([]Example, len(wd.Examples)),
	}
	for i, a := range wd.Attributes {
		d.Attributes[i] = Attribute{Name: a.Name, Kind: Kind(a.Kind)}
	}
	for i, e := range wd.Examples {
		d.Examples[i] = Example{Values: e.Values, Label: e.Label, Weight: e.Weight, Synthetic: e.Synthetic}
	}
	return d, nil
}
