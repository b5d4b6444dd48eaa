package encoder

import (
	"errors"
	"strings"
	"testing"

	"github.com/go-sod/smote/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weatherCSV = `outlook,temperature,windy,play
sunny,85,false,no
overcast,83,false,yes
rainy,?,true,yes
?,70,true,no
sunny,68,false,?
`

func TestReadCSV(t *testing.T) {
	raw, err := ReadCSV(strings.NewReader(weatherCSV), "")
	require.NoError(t, err)
	assert.Equal(t, 3, raw.ClassIndex)
	assert.Len(t, raw.Rows, 5)

	raw, err = ReadCSV(strings.NewReader(weatherCSV), "windy")
	require.NoError(t, err)
	assert.Equal(t, 2, raw.ClassIndex)

	_, err = ReadCSV(strings.NewReader(weatherCSV), "humidity")
	assert.True(t, errors.Is(err, ErrEncoding))
}

func TestNominalToBinary_Fit(t *testing.T) {
	raw, err := ReadCSV(strings.NewReader(weatherCSV), "play")
	require.NoError(t, err)

	enc := NewNominalToBinary()
	d, err := enc.Fit(raw)
	require.NoError(t, err)

	assert.Equal(t, []string{"no", "yes"}, d.Classes)
	assert.Equal(t, []dataset.Attribute{
		{Name: "outlook=sunny", Kind: dataset.KindNumeric},
		{Name: "outlook=overcast", Kind: dataset.KindNumeric},
		{Name: "outlook=rainy", Kind: dataset.KindNumeric},
		{Name: "temperature", Kind: dataset.KindNumeric},
		{Name: "windy=false", Kind: dataset.KindNumeric},
		{Name: "windy=true", Kind: dataset.KindNumeric},
	}, d.Attributes)
	require.Equal(t, 5, d.Len())

	assert.Equal(t, []float64{1, 0, 0, 85, 1, 0}, d.Examples[0].Values)
	assert.Equal(t, 0.0, d.Examples[0].Label)
	assert.Equal(t, 1.0, d.Examples[1].Label)

	rainy := d.Examples[2].Values
	assert.True(t, dataset.IsMissing(rainy[3]), "missing temperature")

	unknownOutlook := d.Examples[3].Values
	for _, v := range unknownOutlook[:3] {
		assert.True(t, dataset.IsMissing(v))
	}
	assert.False(t, d.Examples[4].HasLabel())
}

func TestNominalToBinary_BinaryAsNominal(t *testing.T) {
	raw, err := ReadCSV(strings.NewReader(weatherCSV), "play")
	require.NoError(t, err)

	enc := NewNominalToBinary(WithTransformAllValues(false), WithNominalIndicators())
	d, err := enc.Fit(raw)
	require.NoError(t, err)

	require.Len(t, d.Attributes, 5)
	assert.Equal(t, dataset.Attribute{Name: "outlook=sunny", Kind: dataset.KindNominal}, d.Attributes[0])
	assert.Equal(t, dataset.Attribute{Name: "windy", Kind: dataset.KindNominal}, d.Attributes[4])
	assert.Equal(t, 0.0, d.Examples[0].Values[4])
	assert.Equal(t, 1.0, d.Examples[2].Values[4])
}

func TestNominalToBinary_EncodeRow(t *testing.T) {
	raw, err := ReadCSV(strings.NewReader(weatherCSV), "play")
	require.NoError(t, err)
	enc := NewNominalToBinary()
	_, err = enc.Fit(raw)
	require.NoError(t, err)

	tests := []struct {
		name     string
		row      []string
		expected []float64
		err      bool
	}{
		{name: "without_class", row: []string{"rainy", "60", "true"}, expected: []float64{0, 0, 1, 60, 0, 1}},
		{name: "missing_class", row: []string{"overcast", "61", "false", "?"}, expected: []float64{0, 1, 0, 61, 1, 0}},
		{name: "unseen_nominal", row: []string{"snowy", "10", "false"}, expected: []float64{0, 0, 0, 10, 1, 0}},
		{name: "bad_number", row: []string{"sunny", "hot", "false"}, err: true},
		{name: "unknown_class", row: []string{"sunny", "1", "false", "maybe"}, err: true},
		{name: "wrong_width", row: []string{"sunny"}, err: true},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, err := enc.EncodeRow(test.row)
			if test.err {
				assert.True(t, errors.Is(err, ErrEncoding), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.expected, e.Values)
			assert.False(t, e.HasLabel())
		})
	}
}

func TestNominalToBinary_Errors(t *testing.T) {
	enc := NewNominalToBinary()
	_, err := enc.EncodeRow([]string{"a"})
	assert.True(t, errors.Is(err, ErrEncoding), "not fitted")

	raw := &Raw{
		Header:     []string{"note", "class"},
		Kinds:      []RawKind{RawString, RawNominal},
		ClassIndex: 1,
		Rows:       [][]string{{"hello", "a"}},
	}
	_, err = enc.Fit(raw)
	assert.True(t, errors.Is(err, ErrEncoding), "string attribute")

	raw.Kinds = []RawKind{RawNominal, RawNumeric}
	_, err = enc.Fit(raw)
	assert.True(t, errors.Is(err, ErrEncoding), "numeric class")

	raw.Kinds = nil
	raw.Rows = append(raw.Rows, []string{"short"})
	_, err = enc.Fit(raw)
	assert.True(t, errors.Is(err, ErrEncoding), "ragged rows")
}

func TestNominalToBinary_Date(t *testing.T) {
	raw := &Raw{
		Header:     []string{"at", "class"},
		Kinds:      []RawKind{RawDate, RawAuto},
		ClassIndex: 1,
		Rows:       [][]string{{"1970-01-01T00:01:00Z", "a"}, {"?", "b"}},
	}
	d, err := NewNominalToBinary().Fit(raw)
	require.NoError(t, err)
	assert.Equal(t, dataset.KindOther, d.Attributes[0].Kind)
	assert.Equal(t, 60.0, d.Examples[0].Values[0])
	assert.True(t, dataset.IsMissing(d.Examples[1].Values[0]))
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("Nominal")
	require.NoError(t, err)
	assert.Equal(t, RawNominal, k)
	_, err = ParseKind("relational")
	assert.True(t, errors.Is(err, ErrEncoding))
}
