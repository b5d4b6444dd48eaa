package main

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/dustin/go-humanize"
	"github.com/go-sod/smote/internal/encoder"
	"github.com/go-sod/smote/internal/smote"
	"github.com/jedib0t/go-pretty/v6/table"
)

func writeSummary(w io.Writer, raw *encoder.Raw, res *smote.RunResult) error {
	balanced := res.Balanced
	original := map[int]int{}
	synthetic := map[int]int{}
	for _, e := range balanced.Examples {
		if e.Synthetic {
			synthetic[int(e.Label)]++
		} else {
			original[int(e.Label)]++
		}
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Balanced dataset")
	t.AppendHeader(table.Row{"CLASS", "KEPT", "SYNTHETIC", "TOTAL"})
	labels := make([]int, 0, len(balanced.Classes))
	for label := range balanced.ClassCounts() {
		labels = append(labels, label)
	}
	sort.Ints(labels)
	for _, label := range labels {
		t.AppendRow(table.Row{
			balanced.ClassName(float64(label)),
			humanize.Comma(int64(original[label])),
			humanize.Comma(int64(synthetic[label])),
			humanize.Comma(int64(original[label] + synthetic[label])),
		})
	}
	t.AppendFooter(table.Row{
		"ALL",
		humanize.Comma(int64(balanced.Len() - res.Generated)),
		humanize.Comma(int64(res.Generated)),
		humanize.Comma(int64(balanced.Len())),
	})
	t.Render()

	t = table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(fmt.Sprintf("Estimator %s", res.Estimator.Name()))
	t.AppendHeader(table.Row{"MEASURE", "VALUE"})
	t.AppendRow(table.Row{"input rows", humanize.Comma(int64(len(raw.Rows)))})
	t.AppendRow(table.Row{"protection rejections", humanize.Comma(int64(res.Rejected))})
	for _, name := range res.Estimator.Measures() {
		v, err := res.Estimator.Measure(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, humanize.Ftoa(v)})
	}
	t.Render()
	return nil
}

func writeDataset(path string, res *smote.RunResult) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	header, rows := res.Balanced.Table()
	if err := encoder.WriteCSV(f, header, rows); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
