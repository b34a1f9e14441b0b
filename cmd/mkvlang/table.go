package main

import (
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// tableSpec describes one rendered table. Rows shorter than Headers are
// padded and Aligns defaults to left for missing columns. MaxWidth, when set,
// soft-wraps every column to that many cells.
type tableSpec struct {
	Title    string
	Headers  []string
	Rows     [][]string
	Aligns   []columnAlignment
	MaxWidth int
}

func renderTable(spec tableSpec) string {
	columns := len(spec.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.Style().Format.Header = text.FormatDefault
	tw.SetTitle(spec.Title)
	tw.AppendHeader(padRow(spec.Headers, columns))
	for _, row := range spec.Rows {
		tw.AppendRow(padRow(row, columns))
	}

	configs := make([]table.ColumnConfig, columns)
	for i := range columns {
		configs[i] = table.ColumnConfig{
			Number:      i + 1,
			Align:       text.AlignLeft,
			AlignHeader: text.AlignLeft,
			WidthMax:    spec.MaxWidth,
		}
		if i < len(spec.Aligns) && spec.Aligns[i] == alignRight {
			configs[i].Align = text.AlignRight
		}
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func padRow(cells []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := range columns {
		row[i] = ""
		if i < len(cells) {
			row[i] = cells[i]
		}
	}
	return row
}
