package main

import (
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	return renderTableWithFooter(headers, rows, aligns, nil)
}

func renderTableWithFooter(headers []string, rows [][]string, aligns []columnAlignment, footer []string) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(padRow(headers, columns))
	for _, row := range rows {
		tw.AppendRow(padRow(row, columns))
	}
	if len(footer) > 0 {
		tw.AppendFooter(padRow(footer, columns))
	}

	columnConfigs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		columnConfigs = append(columnConfigs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			AlignFooter: align,
		})
	}
	tw.SetColumnConfigs(columnConfigs)

	return tw.Render()
}

func padRow(cells []string, columns int) table.Row {
	row := make(table.Row, columns)
	for i := range row {
		if i < len(cells) {
			row[i] = cells[i]
		} else {
			row[i] = ""
		}
	}
	return row
}

// segmentTable lists kept segments: a running number, caller-supplied
// columns, and a right-aligned length in seconds totalled in the footer.
type segmentTable struct {
	headers []string
	aligns  []columnAlignment
	rows    [][]string
	seconds float64
}

func newSegmentTable(headers []string, aligns []columnAlignment) *segmentTable {
	t := &segmentTable{
		headers: append(append([]string{"#"}, headers...), "Seconds"),
		aligns:  make([]columnAlignment, 0, len(headers)+2),
	}
	t.aligns = append(t.aligns, alignRight)
	for i := range headers {
		align := alignLeft
		if i < len(aligns) {
			align = aligns[i]
		}
		t.aligns = append(t.aligns, align)
	}
	t.aligns = append(t.aligns, alignRight)
	return t
}

func (t *segmentTable) add(seconds float64, cells ...string) {
	row := make([]string, 0, len(t.headers))
	row = append(row, strconv.Itoa(len(t.rows)+1))
	row = append(row, cells...)
	for len(row) < len(t.headers)-1 {
		row = append(row, "")
	}
	row = append(row[:len(t.headers)-1], formatSeconds(seconds))
	t.rows = append(t.rows, row)
	t.seconds += seconds
}

func (t *segmentTable) render() string {
	footer := make([]string, len(t.headers))
	footer[1] = "Total"
	footer[len(footer)-1] = formatSeconds(t.seconds)
	return renderTableWithFooter(t.headers, t.rows, t.aligns, footer)
}
