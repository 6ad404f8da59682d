// Package export turns loaded rows into CSV or XLSX using a fixed,
// ordered column mapping per record type.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to CSV.
func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", FormatCSV:
		return FormatCSV, nil
	case FormatXLSX, "excel":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unsupported export format %q", raw)
}

func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

func (f Format) Extension() string {
	return string(f)
}

type Column[T any] struct {
	Label string
	Value func(T) string
}

// Select keeps the rows whose id is in ids, preserving the loaded order.
// With no ids every loaded row is kept.
func Select[T any](rows []T, ids []uint, id func(T) uint) []T {
	if len(ids) == 0 {
		return rows
	}
	want := make(map[uint]struct{}, len(ids))
	for _, v := range ids {
		want[v] = struct{}{}
	}
	out := make([]T, 0, len(ids))
	for _, row := range rows {
		if _, ok := want[id(row)]; ok {
			out = append(out, row)
		}
	}
	return out
}

// Table renders the header and data rows.
func Table[T any](rows []T, cols []Column[T]) [][]string {
	table := make([][]string, 0, len(rows)+1)
	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Label
	}
	table = append(table, header)

	for _, row := range rows {
		line := make([]string, len(cols))
		for i, c := range cols {
			line[i] = c.Value(row)
		}
		table = append(table, line)
	}
	return table
}

func Write[T any](w io.Writer, format Format, rows []T, cols []Column[T]) error {
	table := Table(rows, cols)
	if format == FormatXLSX {
		return WriteXLSX(w, table)
	}
	return WriteCSV(w, table)
}

// utf8BOM makes spreadsheet applications detect UTF-8 (Thai text).
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func WriteCSV(w io.Writer, table [][]string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(table); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

const sheet = "Sheet1"

func WriteXLSX(w io.Writer, table [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, line := range table {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", i+1, err)
		}
		values := make([]interface{}, len(line))
		for j, v := range line {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xlsx: %w", err)
	}
	return nil
}
