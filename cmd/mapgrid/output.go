package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"

	"github.com/five82/mapgrid/internal/mapapi"
)

// printer writes command results as a table, JSON or YAML.
type printer struct {
	w      io.Writer
	format string
}

// print encodes v for json and yaml output and writes text() otherwise.
func (p printer) print(v any, text func() string) error {
	switch p.format {
	case "json":
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		_, err := fmt.Fprintln(p.w, text())
		return err
	}
}

// actionResult reports a mutation that returns no resource.
type actionResult struct {
	Action string `json:"action" yaml:"action"`
	Kind   string `json:"kind" yaml:"kind"`
	ID     int64  `json:"id" yaml:"id"`
	Name   string `json:"name,omitempty" yaml:"name,omitempty"`
}

func (a actionResult) String() string {
	if a.Name != "" {
		return fmt.Sprintf("%s %s %d (%s)", a.Action, a.Kind, a.ID, a.Name)
	}
	return fmt.Sprintf("%s %s %d", a.Action, a.Kind, a.ID)
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		String()
}

func mapsTable(maps []mapapi.Map) string {
	rows := make([][]string, 0, len(maps))
	for _, m := range maps {
		rows = append(rows, []string{itoa64(m.ID), m.Name, strconv.Itoa(m.NumberOfFloors)})
	}
	return renderTable([]string{"ID", "NAME", "FLOORS"}, rows)
}

func floorsTable(floors []mapapi.Floor) string {
	rows := make([][]string, 0, len(floors))
	for _, f := range floors {
		row := []string{itoa64(f.ID), strconv.Itoa(f.Number), f.Name, sizeLabel(f)}
		if len(f.Cells) > 0 {
			row = append(row, strconv.Itoa(filledCount(f)))
		} else {
			row = append(row, "-")
		}
		rows = append(rows, row)
	}
	return renderTable([]string{"ID", "NUMBER", "NAME", "SIZE", "FILLED"}, rows)
}

func mapDetail(m *mapapi.Map) string {
	header := fmt.Sprintf("Map %d: %s (%d floors)", m.ID, m.Name, m.NumberOfFloors)
	if len(m.Floors) == 0 {
		return header
	}
	return header + "\n" + floorsTable(m.Floors)
}

// gridText draws a floor as rows of '#' (filled) and '.' (empty) with
// column and row indexes.
func gridText(f *mapapi.Floor) string {
	filled := make(map[[2]int]bool, len(f.Cells))
	for _, c := range f.Cells {
		if c.IsFilled {
			filled[[2]int{c.X, c.Y}] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Floor %d: %s #%d %s, %d filled\n", f.ID, f.Name, f.Number, sizeLabel(*f), filledCount(*f))
	b.WriteString("     ")
	for x := 0; x < f.DimensionX; x++ {
		b.WriteString(strconv.Itoa(x % 10))
	}
	for y := 0; y < f.DimensionY; y++ {
		fmt.Fprintf(&b, "\n%4d ", y)
		for x := 0; x < f.DimensionX; x++ {
			if filled[[2]int{x, y}] {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
	}
	return b.String()
}

func sizeLabel(f mapapi.Floor) string {
	return fmt.Sprintf("%dx%d", f.DimensionX, f.DimensionY)
}

func filledCount(f mapapi.Floor) int {
	n := 0
	for _, c := range f.Cells {
		if c.IsFilled {
			n++
		}
	}
	return n
}

func itoa64(v int64) string {
	return strconv.FormatInt(v, 10)
}
