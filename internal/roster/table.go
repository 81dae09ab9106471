package roster

import (
	"bytes"
	"slices"
	"strings"

	"github.com/roach88/statuslog/internal/ir"
)

// Column names recognised in the roster header. Matching is
// case-insensitive and accepts the listed aliases.
const (
	ColAthlete    = "athlete"
	ColInjurySite = "injurySite"
	ColInjury     = "injury"
	ColSeverity   = "severity"
	ColStatus     = "status"
	ColColor      = "color"
)

// DefaultHeader is written when a subject is added to an empty roster.
var DefaultHeader = []string{ColAthlete, ColInjurySite, ColInjury, ColSeverity, ColStatus, ColColor}

var columnAliases = map[string]string{
	"athlete":     ColAthlete,
	"athletes":    ColAthlete,
	"name":        ColAthlete,
	"injurysite":  ColInjurySite,
	"injurysites": ColInjurySite,
	"injury":      ColInjury,
	"injuries":    ColInjury,
	"severity":    ColSeverity,
	"severities":  ColSeverity,
	"status":      ColStatus,
	"statuses":    ColStatus,
	"color":       ColColor,
	"colors":      ColColor,
	"colour":      ColColor,
}

// Table is the parsed roster file.
type Table struct {
	Header []string
	Rows   [][]string
}

// ParseTable parses raw roster CSV. Blank lines are skipped.
func ParseTable(raw []byte) *Table {
	t := &Table{}
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := strings.Split(line, ",")
		for j := range cells {
			cells[j] = strings.TrimSpace(cells[j])
		}
		if t.Header == nil {
			t.Header = cells
			continue
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}

// Encode serializes t. Rows are padded or trimmed to the header width.
func (t *Table) Encode() []byte {
	var buf bytes.Buffer
	if len(t.Header) == 0 {
		return nil
	}
	buf.WriteString(strings.Join(t.Header, ","))
	buf.WriteByte('\n')
	for _, row := range t.Rows {
		cells := make([]string, len(t.Header))
		copy(cells, row)
		buf.WriteString(strings.Join(cells, ","))
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// column returns the index of the canonical column name, or -1.
func (t *Table) column(name string) int {
	for i, h := range t.Header {
		if canonical, ok := columnAliases[strings.ToLower(strings.TrimSpace(h))]; ok && canonical == name {
			return i
		}
	}
	return -1
}

// cell returns row[i] or "" when the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// values returns the non-empty cells of a column in row order.
func (t *Table) values(name string) []string {
	col := t.column(name)
	if col < 0 {
		return nil
	}
	var out []string
	for _, row := range t.Rows {
		if v := cell(row, col); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// Subjects returns the roster: unique, normalised athlete names in file order.
func (t *Table) Subjects() []string {
	seen := make(map[string]bool)
	var out []string
	for _, v := range t.values(ColAthlete) {
		name := ir.NormalizeSubject(v)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// HasSubject reports whether name is on the roster.
func (t *Table) HasSubject(name string) bool {
	return slices.Contains(t.Subjects(), ir.NormalizeSubject(name))
}

// AddSubject appends a row holding name and empty attribute cells.
// Returns false if name is already on the roster.
func (t *Table) AddSubject(name string) bool {
	name = ir.NormalizeSubject(name)
	if t.HasSubject(name) {
		return false
	}
	if len(t.Header) == 0 {
		t.Header = slices.Clone(DefaultHeader)
	}
	col := t.column(ColAthlete)
	if col < 0 {
		t.Header = append(t.Header, ColAthlete)
		col = len(t.Header) - 1
	}
	row := make([]string, len(t.Header))
	row[col] = name
	t.Rows = append(t.Rows, row)
	return true
}

// RemoveSubject clears name's athlete cell. A row left with no other
// values is dropped; catalogue values on the same row are kept.
// Returns false if name was not on the roster.
func (t *Table) RemoveSubject(name string) bool {
	name = ir.NormalizeSubject(name)
	col := t.column(ColAthlete)
	if col < 0 {
		return false
	}
	found := false
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if col < len(row) && ir.NormalizeSubject(row[col]) == name {
			found = true
			row[col] = ""
			if isEmptyRow(row) {
				continue
			}
		}
		kept = append(kept, row)
	}
	t.Rows = kept
	return found
}

func isEmptyRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
