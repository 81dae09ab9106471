package roster

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/roach88/statuslog/internal/ir"
)

// SeasonsHeader is the first line of the season table.
const SeasonsHeader = "season,start,end"

// Season is one named date range.
type Season struct {
	Name  string  `json:"name" yaml:"name"`
	Start ir.Date `json:"start" yaml:"start"`
	End   ir.Date `json:"end" yaml:"end"`
}

// Contains reports whether d falls within the season, inclusive.
func (s Season) Contains(d ir.Date) bool {
	return !d.Before(s.Start) && !s.End.Before(d)
}

// ParseSeasons parses the season table. The header is discarded and blank
// lines are skipped; any other malformed line is an error.
func ParseSeasons(raw []byte) ([]Season, error) {
	lines := strings.Split(string(raw), "\n")
	if len(lines) <= 1 {
		return nil, nil
	}
	var out []Season
	for i, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("seasons line %d: want 3 fields, got %d", i+2, len(fields))
		}
		s, err := makeSeason(fields[0], fields[1], fields[2])
		if err != nil {
			return nil, fmt.Errorf("seasons line %d: %w", i+2, err)
		}
		out = append(out, s)
	}
	return out, nil
}

// EncodeSeasons serializes the season table.
func EncodeSeasons(seasons []Season) []byte {
	var buf bytes.Buffer
	buf.WriteString(SeasonsHeader)
	buf.WriteByte('\n')
	for _, s := range seasons {
		fmt.Fprintf(&buf, "%s,%s,%s\n", s.Name, s.Start, s.End)
	}
	return buf.Bytes()
}

// ValidateSeasons checks names are storable and ranges are set and ordered.
func ValidateSeasons(seasons []Season) error {
	seen := make(map[string]bool)
	for _, s := range seasons {
		if s.Start.IsZero() || s.End.IsZero() {
			return fmt.Errorf("season %q needs start and end dates", s.Name)
		}
		if _, err := makeSeason(s.Name, s.Start.String(), s.End.String()); err != nil {
			return err
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate season %q", s.Name)
		}
		seen[s.Name] = true
	}
	return nil
}

func makeSeason(name, start, end string) (Season, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Season{}, fmt.Errorf("season name is required")
	}
	if strings.ContainsAny(name, ",\r\n") {
		return Season{}, fmt.Errorf("season name %q must not contain commas or line breaks", name)
	}
	s, err := ir.ParseDate(strings.TrimSpace(start))
	if err != nil {
		return Season{}, fmt.Errorf("season %q start: %w", name, err)
	}
	e, err := ir.ParseDate(strings.TrimSpace(end))
	if err != nil {
		return Season{}, fmt.Errorf("season %q end: %w", name, err)
	}
	if e.Before(s) {
		return Season{}, fmt.Errorf("season %q ends (%s) before it starts (%s)", name, e, s)
	}
	return Season{Name: name, Start: s, End: e}, nil
}
