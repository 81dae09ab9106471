package roster

import (
	"slices"

	"github.com/roach88/statuslog/internal/ir"
)

// Config is the configuration object built from the roster file.
type Config struct {
	Athletes     []string          `json:"athletes"`
	InjurySites  []string          `json:"injurySites"`
	Injuries     []string          `json:"injuries"`
	Severities   []string          `json:"severities"`
	Statuses     []string          `json:"statuses"`
	StatusColors map[string]string `json:"statusColors"`
}

// Config builds the configuration object.
//
// Statuses falls back to ir.DefaultStatuses when the file lists none and
// always contains ir.StatusAvailable, the implicit default.
func (t *Table) Config() Config {
	cfg := Config{
		Athletes:     t.Subjects(),
		InjurySites:  t.values(ColInjurySite),
		Injuries:     t.values(ColInjury),
		Severities:   t.values(ColSeverity),
		Statuses:     t.values(ColStatus),
		StatusColors: make(map[string]string),
	}
	if len(cfg.Statuses) == 0 {
		cfg.Statuses = slices.Clone(ir.DefaultStatuses)
	}
	if !slices.Contains(cfg.Statuses, ir.StatusAvailable) {
		cfg.Statuses = append([]string{ir.StatusAvailable}, cfg.Statuses...)
	}

	statusCol, colorCol := t.column(ColStatus), t.column(ColColor)
	if statusCol >= 0 && colorCol >= 0 {
		for _, row := range t.Rows {
			status, color := cell(row, statusCol), cell(row, colorCol)
			if status != "" && color != "" {
				cfg.StatusColors[status] = color
			}
		}
	}
	return cfg
}
