package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/statuslog/internal/ir"
)

// AssertionError is returned when an assertion fails.
type AssertionError struct {
	Type     string // Assertion type for categorization
	Target   string // Key, subject or blob the assertion looked at
	Expected string
	Actual   string
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "%s %s failed", e.Type, e.Target)
	fmt.Fprintf(&buf, "\n  Expected: %s", e.Expected)
	fmt.Fprintf(&buf, "\n  Actual: %s", e.Actual)
	return buf.String()
}

// check evaluates one assertion against the harness's current state.
func (h *Harness) check(ctx context.Context, a *Assertion) error {
	switch a.Type {
	case AssertRecord, AssertAbsent, AssertEntries:
		log, _, err := h.svc.Log(ctx)
		if err != nil {
			return fmt.Errorf("read log: %w", err)
		}
		return checkLog(log, a)
	case AssertStatus:
		var date ir.Date
		if a.Date != "" {
			date = ir.MustParseDate(a.Date)
		}
		res, err := h.svc.Status(ctx, a.Subject, date)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", a.Subject, err)
		}
		if res.Record != *a.Expect {
			return &AssertionError{
				Type:     a.Type,
				Target:   fmt.Sprintf("%s@%s", a.Subject, res.Date),
				Expected: formatRecord(*a.Expect),
				Actual:   formatRecord(res.Record),
			}
		}
		return nil
	case AssertRoster:
		subjects, err := h.svc.Roster(ctx)
		if err != nil {
			return fmt.Errorf("read roster: %w", err)
		}
		if !slices.Equal(subjects, a.Subjects) {
			return &AssertionError{
				Type:     a.Type,
				Target:   h.svc.Paths().Roster,
				Expected: fmt.Sprintf("%q", a.Subjects),
				Actual:   fmt.Sprintf("%q", subjects),
			}
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}

func checkLog(log *ir.Log, a *Assertion) error {
	switch a.Type {
	case AssertEntries:
		if log.Len() != *a.Count {
			return &AssertionError{
				Type:     a.Type,
				Target:   "log",
				Expected: fmt.Sprintf("%d entries", *a.Count),
				Actual:   fmt.Sprintf("%d entries", log.Len()),
			}
		}
	case AssertAbsent:
		if rec, ok := log.Get(ir.Key(a.Key)); ok {
			return &AssertionError{
				Type:     a.Type,
				Target:   a.Key,
				Expected: "no entry",
				Actual:   formatRecord(rec),
			}
		}
	case AssertRecord:
		rec, ok := log.Get(ir.Key(a.Key))
		if !ok {
			return &AssertionError{
				Type:     a.Type,
				Target:   a.Key,
				Expected: formatRecord(*a.Expect),
				Actual:   "no entry",
			}
		}
		if rec != *a.Expect {
			return &AssertionError{
				Type:     a.Type,
				Target:   a.Key,
				Expected: formatRecord(*a.Expect),
				Actual:   formatRecord(rec),
			}
		}
	}
	return nil
}

func formatRecord(r ir.Record) string {
	return fmt.Sprintf("{status:%q injurySite:%q injury:%q severity:%q comment:%q}",
		r.Status, r.InjurySite, r.Injury, r.Severity, r.Comment)
}
