package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/statuslog/internal/ir"
)

func date(s string) ir.Date {
	return ir.MustParseDate(s)
}

func TestProject_ConcreteScenario(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-01-01", ir.Record{Status: ir.StatusInjured})

	out, p := Project(log, []string{"A", "B"}, date("2024-01-01"), Options{})

	assert.True(t, p.Changed())
	assert.Equal(t, "2024-01-02", p.Target.String())

	rec, ok := out.Get("A-2024-01-02")
	require.True(t, ok)
	assert.Equal(t, ir.Record{Status: ir.StatusInjured}, rec)

	rec, ok = out.Get("B-2024-01-02")
	require.True(t, ok)
	assert.Equal(t, ir.Record{Status: ir.StatusAvailable}, rec)

	assert.Equal(t, []ir.Key{"A-2024-01-01", "A-2024-01-02", "B-2024-01-02"}, out.Keys())
	assert.Equal(t, 1, log.Len(), "input log must not be modified")
}

func TestProject_Idempotent(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-01-01", ir.Record{Status: ir.StatusLimited})
	asOf := date("2024-01-01")

	once, p1 := Project(log, []string{"A", "B"}, asOf, Options{})
	twice, p2 := Project(once, []string{"A", "B"}, asOf, Options{})

	assert.True(t, p1.Changed())
	assert.False(t, p2.Changed(), "second run for the same date adds nothing")
	assert.True(t, once.Equal(twice))
}

func TestProject_DefaultAvailability(t *testing.T) {
	out, p := Project(ir.NewLog(), []string{"Newcomer"}, date("2024-06-30"), Options{})

	require.Len(t, p.Added, 1)
	rec, ok := out.Get("Newcomer-2024-07-01")
	require.True(t, ok)
	assert.Equal(t, ir.DefaultRecord(), rec)
	assert.Equal(t, ir.Record{Status: "Available"}, rec)
}

func TestProject_LookbackBoundary(t *testing.T) {
	asOf := date("2024-12-31")
	target := asOf.AddDays(1)

	t.Run("record at target-365 is copied", func(t *testing.T) {
		log := ir.NewLog()
		log.Set(ir.MakeKey("A", target.AddDays(-365)), ir.Record{Status: ir.StatusInjured})

		out, _ := Project(log, []string{"A"}, asOf, Options{})
		rec, _ := out.Get(ir.MakeKey("A", target))
		assert.Equal(t, ir.StatusInjured, rec.Status)
	})

	t.Run("record at target-366 is not", func(t *testing.T) {
		log := ir.NewLog()
		log.Set(ir.MakeKey("A", target.AddDays(-366)), ir.Record{Status: ir.StatusInjured})

		out, _ := Project(log, []string{"A"}, asOf, Options{})
		rec, _ := out.Get(ir.MakeKey("A", target))
		assert.Equal(t, ir.StatusAvailable, rec.Status)
	})
}

func TestProject_CopiesFullRecord(t *testing.T) {
	injured := ir.Record{
		Status:     ir.StatusInjured,
		InjurySite: "Hamstring",
		Injury:     "Strain",
		Severity:   "High",
		Comment:    "grade 2",
	}
	log := ir.NewLog()
	log.Set("A-2024-03-01", injured)

	out, _ := Project(log, []string{"A"}, date("2024-03-10"), Options{})

	rec, ok := out.Get("A-2024-03-11")
	require.True(t, ok)
	assert.Equal(t, injured, rec)
}

func TestProject_UsesMostRecentPriorRecord(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-03-05", ir.Record{Status: ir.StatusAvailable})
	log.Set("A-2024-03-01", ir.Record{Status: ir.StatusInjured})

	out, _ := Project(log, []string{"A"}, date("2024-03-10"), Options{})
	rec, _ := out.Get("A-2024-03-11")
	assert.Equal(t, ir.StatusAvailable, rec.Status)
}

func TestProject_IgnoresFutureEntries(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-03-20", ir.Record{Status: ir.StatusInjured})

	out, _ := Project(log, []string{"A"}, date("2024-03-10"), Options{})
	rec, _ := out.Get("A-2024-03-11")
	assert.Equal(t, ir.StatusAvailable, rec.Status, "entries after asOf are never consulted")
}

func TestProject_ExistingTargetUntouched(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-01-01", ir.Record{Status: ir.StatusInjured})
	log.Set("A-2024-01-02", ir.Record{Status: ir.StatusLimited, Comment: "edited today"})

	out, p := Project(log, []string{"A"}, date("2024-01-01"), Options{})

	assert.False(t, p.Changed())
	rec, _ := out.Get("A-2024-01-02")
	assert.Equal(t, "edited today", rec.Comment)
}

func TestProject_EmptyRoster(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-01-01", ir.Record{Status: ir.StatusInjured})

	out, p := Project(log, nil, date("2024-01-01"), Options{})
	assert.False(t, p.Changed())
	assert.True(t, log.Equal(out))
}

func TestProject_SubjectsSharingPrefix(t *testing.T) {
	log := ir.NewLog()
	log.Set("Alice-2024-01-01", ir.Record{Status: ir.StatusInjured})

	out, _ := Project(log, []string{"Al", "Alice"}, date("2024-01-01"), Options{})

	rec, _ := out.Get("Al-2024-01-02")
	assert.Equal(t, ir.StatusAvailable, rec.Status)
	rec, _ = out.Get("Alice-2024-01-02")
	assert.Equal(t, ir.StatusInjured, rec.Status)
}

func TestProject_CustomLookback(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-01-01", ir.Record{Status: ir.StatusInjured})

	out, _ := Project(log, []string{"A"}, date("2024-01-08"), Options{LookbackDays: 7})
	rec, _ := out.Get("A-2024-01-09")
	assert.Equal(t, ir.StatusAvailable, rec.Status, "2024-01-01 is outside a 7-day window ending 2024-01-08")

	out, _ = Project(log, []string{"A"}, date("2024-01-07"), Options{LookbackDays: 7})
	rec, _ = out.Get("A-2024-01-08")
	assert.Equal(t, ir.StatusInjured, rec.Status)
}

func TestResolve(t *testing.T) {
	log := ir.NewLog()
	log.Set("A-2024-01-01", ir.Record{Status: ir.StatusInjured})
	log.Set("A-2024-01-05", ir.Record{Status: ir.StatusAvailable})

	res := Resolve(log, "A", date("2024-01-03"), Options{})
	assert.Equal(t, ir.StatusInjured, res.Record.Status)
	assert.Equal(t, ir.Key("A-2024-01-01"), res.Source)

	res = Resolve(log, "A", date("2024-01-05"), Options{})
	assert.Equal(t, ir.Key("A-2024-01-05"), res.Source, "an entry on the date itself wins")

	res = Resolve(log, "B", date("2024-01-05"), Options{})
	assert.Equal(t, ir.DefaultRecord(), res.Record)
	assert.Empty(t, res.Source)
}
