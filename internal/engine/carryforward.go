package engine

import (
	"github.com/roach88/statuslog/internal/ir"
)

// DefaultLookbackDays is how many dates, counting the as-of date itself,
// are searched for a prior record.
const DefaultLookbackDays = 365

// Options tunes carry-forward.
type Options struct {
	// LookbackDays bounds the backward search. Zero means DefaultLookbackDays.
	LookbackDays int
}

func (o Options) lookback() int {
	if o.LookbackDays <= 0 {
		return DefaultLookbackDays
	}
	return o.LookbackDays
}

// Projection is the outcome of one carry-forward run.
type Projection struct {
	// Target is the date that was populated (as-of + 1).
	Target ir.Date

	// Added lists the entries created, in roster order.
	Added []ir.Entry
}

// Changed reports whether any entry was added.
func (p Projection) Changed() bool {
	return len(p.Added) > 0
}

// Project fills in the day after asOf for every subject in roster that has
// no entry on that day yet, and returns the updated log.
//
// Each new entry is a verbatim copy of the subject's most recent record
// within the lookback window ending at asOf, or ir.DefaultRecord() when
// there is none. Existing entries are never modified, so running Project
// twice for the same asOf adds nothing the second time.
//
// The input log is not modified.
func Project(log *ir.Log, roster []string, asOf ir.Date, opts Options) (*ir.Log, Projection) {
	out := log.Clone()
	p := ProjectInPlace(out, roster, asOf, opts)
	return out, p
}

// ProjectInPlace is Project without the copy: it mutates log directly.
func ProjectInPlace(log *ir.Log, roster []string, asOf ir.Date, opts Options) Projection {
	target := asOf.AddDays(1)
	p := Projection{Target: target}
	for _, subject := range roster {
		key := ir.MakeKey(subject, target)
		if log.Has(key) {
			continue
		}
		rec, found := lookup(log, subject, asOf, opts.lookback())
		if !found {
			rec = ir.DefaultRecord()
		}
		log.Set(key, rec)
		p.Added = append(p.Added, ir.Entry{Key: key, Record: rec})
	}
	return p
}

// Resolution is the effective status of a subject on a date.
type Resolution struct {
	Subject string    `json:"subject"`
	Date    ir.Date   `json:"date"`
	Record  ir.Record `json:"record"`

	// Source is the key the record was read from; empty when Record is
	// the synthesised default.
	Source ir.Key `json:"source,omitempty"`
}

// Resolve returns the record in effect for subject on date: the entry at
// date itself or the most recent one within the lookback window before
// it. Without any, the default Available record is returned with an
// empty Source.
func Resolve(log *ir.Log, subject string, date ir.Date, opts Options) Resolution {
	res := Resolution{Subject: subject, Date: date}
	for i := 0; i < opts.lookback(); i++ {
		key := ir.MakeKey(subject, date.AddDays(-i))
		if rec, ok := log.Get(key); ok {
			res.Record = rec
			res.Source = key
			return res
		}
	}
	res.Record = ir.DefaultRecord()
	return res
}

// lookup scans from asOf backwards over lookback dates.
func lookup(log *ir.Log, subject string, asOf ir.Date, lookback int) (ir.Record, bool) {
	res := Resolve(log, subject, asOf, Options{LookbackDays: lookback})
	return res.Record, res.Source != ""
}
