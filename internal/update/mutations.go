package update

import (
	"github.com/roach88/statuslog/internal/engine"
	"github.com/roach88/statuslog/internal/ir"
)

// SetRecord assigns rec to key.
func SetRecord(key ir.Key, rec ir.Record) MutateFunc {
	return func(log *ir.Log) (bool, error) {
		if prev, ok := log.Get(key); ok && prev == rec {
			return false, nil
		}
		log.Set(key, rec)
		return true, nil
	}
}

// MergeRecords assigns every entry, overwriting existing keys.
func MergeRecords(entries []ir.Entry) MutateFunc {
	return func(log *ir.Log) (bool, error) {
		return log.Merge(entries) > 0, nil
	}
}

// RemoveSubject deletes every entry whose key decomposes to exactly subject.
// The count of removed entries from the last attempt is stored in removed
// when it is non-nil.
func RemoveSubject(subject string, removed *int) MutateFunc {
	return func(log *ir.Log) (bool, error) {
		n := log.RemoveSubject(subject)
		if removed != nil {
			*removed = n
		}
		return n > 0, nil
	}
}

// CarryForward projects asOf onto the next day for every roster subject.
// The projection from the last attempt is stored in out when it is non-nil.
func CarryForward(roster []string, asOf ir.Date, opts engine.Options, out *engine.Projection) MutateFunc {
	return func(log *ir.Log) (bool, error) {
		p := engine.ProjectInPlace(log, roster, asOf, opts)
		if out != nil {
			*out = p
		}
		return p.Changed(), nil
	}
}
