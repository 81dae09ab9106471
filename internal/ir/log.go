package ir

// Log is the sparse status log: an insertion-ordered mapping from key to
// record. Absence of a key means "not recorded", never "available".
//
// The zero value is an empty log ready for use. A Log is not safe for
// concurrent mutation.
type Log struct {
	keys    []Key
	records map[Key]Record
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{records: make(map[Key]Record)}
}

// Len returns the number of entries.
func (l *Log) Len() int {
	return len(l.keys)
}

// Get returns the record stored at k.
func (l *Log) Get(k Key) (Record, bool) {
	rec, ok := l.records[k]
	return rec, ok
}

// Has reports whether k is present.
func (l *Log) Has(k Key) bool {
	_, ok := l.records[k]
	return ok
}

// Set assigns rec to k. A new key is appended to the iteration order;
// an existing key keeps its position.
func (l *Log) Set(k Key, rec Record) {
	if l.records == nil {
		l.records = make(map[Key]Record)
	}
	if _, ok := l.records[k]; !ok {
		l.keys = append(l.keys, k)
	}
	l.records[k] = rec
}

// Merge assigns every entry in order, overwriting existing keys.
// Returns the number of entries whose stored record changed.
func (l *Log) Merge(entries []Entry) int {
	changed := 0
	for _, e := range entries {
		if prev, ok := l.Get(e.Key); ok && prev == e.Record {
			continue
		}
		l.Set(e.Key, e.Record)
		changed++
	}
	return changed
}

// RemoveSubject deletes every entry whose key decomposes to exactly subject.
// Keys that cannot be decomposed are kept. Returns the number removed.
func (l *Log) RemoveSubject(subject string) int {
	kept := l.keys[:0]
	removed := 0
	for _, k := range l.keys {
		s, _, err := k.Split()
		if err == nil && s == subject {
			delete(l.records, k)
			removed++
			continue
		}
		kept = append(kept, k)
	}
	l.keys = kept
	return removed
}

// Keys returns the keys in iteration order. The slice is a copy.
func (l *Log) Keys() []Key {
	out := make([]Key, len(l.keys))
	copy(out, l.keys)
	return out
}

// Entries returns all entries in iteration order.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.keys))
	for i, k := range l.keys {
		out[i] = Entry{Key: k, Record: l.records[k]}
	}
	return out
}

// Clone returns a deep copy of l.
func (l *Log) Clone() *Log {
	c := &Log{
		keys:    make([]Key, len(l.keys)),
		records: make(map[Key]Record, len(l.records)),
	}
	copy(c.keys, l.keys)
	for k, v := range l.records {
		c.records[k] = v
	}
	return c
}

// Equal reports whether l and o hold the same entries in the same order.
func (l *Log) Equal(o *Log) bool {
	if l.Len() != o.Len() {
		return false
	}
	for i, k := range l.keys {
		if o.keys[i] != k || o.records[k] != l.records[k] {
			return false
		}
	}
	return true
}
