// Package engine implements carry-forward: projecting each subject's most
// recent known status onto the next day.
//
// The log is sparse. A subject's state is assumed constant until the next
// explicit change, so carry-forward is a run-length decoding step applied
// one day at a time. It always looks at the as-of date or earlier, never at
// the day it is writing, and it never overwrites an existing entry.
//
// Engine functions are pure: they take a log and return a new one. Reading
// and committing the log is the update package's job.
package engine
