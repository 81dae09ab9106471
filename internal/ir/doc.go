// Package ir provides the core data types for the status log.
//
// This package contains type definitions and pure helpers only. All other
// internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - Records have a fixed schema: status, injurySite, injury, severity, comment
//   - Dates are day-granular and always rendered as YYYY-MM-DD
//   - Keys are decomposed by their fixed-width date suffix, never by prefix
//   - A Log preserves insertion order so encoding is deterministic
package ir
