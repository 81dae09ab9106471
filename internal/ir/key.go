package ir

import (
	"fmt"
	"strings"
)

// keySuffixLen is the length of "-YYYY-MM-DD".
const keySuffixLen = len(DateLayout) + 1

// Key is the composite (subject, date) key serialized as "subject-date".
//
// The date suffix has a fixed width, so a key is decomposed by cutting
// off its last 11 characters. Subjects may contain '-' freely.
type Key string

// MakeKey builds the key for subject on date.
func MakeKey(subject string, date Date) Key {
	return Key(subject + "-" + date.String())
}

// ParseKey decomposes a key into its subject and date.
func ParseKey(s string) (subject string, date Date, err error) {
	if len(s) <= keySuffixLen || s[len(s)-keySuffixLen] != '-' {
		return "", Date{}, fmt.Errorf("invalid key %q: want subject-YYYY-MM-DD", s)
	}
	date, err = ParseDate(s[len(s)-len(DateLayout):])
	if err != nil {
		return "", Date{}, fmt.Errorf("invalid key %q: %w", s, err)
	}
	subject = s[:len(s)-keySuffixLen]
	if strings.TrimSpace(subject) == "" {
		return "", Date{}, fmt.Errorf("invalid key %q: empty subject", s)
	}
	return subject, date, nil
}

// Split decomposes k. See ParseKey.
func (k Key) Split() (string, Date, error) {
	return ParseKey(string(k))
}

// Subject returns the subject component, or "" if k is malformed.
func (k Key) Subject() string {
	subject, _, err := ParseKey(string(k))
	if err != nil {
		return ""
	}
	return subject
}

// String returns k as a plain string.
func (k Key) String() string {
	return string(k)
}
