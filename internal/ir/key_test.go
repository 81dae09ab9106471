package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKey(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		subject string
		date    string
	}{
		{"simple", "Alice-2024-01-02", "Alice", "2024-01-02"},
		{"subject with dash", "Mary-Jane-2024-03-15", "Mary-Jane", "2024-03-15"},
		{"subject with space", "Al Smith-2023-12-31", "Al Smith", "2023-12-31"},
		{"subject that looks like a date", "2024-01-01-2024-01-02", "2024-01-01", "2024-01-02"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			subject, date, err := ParseKey(tt.key)
			require.NoError(t, err)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.date, date.String())
		})
	}
}

func TestParseKey_Invalid(t *testing.T) {
	for _, key := range []string{
		"",
		"Alice",
		"-2024-01-02",
		"Alice2024-01-02",
		"Alice-2024-13-01",
		"Alice-24-01-02",
		"   -2024-01-02",
	} {
		t.Run(key, func(t *testing.T) {
			_, _, err := ParseKey(key)
			assert.Error(t, err)
		})
	}
}

func TestMakeKey_RoundTrip(t *testing.T) {
	d := MustParseDate("2024-02-29")
	k := MakeKey("Al", d)
	assert.Equal(t, Key("Al-2024-02-29"), k)

	subject, date, err := k.Split()
	require.NoError(t, err)
	assert.Equal(t, "Al", subject)
	assert.Equal(t, d, date)
}

func TestKey_Subject(t *testing.T) {
	assert.Equal(t, "Alice", Key("Alice-2024-01-01").Subject())
	assert.Equal(t, "", Key("garbage").Subject())
}
