// Package codec converts the status log between its CSV wire format and
// an in-memory ir.Log.
//
// The format is deliberately unescaped: fields are joined with commas and
// records with newlines. Values must therefore not contain newlines, and
// only the last field (comment) may contain commas. Input validation
// enforces this before anything reaches Encode.
package codec

import (
	"bytes"
	"strings"

	"github.com/roach88/statuslog/internal/ir"
)

// Header is the first line of every encoded log.
const Header = "key,status,injurySite,injury,severity,comment"

// fieldCount is the number of comma-separated fields per line.
const fieldCount = 6

// Decode parses raw CSV into a log.
//
// The first line is a header and is discarded. Blank lines and lines with
// an empty key are dropped. Missing trailing fields default to "". The
// comment field absorbs any extra commas. A repeated key overwrites the
// earlier record but keeps its position.
func Decode(raw []byte) *ir.Log {
	log := ir.NewLog()
	lines := strings.Split(string(raw), "\n")
	if len(lines) <= 1 {
		return log
	}
	for _, line := range lines[1:] {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitFields(line)
		if fields[0] == "" {
			continue
		}
		log.Set(ir.Key(fields[0]), ir.Record{
			Status:     fields[1],
			InjurySite: fields[2],
			Injury:     fields[3],
			Severity:   fields[4],
			Comment:    fields[5],
		})
	}
	return log
}

// splitFields splits line into exactly fieldCount fields.
func splitFields(line string) [fieldCount]string {
	var out [fieldCount]string
	parts := strings.SplitN(line, ",", fieldCount)
	copy(out[:], parts)
	return out
}

// Encode serializes log as CSV in the log's iteration order.
// Every line, including the header, is newline-terminated.
func Encode(log *ir.Log) []byte {
	var buf bytes.Buffer
	buf.WriteString(Header)
	buf.WriteByte('\n')
	for _, e := range log.Entries() {
		buf.WriteString(string(e.Key))
		for _, f := range []string{e.Record.Status, e.Record.InjurySite, e.Record.Injury, e.Record.Severity, e.Record.Comment} {
			buf.WriteByte(',')
			buf.WriteString(f)
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}
