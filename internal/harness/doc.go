// Package harness replays YAML scenarios against a fresh in-memory
// statuslog and checks the outcome.
//
// A scenario names a fixed "today", optional blobs to seed the store
// with, a sequence of steps (the same actions the HTTP API accepts, plus
// a few that steer the test: moving the clock, writing a blob behind the
// coordinator's back) and assertions on the final log and roster.
//
//	name: carry-forward-basics
//	description: roster of two, one injury, one projection
//	today: "2024-01-02"
//	steps:
//	  - action: add-subject
//	    args: {subject: A}
//	  - action: update-record
//	    args: {key: A-2024-01-01, record: {status: Injured}}
//	  - action: carry-forward
//	    args: {as_of: "2024-01-01"}
//	    expect: {changed: true}
//	assertions:
//	  - type: record
//	    key: A-2024-01-02
//	    expect: {status: Injured}
//
// The final blobs form a Snapshot that can be compared against a golden
// file with RunWithGolden, or by the statuslog test command.
package harness
