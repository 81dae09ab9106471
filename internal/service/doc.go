// Package service implements the statuslog command surface on top of the
// update coordinator: reads of the log, roster configuration and season
// table, and the write operations that mutate them.
//
// A Service is an explicit value built from one storage adapter; the CLI
// and the HTTP API both drive the same instance.
package service
