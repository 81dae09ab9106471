// Package api serves the statuslog command surface over HTTP.
//
// Reads are plain GET routes. Every write goes through
// POST /actions/{action} with a JSON payload, mirroring the CLI's
// subcommands. Errors use one body shape:
//
//	{"error": {"code": "...", "message": "...", "fields": [...]}}
package api
