// Package config loads statuslog.yaml.
//
// Settings are decoded strictly with gopkg.in/yaml.v3, layered over
// defaults, and checked against an embedded CUE schema before use. The
// package also turns settings into the runtime pieces the commands need:
// a logger, a time zone and a storage adapter.
package config
