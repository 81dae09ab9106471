package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"

	"github.com/roach88/statuslog/internal/engine"
	"github.com/roach88/statuslog/internal/update"
)

// DefaultFile is the settings file looked up when none is named.
const DefaultFile = "statuslog.yaml"

// Backend names.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendGCS    = "gcs"
)

//go:embed schema.cue
var schemaSource string

// Settings is the parsed statuslog.yaml.
type Settings struct {
	Backend         string `yaml:"backend" json:"backend"`
	Dir             string `yaml:"dir,omitempty" json:"dir,omitempty"`
	Database        string `yaml:"database,omitempty" json:"database,omitempty"`
	Bucket          string `yaml:"bucket,omitempty" json:"bucket,omitempty"`
	Prefix          string `yaml:"prefix,omitempty" json:"prefix,omitempty"`
	CredentialsFile string `yaml:"credentials_file,omitempty" json:"credentials_file,omitempty"`

	LogPath     string `yaml:"log_path" json:"log_path"`
	RosterPath  string `yaml:"roster_path" json:"roster_path"`
	SeasonsPath string `yaml:"seasons_path" json:"seasons_path"`

	LookbackDays int `yaml:"lookback_days" json:"lookback_days"`
	MaxAttempts  int `yaml:"max_attempts" json:"max_attempts"`
	CacheSize    int `yaml:"cache_size" json:"cache_size"`

	Listen             string `yaml:"listen,omitempty" json:"listen,omitempty"`
	LogFormat          string `yaml:"log_format" json:"log_format"`
	LogLevel           string `yaml:"log_level" json:"log_level"`
	CarryForwardOnRead bool   `yaml:"carry_forward_on_read" json:"carry_forward_on_read"`
	Timezone           string `yaml:"timezone,omitempty" json:"timezone,omitempty"`
}

// Default returns the settings used for omitted fields.
func Default() Settings {
	return Settings{
		Backend:      BackendFile,
		Dir:          ".",
		Database:     "statuslog.db",
		LogPath:      "log.csv",
		RosterPath:   "roster.csv",
		SeasonsPath:  "seasons.csv",
		LookbackDays: engine.DefaultLookbackDays,
		MaxAttempts:  update.DefaultMaxAttempts,
		CacheSize:    64,
		Listen:       ":8080",
		LogFormat:    "text",
		LogLevel:     "info",
	}
}

// Load reads and validates a settings file. A missing file is only an
// error when required is true; otherwise the defaults are returned.
func Load(path string, required bool) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !required {
		s := Default()
		return s, s.Validate()
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read settings file: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes settings YAML over the defaults and validates the result.
// Unknown fields are rejected.
func Parse(data []byte) (Settings, error) {
	s := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks s against the embedded schema.
func (s Settings) Validate() error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("settings schema: %w", err)
	}
	def := schema.LookupPath(cue.ParsePath("#Settings"))
	v := def.Unify(ctx.Encode(s))
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return &Error{Message: firstCUEError(err)}
	}
	if _, err := s.Location(); err != nil {
		return &Error{Message: err.Error()}
	}
	return nil
}

// Location returns the configured time zone, or time.Local when unset.
func (s Settings) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

// Error is an invalid-settings error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return "invalid settings: " + e.Message
}

func firstCUEError(err error) string {
	errs := cueerrors.Errors(err)
	if len(errs) == 0 {
		return err.Error()
	}
	return errs[0].Error()
}
