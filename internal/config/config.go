// Package config loads ledgerkv settings from an optional CUE file.
//
// The file is unified with an embedded schema that owns every default
// and constraint, so a missing file and an empty file both yield the
// defaults. Unknown fields are rejected because #Config is closed.
package config

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

//go:embed schema.cue
var schemaSrc []byte

// Config holds the runtime settings of the ledgerkv binary.
type Config struct {
	// Database is the path of the SQLite file backing the ledger.
	Database string `json:"database"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"log_level"`

	// Format selects CLI output: text or json.
	Format string `json:"format"`

	// BusyTimeoutMS is how long SQLite waits on a locked database.
	BusyTimeoutMS int `json:"busy_timeout_ms"`
}

// Default returns the schema defaults.
func Default() Config {
	ctx := cuecontext.New()
	cfg, err := decode(ctx, ctx.CompileString("{}"))
	if err != nil {
		// Unreachable unless schema.cue is broken.
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads the CUE file at path and returns it merged with the
// defaults. An empty path returns Default().
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	ctx := cuecontext.New()
	file := ctx.CompileBytes(data, cue.Filename(path))
	if err := file.Err(); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg, err := decode(ctx, file)
	if err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func decode(ctx *cue.Context, file cue.Value) (Config, error) {
	schema := ctx.CompileBytes(schemaSrc, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, err
	}
	v := schema.LookupPath(cue.ParsePath("#Config")).Unify(file)
	if err := v.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SlogLevel maps LogLevel to a slog.Level. Unknown names map to Info.
func (c Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
