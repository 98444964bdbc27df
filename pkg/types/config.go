package types

import (
	"fmt"
	"runtime"
)

// ConverterMode selects how the converter process is driven.
type ConverterMode string

const (
	// ModeAuto picks batch on Windows, where the AbiCommand plugin does not
	// exist, and session everywhere else.
	ModeAuto ConverterMode = "auto"

	// ModeBatch spawns one process per conversion and waits for its exit.
	ModeBatch ConverterMode = "batch"

	// ModeSession spawns the converter's interactive command plugin and talks
	// to it over stdin/stdout.
	ModeSession ConverterMode = "session"
)

// Resolve returns the concrete mode for goos. ModeAuto is mapped to batch or
// session; other modes are returned as-is.
func (m ConverterMode) Resolve(goos string) ConverterMode {
	if m != ModeAuto && m != "" {
		return m
	}
	if goos == "windows" {
		return ModeBatch
	}
	return ModeSession
}

// Validate reports whether m is a known mode.
func (m ConverterMode) Validate() error {
	switch m {
	case ModeAuto, ModeBatch, ModeSession, "":
		return nil
	}
	return fmt.Errorf("unknown converter mode %q: want auto, batch, or session", m)
}

const (
	DefaultExecutable = "abiword"
	DefaultPlugin     = "AbiCommand"
	DefaultJournal    = "var/docbridge.db"
)

// ConverterConfig holds settings for the external converter process.
type ConverterConfig struct {
	// Executable is the converter binary, resolved against PATH.
	Executable string `json:"executable" yaml:"executable" mapstructure:"executable"`

	// Mode selects batch or session operation (default auto).
	Mode ConverterMode `json:"mode" yaml:"mode" mapstructure:"mode"`

	// Plugin is the interactive command plugin loaded in session mode.
	Plugin string `json:"plugin" yaml:"plugin" mapstructure:"plugin"`
}

// EffectiveMode resolves Mode for the running platform.
func (c ConverterConfig) EffectiveMode() ConverterMode {
	return c.Mode.Resolve(runtime.GOOS)
}

// JournalConfig holds settings for the conversion history database.
type JournalConfig struct {
	// Path is the SQLite database file. Empty disables the journal.
	Path string `json:"path" yaml:"path" mapstructure:"path"`
}

// MetricsConfig holds settings for Prometheus metrics export.
type MetricsConfig struct {
	// Textfile is written in the Prometheus text format after each CLI run,
	// for pickup by node_exporter's textfile collector. Empty disables it.
	Textfile string `json:"textfile" yaml:"textfile" mapstructure:"textfile"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is text or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all docbridge settings.
type Config struct {
	Converter ConverterConfig `json:"converter" yaml:"converter" mapstructure:"converter"`
	Journal   JournalConfig   `json:"journal" yaml:"journal" mapstructure:"journal"`
	Metrics   MetricsConfig   `json:"metrics" yaml:"metrics" mapstructure:"metrics"`
	Log       LogConfig       `json:"log" yaml:"log" mapstructure:"log"`
}

// Validate checks the settings that have a closed set of values.
func (c Config) Validate() error {
	if c.Converter.Executable == "" {
		return fmt.Errorf("converter.executable must not be empty")
	}
	if err := c.Converter.Mode.Validate(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown log format %q: want text or json", c.Log.Format)
	}
	return nil
}
