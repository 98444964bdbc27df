// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConverterMode_Resolve(t *testing.T) {
	tests := []struct {
		mode ConverterMode
		goos string
		want ConverterMode
	}{
		{ModeAuto, "windows", ModeBatch},
		{ModeAuto, "linux", ModeSession},
		{"", "darwin", ModeSession},
		{ModeBatch, "linux", ModeBatch},
		{ModeSession, "windows", ModeSession},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode)+"/"+tt.goos, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.mode.Resolve(tt.goos))
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Converter: ConverterConfig{Executable: "abiword", Mode: ModeAuto}}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "empty executable", mutate: func(c *Config) { c.Converter.Executable = "" }, wantErr: "converter.executable"},
		{name: "bad mode", mutate: func(c *Config) { c.Converter.Mode = "daemon" }, wantErr: "unknown converter mode"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "unknown log format"},
		{name: "json log format", mutate: func(c *Config) { c.Log.Format = "json" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestConversionRecord_Duration(t *testing.T) {
	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	r := ConversionRecord{StartedAt: start, FinishedAt: start.Add(1500 * time.Millisecond)}
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}
