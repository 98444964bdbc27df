// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ConversionStatus indicates the outcome of a conversion.
type ConversionStatus string

const (
	ConversionDone   ConversionStatus = "converted"
	ConversionFailed ConversionStatus = "failed"
)

// ConversionRecord is one finished conversion as stored in the journal.
type ConversionRecord struct {
	// ID is the task identifier assigned at enqueue time.
	ID string `json:"id" yaml:"id"`

	Source      string `json:"source" yaml:"source"`
	Destination string `json:"destination" yaml:"destination"`
	Format      string `json:"format" yaml:"format"`

	// Mode is the converter mode that ran the task.
	Mode ConverterMode `json:"mode" yaml:"mode"`

	Status ConversionStatus `json:"status" yaml:"status"`

	// Error is the failure description, empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`

	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	FinishedAt time.Time `json:"finished_at" yaml:"finished_at"`
}

// Duration returns how long the conversion ran.
func (r ConversionRecord) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
