// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package journal

import (
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/docbridge/pkg/types"
)

// WriteYAML encodes records as a YAML sequence.
func WriteYAML(w io.Writer, records []types.ConversionRecord) error {
	if records == nil {
		records = []types.ConversionRecord{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

// WriteJSON encodes records as an indented JSON array.
func WriteJSON(w io.Writer, records []types.ConversionRecord) error {
	if records == nil {
		records = []types.ConversionRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return nil
}
