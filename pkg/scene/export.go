package scene

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Supported snapshot encodings
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Encode writes the snapshot to w in the given format
func (s *Snapshot) Encode(w io.Writer, format string) error {
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode snapshot as json: %w", err)
		}
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return fmt.Errorf("failed to encode snapshot as yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to flush yaml encoder: %w", err)
		}
	default:
		return fmt.Errorf("unsupported snapshot format: %s", format)
	}
	return nil
}
