package procedural

import (
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"
	"github.com/xeipuuv/gojsonschema"
)

// ManifestFile is the name of the manifest looked up in each procedural directory
const ManifestFile = "procedural.json"

// BuiltinPrefix marks a manifest main that refers to an in-process procedural
const BuiltinPrefix = "builtin:"

var (
	// idRegex validates procedural ID format (lowercase alphanumeric with hyphens)
	idRegex = regexp.MustCompile(`^[a-z0-9-]+$`)

	// semverRegex validates semver version format
	semverRegex = regexp.MustCompile(`^\d+\.\d+\.\d+$`)
)

// ManifestLoader loads and validates procedural manifests
type ManifestLoader struct {
	logger       zerolog.Logger
	schemaLoader gojsonschema.JSONLoader
}

// NewManifestLoader creates a new manifest loader
func NewManifestLoader(logger zerolog.Logger) *ManifestLoader {
	return &ManifestLoader{
		logger:       logger.With().Str("component", "manifest-loader").Logger(),
		schemaLoader: gojsonschema.NewStringLoader(ManifestSchema),
	}
}

// LoadManifest loads and validates a manifest from a file
func (m *ManifestLoader) LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest file: %w", err)
	}
	return m.Parse(data)
}

// Parse parses and validates manifest JSON
func (m *ManifestLoader) Parse(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest JSON: %w", err)
	}

	if err := m.validateSchema(data); err != nil {
		return nil, fmt.Errorf("manifest schema validation failed: %w", err)
	}

	if err := m.validateManifest(&manifest); err != nil {
		return nil, fmt.Errorf("manifest validation failed: %w", err)
	}

	m.logger.Debug().
		Str("id", manifest.ID).
		Str("version", manifest.Version).
		Msg("Loaded manifest")

	return &manifest, nil
}

// validateSchema validates the manifest against the JSON schema
func (m *ManifestLoader) validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(m.schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %w", err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("schema validation errors: %s", strings.Join(msgs, "; "))
	}

	return nil
}

// validateManifest performs additional validation beyond JSON schema
func (m *ManifestLoader) validateManifest(manifest *Manifest) error {
	if !idRegex.MatchString(manifest.ID) {
		return fmt.Errorf("invalid procedural ID format: %s (must be lowercase alphanumeric with hyphens)", manifest.ID)
	}

	if !semverRegex.MatchString(manifest.Version) {
		return fmt.Errorf("invalid version format: %s (must be semver: X.Y.Z)", manifest.Version)
	}

	if manifest.Main == "" || manifest.Main == BuiltinPrefix {
		return fmt.Errorf("main entry point cannot be empty")
	}

	if manifest.HostVersion != "" {
		if _, err := semver.NewConstraint(manifest.HostVersion); err != nil {
			return fmt.Errorf("invalid host version constraint %s: %w", manifest.HostVersion, err)
		}
	}

	for i, c := range manifest.Capabilities {
		if !ValidCapabilities[c] {
			return fmt.Errorf("capability %d: unrecognized capability: %s", i, c)
		}
	}

	seen := make(map[string]bool, len(manifest.Parameters))
	for i, p := range manifest.Parameters {
		if seen[p.Name] {
			return fmt.Errorf("parameter %d: duplicate parameter name: %s", i, p.Name)
		}
		seen[p.Name] = true
	}

	return nil
}

// Builtin returns the builtin name referenced by main, if any
func (m Manifest) Builtin() (string, bool) {
	if !strings.HasPrefix(m.Main, BuiltinPrefix) {
		return "", false
	}
	return strings.TrimPrefix(m.Main, BuiltinPrefix), true
}

// Parameter returns the declaration of the named parameter
func (m Manifest) Parameter(name string) (ParameterDecl, bool) {
	for _, p := range m.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return ParameterDecl{}, false
}
