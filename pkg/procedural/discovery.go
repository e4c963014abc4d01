package procedural

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

type scanTarget struct {
	path   string
	source Source
}

// Discovery scans directories to find procedurals
type Discovery struct {
	logger zerolog.Logger
}

// NewDiscovery creates a new discovery instance
func NewDiscovery(logger zerolog.Logger) *Discovery {
	return &Discovery{
		logger: logger.With().Str("component", "procedural-discovery").Logger(),
	}
}

// Discover scans configured directories for procedurals.
// A directory that cannot be scanned is logged and skipped.
func (d *Discovery) Discover(config DiscoveryConfig) []Discovered {
	var discovered []Discovered

	dirs := []scanTarget{
		{config.BuiltinDir, SourceBuiltin},
		{config.WorkspaceDir, SourceWorkspace},
	}
	for _, extra := range config.ExtraDirs {
		dirs = append(dirs, scanTarget{extra, SourceExtra})
	}

	for _, dir := range dirs {
		if dir.path == "" {
			continue
		}
		found, err := d.scanDirectory(dir.path, dir.source)
		if err != nil {
			d.logger.Warn().Err(err).Str("dir", dir.path).Str("source", string(dir.source)).Msg("Failed to scan directory")
			continue
		}
		discovered = append(discovered, found...)
	}

	d.logger.Info().Int("count", len(discovered)).Msg("Procedural discovery completed")
	return discovered
}

// scanDirectory scans a single directory for procedurals
func (d *Discovery) scanDirectory(dir string, source Source) ([]Discovered, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			d.logger.Debug().Str("dir", dir).Msg("Directory does not exist, skipping")
			return nil, nil
		}
		return nil, fmt.Errorf("failed to stat directory %s: %w", dir, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var discovered []Discovered
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		procDir := filepath.Join(dir, entry.Name())
		manifestPath := filepath.Join(procDir, ManifestFile)

		if _, err := os.Stat(manifestPath); err != nil {
			if !os.IsNotExist(err) {
				d.logger.Warn().Err(err).Str("dir", procDir).Msg("Failed to check for manifest")
			}
			continue
		}

		found := Discovered{
			ID:           entry.Name(),
			Path:         procDir,
			Source:       source,
			ManifestPath: manifestPath,
		}
		discovered = append(discovered, found)

		d.logger.Debug().
			Str("id", found.ID).
			Str("path", found.Path).
			Str("source", string(source)).
			Msg("Discovered procedural")
	}

	return discovered, nil
}
