package houses

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v3"
)

// Manifest describes a packaged dataset: where the parquet file lives
// (relative to the manifest), which snapshot it holds, and where the
// upstream documentation is.
type Manifest struct {
	Dataset struct {
		Path          string `yaml:"path" toml:"path"`
		SnapshotYear  int    `yaml:"snapshot_year" toml:"snapshot_year"`
		Documentation string `yaml:"documentation" toml:"documentation"`
	} `yaml:"dataset" toml:"dataset"`
}

// tomlUnmarshal is installed by the optional toml build tag.
var tomlUnmarshal func([]byte, any) error

// OpenManifest reads a dataset manifest and opens the dataset it points to.
// YAML is always supported; a .toml manifest additionally requires building
// with the toml tag.
func OpenManifest(path string) (*Dataset, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: manifest %q: %v", ErrDataUnavailable, path, err)
	}
	var m Manifest
	if filepath.Ext(path) == ".toml" {
		if tomlUnmarshal == nil {
			return nil, fmt.Errorf("houses: manifest %q: toml manifests require building with the toml tag", path)
		}
		if err := tomlUnmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("houses: manifest %q: %w", path, err)
		}
	} else {
		if err := yaml.Unmarshal(b, &m); err != nil {
			return nil, fmt.Errorf("houses: manifest %q: %w", path, err)
		}
	}
	if m.Dataset.Path == "" {
		return nil, fmt.Errorf("houses: manifest %q: missing dataset path", path)
	}
	dataPath := m.Dataset.Path
	if !filepath.IsAbs(dataPath) {
		dataPath = filepath.Join(filepath.Dir(path), dataPath)
	}
	d, err := Open(dataPath)
	if err != nil {
		return nil, err
	}
	if m.Dataset.Documentation != "" {
		d.docURL = m.Dataset.Documentation
	}
	d.snapshotYear = m.Dataset.SnapshotYear
	return d, nil
}
