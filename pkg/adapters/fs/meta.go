package fs

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// FormatVersion is the layout version written to meta.yaml.
const FormatVersion = 1

// meta is persisted in <root>/<system dir>/meta.yaml.
type meta struct {
	Version int   `yaml:"version"`
	NextID  int64 `yaml:"next_id"`
}

func loadMeta(path string) (meta, bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return meta{}, false, nil
	}
	if err != nil {
		return meta{}, false, fmt.Errorf("failed to read meta: %w", err)
	}
	var m meta
	if err := yaml.Unmarshal(data, &m); err != nil {
		return meta{}, false, fmt.Errorf("failed to parse meta: %w", err)
	}
	if m.Version > FormatVersion {
		return meta{}, false, fmt.Errorf("store format %d is newer than supported format %d", m.Version, FormatVersion)
	}
	return m, true, nil
}

func saveMeta(path string, m meta) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, data)
}
