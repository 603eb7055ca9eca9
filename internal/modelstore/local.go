package modelstore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sizeup-ci/sizeup/schema"
)

// LocalStore serves model artifacts from a directory on disk. An empty
// directory means the current working directory.
type LocalStore struct {
	dir string
}

var _ Store = &LocalStore{} // Compile-time check

// NewLocalStore creates a store over a local model directory.
func NewLocalStore(dir string) *LocalStore {
	return &LocalStore{dir: dir}
}

// Resolve checks the model file exists and loads the feature manifest next
// to it. A directory without features.json resolves with a nil manifest.
func (s *LocalStore) Resolve(_ context.Context) (string, *schema.FeatureManifest, error) {
	modelPath := filepath.Join(s.dir, ModelFileName)
	if _, err := os.Stat(modelPath); err != nil {
		return "", nil, fmt.Errorf("model artifact %s: %w", modelPath, err)
	}

	manifest, err := loadManifest(filepath.Join(s.dir, ManifestFileName))
	if err != nil {
		return "", nil, err
	}
	return modelPath, manifest, nil
}
