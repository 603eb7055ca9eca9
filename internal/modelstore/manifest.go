package modelstore

import (
	"encoding/json"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/sizeup-ci/sizeup/schema"
)

// manifestCacheSize bounds the parsed-manifest cache. Sixteen entries cover
// every model a long-lived MCP server realistically rotates through.
const manifestCacheSize = 16

// manifestCache holds parsed manifests keyed by path plus mtime, so a
// retrained manifest invalidates its own entry.
var manifestCache = newManifestCache()

func newManifestCache() *lru.Cache[string, schema.FeatureManifest] {
	cache, err := lru.New[string, schema.FeatureManifest](manifestCacheSize)
	if err != nil {
		// lru.New only fails for a non-positive size.
		panic(err)
	}
	return cache
}

// loadManifest parses a features.json document. A missing file resolves to a
// nil manifest; a present but unreadable or malformed one is an error, since
// silently ignoring it would hide a broken training pipeline.
func loadManifest(path string) (*schema.FeatureManifest, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat manifest %s: %w", path, err)
	}

	key := fmt.Sprintf("%s|%d", path, info.ModTime().UnixNano())
	if cached, ok := manifestCache.Get(key); ok {
		return &cached, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}

	var manifest schema.FeatureManifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}

	manifestCache.Add(key, manifest)
	return &manifest, nil
}
