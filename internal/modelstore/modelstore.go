// Package modelstore resolves the trained model artifacts a prediction run
// needs, either from a local directory or from an S3-compatible bucket.
package modelstore

import (
	"context"
	"errors"
	"os"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// Artifact names inside a model directory or bucket prefix.
const (
	ModelFileName    = "model.pkl"
	ManifestFileName = "features.json"
)

// Credential environment variables for the artifact endpoint. Secrets stay
// out of config files and process listings.
const (
	AccessKeyEnv = "SIZEUP_MODEL_ACCESS_KEY"
	SecretKeyEnv = "SIZEUP_MODEL_SECRET_KEY"
)

// errObjectMissing marks a remote artifact that does not exist. The manifest
// is optional, so a missing features.json resolves to a nil manifest.
var errObjectMissing = errors.New("object not found")

// Store locates the model artifacts for one prediction attempt. Resolve
// returns the local path of the model file plus the parsed feature manifest,
// or a nil manifest when the source ships none.
type Store interface {
	Resolve(ctx context.Context) (string, *schema.FeatureManifest, error)
}

// NewSource picks the artifact store for the resolved config: an S3 bucket
// when one is configured, the local model directory otherwise. A bad bucket
// config surfaces on the first Resolve rather than aborting the run here.
func NewSource(cfg *contract.Config) Store {
	if cfg.ModelBucket != "" {
		store, err := NewS3Store(S3Config{
			Endpoint:  cfg.ModelEndpoint,
			AccessKey: os.Getenv(AccessKeyEnv),
			SecretKey: os.Getenv(SecretKeyEnv),
			Bucket:    cfg.ModelBucket,
			Prefix:    cfg.ModelPrefix,
			Secure:    cfg.ModelSecure,
		})
		if err != nil {
			return &failedStore{err: err}
		}
		return store
	}
	return NewLocalStore(cfg.ModelPath)
}

// failedStore defers a construction error to Resolve so a misconfigured
// artifact endpoint degrades to the heuristic fallback path.
type failedStore struct {
	err error
}

func (f *failedStore) Resolve(context.Context) (string, *schema.FeatureManifest, error) {
	return "", nil, f.err
}
