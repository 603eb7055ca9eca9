package schema

import (
	"errors"
	"fmt"
)

// ErrManifestMismatch indicates the model was trained against a different
// feature schema than this binary encodes. Selection falls back to the
// heuristic estimator, but the mismatch is always reported.
var ErrManifestMismatch = errors.New("feature manifest mismatch")

// ManifestMetrics holds the training metrics recorded alongside the model.
type ManifestMetrics struct {
	R2Score float64 `json:"r2_score"`
	MAE     float64 `json:"mae"`
	CVMean  float64 `json:"cv_mean"`
}

// FeatureManifest is the features.json document written at training time.
// It pins the exact feature names and order the model artifact expects.
type FeatureManifest struct {
	SchemaVersion int             `json:"schema_version,omitempty"`
	Features      []string        `json:"features"`
	Targets       []string        `json:"targets"`
	Metrics       ManifestMetrics `json:"metrics"`
}

// Validate checks the manifest against the canonical feature schema.
// Manifests without an explicit schema_version are accepted when their
// feature list matches exactly; anything else is ErrManifestMismatch.
func (m FeatureManifest) Validate() error {
	if m.SchemaVersion != 0 && m.SchemaVersion != FeatureSchemaVersion {
		return fmt.Errorf("%w: manifest schema_version %d, binary expects %d",
			ErrManifestMismatch, m.SchemaVersion, FeatureSchemaVersion)
	}
	if len(m.Features) != FeatureCount {
		return fmt.Errorf("%w: manifest has %d features, binary expects %d",
			ErrManifestMismatch, len(m.Features), FeatureCount)
	}
	for i, name := range m.Features {
		if name != FeatureColumns[i] {
			return fmt.Errorf("%w: feature %d is %q, binary expects %q",
				ErrManifestMismatch, i, name, FeatureColumns[i])
		}
	}
	return nil
}
