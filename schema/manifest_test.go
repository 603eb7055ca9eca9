package schema_test

import (
	"testing"

	"github.com/sizeup-ci/sizeup/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validManifest() schema.FeatureManifest {
	features := make([]string, len(schema.FeatureColumns))
	copy(features, schema.FeatureColumns)
	return schema.FeatureManifest{
		SchemaVersion: schema.FeatureSchemaVersion,
		Features:      features,
		Targets:       []string{"cpu", "memoryGb", "timeMinutes"},
		Metrics:       schema.ManifestMetrics{R2Score: 0.91, MAE: 0.4, CVMean: 0.88},
	}
}

func TestManifestValidate(t *testing.T) {
	require.NoError(t, validManifest().Validate())
}

func TestManifestValidateLegacyVersion(t *testing.T) {
	m := validManifest()
	m.SchemaVersion = 0 // manifests written before the version field
	assert.NoError(t, m.Validate())
}

func TestManifestValidateVersionMismatch(t *testing.T) {
	m := validManifest()
	m.SchemaVersion = schema.FeatureSchemaVersion + 1

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrManifestMismatch)
}

func TestManifestValidateCountMismatch(t *testing.T) {
	m := validManifest()
	m.Features = m.Features[:len(m.Features)-1]

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrManifestMismatch)
}

func TestManifestValidateOrderMismatch(t *testing.T) {
	m := validManifest()
	m.Features[0], m.Features[1] = m.Features[1], m.Features[0]

	err := m.Validate()
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrManifestMismatch)
	assert.Contains(t, err.Error(), "repo_size_mb")
}
