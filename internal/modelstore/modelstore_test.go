package modelstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

func validManifest() schema.FeatureManifest {
	return schema.FeatureManifest{
		SchemaVersion: schema.FeatureSchemaVersion,
		Features:      schema.FeatureColumns,
		Targets:       []string{"cpu_percent", "memory_gb", "time_minutes"},
		Metrics:       schema.ManifestMetrics{R2Score: 0.91, MAE: 1.2, CVMean: 0.88},
	}
}

func writeModelDir(t *testing.T, manifest *schema.FeatureManifest) string {
	t.Helper()
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ModelFileName), []byte("model-bytes"), 0o644))

	if manifest != nil {
		data, err := json.Marshal(manifest)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFileName), data, 0o644))
	}
	return dir
}

func TestLocalStore_Resolve(t *testing.T) {
	manifest := validManifest()
	dir := writeModelDir(t, &manifest)

	store := NewLocalStore(dir)
	modelPath, got, err := store.Resolve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, ModelFileName), modelPath)
	require.NotNil(t, got)
	assert.Equal(t, schema.FeatureSchemaVersion, got.SchemaVersion)
	assert.Equal(t, schema.FeatureColumns, got.Features)
	assert.InDelta(t, 0.91, got.Metrics.R2Score, 0.001)
	assert.NoError(t, got.Validate())
}

func TestLocalStore_MissingModel(t *testing.T) {
	store := NewLocalStore(t.TempDir())
	_, _, err := store.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model artifact")
}

func TestLocalStore_NoManifest(t *testing.T) {
	dir := writeModelDir(t, nil)

	store := NewLocalStore(dir)
	modelPath, manifest, err := store.Resolve(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, modelPath)
	assert.Nil(t, manifest, "store without features.json should resolve a nil manifest")
}

func TestLocalStore_MalformedManifest(t *testing.T) {
	dir := writeModelDir(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFileName), []byte("{not-json"), 0o644))

	store := NewLocalStore(dir)
	_, _, err := store.Resolve(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse manifest")
}

func TestLoadManifest_CacheInvalidation(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ManifestFileName)

	first := validManifest()
	data, err := json.Marshal(first)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	baseTime := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(path, baseTime, baseTime))

	got, err := loadManifest(path)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.91, got.Metrics.R2Score, 0.001)

	// Same path and mtime is served from cache
	cached, err := loadManifest(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.91, cached.Metrics.R2Score, 0.001)

	// A retrained manifest carries a new mtime and must be re-read
	second := validManifest()
	second.Metrics.R2Score = 0.55
	data, err = json.Marshal(second)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	newTime := baseTime.Add(time.Minute)
	require.NoError(t, os.Chtimes(path, newTime, newTime))

	reread, err := loadManifest(path)
	require.NoError(t, err)
	assert.InDelta(t, 0.55, reread.Metrics.R2Score, 0.001)
}

func TestLoadManifest_MissingFile(t *testing.T) {
	manifest, err := loadManifest(filepath.Join(t.TempDir(), ManifestFileName))
	require.NoError(t, err)
	assert.Nil(t, manifest)
}

func TestNewS3Store_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     S3Config
		wantErr string
	}{
		{
			name:    "missing endpoint",
			cfg:     S3Config{Bucket: "models", AccessKey: "ak", SecretKey: "sk"},
			wantErr: "model endpoint is required",
		},
		{
			name:    "missing bucket",
			cfg:     S3Config{Endpoint: "localhost:9000", AccessKey: "ak", SecretKey: "sk"},
			wantErr: "model bucket is required",
		},
		{
			name:    "missing credentials",
			cfg:     S3Config{Endpoint: "localhost:9000", Bucket: "models"},
			wantErr: "credentials are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewS3Store(tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNewS3Store_Valid(t *testing.T) {
	store, err := NewS3Store(S3Config{
		Endpoint:  "localhost:9000",
		AccessKey: "ak",
		SecretKey: "sk",
		Bucket:    "models",
		Prefix:    "/team/builds/",
		CacheDir:  t.TempDir(),
	})
	require.NoError(t, err)
	require.NotNil(t, store)
	assert.Equal(t, "team/builds", store.prefix)
	assert.Equal(t, "team/builds/model.pkl", store.objectKey(ModelFileName))
}

func TestNewSource(t *testing.T) {
	t.Run("local path", func(t *testing.T) {
		cfg := &contract.Config{ModelPath: "/opt/models/current"}
		source := NewSource(cfg)
		assert.IsType(t, &LocalStore{}, source)
	})

	t.Run("s3 with credentials", func(t *testing.T) {
		t.Setenv(AccessKeyEnv, "test-access")
		t.Setenv(SecretKeyEnv, "test-secret")

		cfg := &contract.Config{
			ModelBucket:   "models",
			ModelEndpoint: "localhost:9000",
			ModelPrefix:   "builds",
		}
		source := NewSource(cfg)
		assert.IsType(t, &S3Store{}, source)
	})

	t.Run("s3 without credentials defers the error", func(t *testing.T) {
		t.Setenv(AccessKeyEnv, "")
		t.Setenv(SecretKeyEnv, "")

		cfg := &contract.Config{
			ModelBucket:   "models",
			ModelEndpoint: "localhost:9000",
		}
		source := NewSource(cfg)
		require.NotNil(t, source)

		_, _, err := source.Resolve(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "credentials are required")
	})
}
