package modelstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/sizeup-ci/sizeup/internal/contract"
	"github.com/sizeup-ci/sizeup/schema"
)

// S3Config carries the settings for an S3-compatible artifact endpoint.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	Secure    bool
	CacheDir  string
}

// S3Store fetches model artifacts from an S3-compatible bucket into a local
// cache directory. Fetches are skipped while the cached copy is at least as
// new as the remote object.
type S3Store struct {
	client   *minio.Client
	bucket   string
	prefix   string
	cacheDir string
	initOnce sync.Once
	initErr  error
}

var _ Store = &S3Store{} // Compile-time check

// NewS3Store creates a store over an S3-compatible bucket.
func NewS3Store(cfg S3Config) (*S3Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("model endpoint is required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("model bucket is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("model store credentials are required; set %s and %s", AccessKeyEnv, SecretKeyEnv)
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.Secure,
	})
	if err != nil {
		return nil, fmt.Errorf("init artifact client: %w", err)
	}

	cacheDir := strings.TrimSpace(cfg.CacheDir)
	if cacheDir == "" {
		cacheDir = contract.GetModelCacheDir()
	}

	return &S3Store{
		client:   client,
		bucket:   bucket,
		prefix:   strings.Trim(cfg.Prefix, "/"),
		cacheDir: cacheDir,
	}, nil
}

// ensureBucket verifies the bucket once per store. Unlike a writer we never
// create it: a missing bucket means the training pipeline has not published
// anything to fetch.
func (s *S3Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if !exists {
			s.initErr = fmt.Errorf("bucket %q does not exist", s.bucket)
		}
	})
	return s.initErr
}

// Resolve fetches the model and manifest into the local cache and returns
// the cached model path. A bucket without features.json resolves with a nil
// manifest.
func (s *S3Store) Resolve(ctx context.Context) (string, *schema.FeatureManifest, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return "", nil, fmt.Errorf("ensure bucket: %w", err)
	}

	modelPath, err := s.fetch(ctx, ModelFileName)
	if err != nil {
		return "", nil, err
	}

	manifestPath, err := s.fetch(ctx, ManifestFileName)
	if err != nil {
		if errors.Is(err, errObjectMissing) {
			return modelPath, nil, nil
		}
		return "", nil, err
	}

	manifest, err := loadManifest(manifestPath)
	if err != nil {
		return "", nil, err
	}
	return modelPath, manifest, nil
}

// fetch downloads one artifact into the cache directory, reusing the cached
// copy when its mod time and size still match the remote object.
func (s *S3Store) fetch(ctx context.Context, name string) (string, error) {
	key := s.objectKey(name)

	stat, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return "", fmt.Errorf("%w: %s", errObjectMissing, key)
		}
		return "", fmt.Errorf("stat object %s: %w", key, err)
	}

	localPath := filepath.Join(s.cacheDir, s.bucket, filepath.FromSlash(s.prefix), name)
	if info, err := os.Stat(localPath); err == nil &&
		!info.ModTime().Before(stat.LastModified) && info.Size() == stat.Size {
		return localPath, nil
	}

	if err := os.MkdirAll(filepath.Dir(localPath), 0o755); err != nil {
		return "", fmt.Errorf("create cache dir: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get object %s: %w", key, err)
	}
	defer func() { _ = obj.Close() }()

	// Download to a temp file and rename, so a failed transfer never leaves
	// a torn artifact behind for the next run to trust.
	tmp, err := os.CreateTemp(filepath.Dir(localPath), name+".tmp-*")
	if err != nil {
		return "", fmt.Errorf("stage download: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := io.Copy(tmp, obj); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" {
			return "", fmt.Errorf("%w: %s", errObjectMissing, key)
		}
		return "", fmt.Errorf("download object %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("finish download: %w", err)
	}
	if err := os.Rename(tmpPath, localPath); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("place artifact: %w", err)
	}

	// Stamp the remote mod time so the reuse check holds across runs.
	_ = os.Chtimes(localPath, stat.LastModified, stat.LastModified)
	return localPath, nil
}

func (s *S3Store) objectKey(name string) string {
	if s.prefix == "" {
		return name
	}
	return s.prefix + "/" + name
}
