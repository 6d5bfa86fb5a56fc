// Package blob mirrors ingested artifact files into an S3-compatible
// object store, keyed by artifact ID.
package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

var ErrNotFound = errors.New("object not found")

// Config points the store at an S3-compatible endpoint.
type Config struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Store wraps a bucket and creates it lazily on first use.
type Store struct {
	client   *minio.Client
	bucket   string
	region   string
	initOnce sync.Once
	initErr  error
}

func NewStore(cfg Config) (*Store, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("blob endpoint is required")
	}
	access := strings.TrimSpace(cfg.AccessKey)
	secret := strings.TrimSpace(cfg.SecretKey)
	if access == "" || secret == "" {
		return nil, fmt.Errorf("blob access key and secret key are required")
	}
	bucket := strings.TrimSpace(cfg.Bucket)
	if bucket == "" {
		return nil, fmt.Errorf("blob bucket is required")
	}
	region := strings.TrimSpace(cfg.Region)
	if region == "" {
		region = "us-east-1"
	}

	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(access, secret, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating blob client: %w", err)
	}

	return &Store{client: client, bucket: bucket, region: region}, nil
}

func (s *Store) ensureBucket(ctx context.Context) error {
	s.initOnce.Do(func() {
		exists, err := s.client.BucketExists(ctx, s.bucket)
		if err != nil {
			s.initErr = err
			return
		}
		if exists {
			return
		}
		s.initErr = s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: s.region})
	})
	return s.initErr
}

// Put streams one file into the bucket under <artifactID>/<name>. Size may
// be -1 when the length is unknown.
func (s *Store) Put(ctx context.Context, artifactID, name string, r io.Reader, size int64) error {
	artifactID = strings.TrimSpace(artifactID)
	if artifactID == "" {
		return fmt.Errorf("artifact id is required")
	}
	name = strings.TrimLeft(strings.TrimSpace(name), "/")
	if name == "" {
		return fmt.Errorf("object name is required")
	}
	if err := s.ensureBucket(ctx); err != nil {
		return fmt.Errorf("error ensuring bucket: %w", err)
	}

	_, err := s.client.PutObject(ctx, s.bucket, objectKey(artifactID, name), r, size,
		minio.PutObjectOptions{ContentType: "application/octet-stream"})
	if err != nil {
		return fmt.Errorf("error storing %s: %w", name, err)
	}
	return nil
}

// Get opens the stored object for reading. The caller closes the reader.
func (s *Store) Get(ctx context.Context, artifactID, name string) (io.ReadCloser, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("error ensuring bucket: %w", err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, objectKey(artifactID, name), minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("error opening %s: %w", name, err)
	}

	// GetObject is lazy; surface missing keys eagerly.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" || resp.Code == "NoSuchBucket" {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("error reading %s: %w", name, err)
	}
	return obj, nil
}

// List returns the stored file names for an artifact, sorted.
func (s *Store) List(ctx context.Context, artifactID string) ([]string, error) {
	if err := s.ensureBucket(ctx); err != nil {
		return nil, fmt.Errorf("error ensuring bucket: %w", err)
	}

	prefix := strings.TrimSuffix(strings.TrimSpace(artifactID), "/") + "/"
	names := make([]string, 0, 16)
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if obj.Key == "" {
			continue
		}
		names = append(names, strings.TrimPrefix(obj.Key, prefix))
	}
	sort.Strings(names)
	return names, nil
}

// Delete removes every stored object for an artifact.
func (s *Store) Delete(ctx context.Context, artifactID string) error {
	names, err := s.List(ctx, artifactID)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := s.client.RemoveObject(ctx, s.bucket,
			objectKey(artifactID, name), minio.RemoveObjectOptions{}); err != nil {
			return fmt.Errorf("error removing %s: %w", name, err)
		}
	}
	return nil
}

// PresignedURL returns a time-limited download link for a stored object.
func (s *Store) PresignedURL(ctx context.Context, artifactID, name string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = time.Hour
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectKey(artifactID, name), expiry, nil)
	if err != nil {
		return "", fmt.Errorf("error presigning %s: %w", name, err)
	}
	return u.String(), nil
}

func objectKey(artifactID, name string) string {
	return strings.TrimSpace(artifactID) + "/" + strings.TrimLeft(strings.TrimSpace(name), "/")
}
