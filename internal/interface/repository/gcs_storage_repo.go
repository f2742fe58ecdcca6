package repository

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/pkg/logger"

	"cloud.google.com/go/storage"
	"golang.org/x/oauth2"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// GCSStorageRepository implements StorageRepository over a GCS bucket.
// With STORAGE_EMULATOR_HOST set it talks unauthenticated to a local
// emulator, which is how local development runs the pipeline end to end.
type GCSStorageRepository struct {
	client    *storage.Client
	bucket    string
	projectID string
	logger    logger.Logger
}

// NewGCSStorageRepository creates a new storage repository
func NewGCSStorageRepository(ctx context.Context, bucket, credentialsFile, accessToken string, log logger.Logger) (repository.StorageRepository, error) {
	var opts []option.ClientOption

	if host := strings.TrimSpace(os.Getenv("STORAGE_EMULATOR_HOST")); host != "" {
		log.Info("Using storage emulator", "host", host)
		opts = append(opts, option.WithoutAuthentication())
	} else if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	} else if accessToken != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
		opts = append(opts, option.WithTokenSource(ts))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	projectID := os.Getenv("GCS_PROJECT_ID")
	if projectID == "" {
		projectID = "local-dev"
	}

	return &GCSStorageRepository{
		client:    client,
		bucket:    bucket,
		projectID: projectID,
		logger:    log,
	}, nil
}

// EnsureBucket creates the bucket when it does not exist yet
func (r *GCSStorageRepository) EnsureBucket(ctx context.Context) error {
	bkt := r.client.Bucket(r.bucket)
	_, err := bkt.Attrs(ctx)
	if err == nil {
		return nil
	}
	if !errors.Is(err, storage.ErrBucketNotExist) {
		return fmt.Errorf("failed to check bucket %s: %w", r.bucket, err)
	}

	r.logger.Info("Creating bucket", "bucket", r.bucket)
	if err := bkt.Create(ctx, r.projectID, nil); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", r.bucket, err)
	}
	return nil
}

// Upload copies a local file to an object key
func (r *GCSStorageRepository) Upload(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", localPath, err)
	}
	defer f.Close()

	w := r.client.Bucket(r.bucket).Object(key).NewWriter(ctx)
	if _, err := io.Copy(w, f); err != nil {
		w.Close()
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finalize upload of %s: %w", key, err)
	}

	r.logger.Debug("Uploaded object", "bucket", r.bucket, "key", key)
	return nil
}

// Download opens an object for streaming reads. The caller closes it.
func (r *GCSStorageRepository) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	rc, err := r.client.Bucket(r.bucket).Object(key).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	return rc, nil
}

// List returns all object keys under a prefix in lexicographic order
func (r *GCSStorageRepository) List(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	it := r.client.Bucket(r.bucket).Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list objects under %s: %w", prefix, err)
		}
		keys = append(keys, attrs.Name)
	}

	sort.Strings(keys)
	return keys, nil
}

// Exists reports whether an object key is present
func (r *GCSStorageRepository) Exists(ctx context.Context, key string) (bool, error) {
	_, err := r.client.Bucket(r.bucket).Object(key).Attrs(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, storage.ErrObjectNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("failed to check object %s: %w", key, err)
}
