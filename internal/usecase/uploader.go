package usecase

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"flight-pipeline-service/internal/domain/entity"
	"flight-pipeline-service/internal/domain/repository"
	"flight-pipeline-service/internal/infrastructure/router"
	"flight-pipeline-service/pkg/logger"
)

// Uploader pushes local raw data files into the storage namespace where
// the loaders expect them. A missing or empty local directory is not an
// error: the bucket may already hold the data from an earlier run.
type Uploader struct {
	storageRepo repository.StorageRepository
	router      *router.SourceRouter
	logger      logger.Logger
	rawDataDir  string
	prefix      string
	airportsKey string
}

// NewUploader creates a new uploader
func NewUploader(
	storageRepo repository.StorageRepository,
	sourceRouter *router.SourceRouter,
	logger logger.Logger,
	rawDataDir string,
	prefix string,
	airportsKey string,
) *Uploader {
	return &Uploader{
		storageRepo: storageRepo,
		router:      sourceRouter,
		logger:      logger,
		rawDataDir:  rawDataDir,
		prefix:      prefix,
		airportsKey: airportsKey,
	}
}

// Upload ensures the bucket exists and copies every recognized local
// file to its object key, in sorted name order
func (u *Uploader) Upload(ctx context.Context) error {
	if err := u.storageRepo.EnsureBucket(ctx); err != nil {
		return err
	}

	entries, err := os.ReadDir(u.rawDataDir)
	if os.IsNotExist(err) {
		u.logger.Info("Raw data directory does not exist, skipping upload", "dir", u.rawDataDir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read raw data directory %s: %w", u.rawDataDir, err)
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	uploaded := 0
	for _, name := range names {
		key, ok := u.keyFor(name)
		if !ok {
			u.logger.Debug("Skipping unrecognized local file", "file", name)
			continue
		}
		localPath := filepath.Join(u.rawDataDir, name)
		if err := u.storageRepo.Upload(ctx, key, localPath); err != nil {
			return fmt.Errorf("failed to upload %s: %w", name, err)
		}
		u.logger.Info("Uploaded raw file", "file", name, "key", key)
		uploaded++
	}

	u.logger.Info("Upload stage finished", "dir", u.rawDataDir, "uploaded", uploaded)
	return nil
}

// keyFor maps a local file name to its object key. The airports
// reference goes to its fixed key; fact CSVs go under the raw prefix.
func (u *Uploader) keyFor(name string) (string, bool) {
	switch u.router.Route(name) {
	case entity.SourceAirports:
		return u.airportsKey, true
	case entity.SourceFlights:
		return u.prefix + name, true
	default:
		return "", false
	}
}
