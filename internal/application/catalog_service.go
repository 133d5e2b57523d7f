package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/soundclone/soundclone-api/internal/domain/repository"
)

// CatalogService manages songs, artists and genres together with their blobs
// and the search index.
type CatalogService struct {
	Store   repo.Store
	Objects repo.ObjectStore // nil disables uploads
	Index   SearchIndex      // nil disables index sync
	Logger  *logrus.Logger

	now func() time.Time
}

func NewCatalogService(store repo.Store, objects repo.ObjectStore, index SearchIndex, logger *logrus.Logger) *CatalogService {
	return &CatalogService{Store: store, Objects: objects, Index: index, Logger: logger, now: time.Now}
}

func (s *CatalogService) clock() time.Time {
	if s.now == nil {
		return time.Now()
	}
	return s.now()
}

// store uploads u under a key derived from kind and category.
func (s *CatalogService) store(ctx context.Context, u *Upload, kind, category string) (string, error) {
	if s.Objects == nil {
		return "", ErrStorageUnavailable
	}
	key := ObjectKey(kind, category, u.Filename, s.clock())
	if _, err := s.Objects.Upload(ctx, key, u.ContentType, u.Reader); err != nil {
		return "", fail(s.Logger, "failed to upload file", err, logrus.Fields{"key": key})
	}
	return key, nil
}

// discard deletes blobs that are no longer referenced. Failures only leave
// orphans behind, so they are logged and swallowed.
func (s *CatalogService) discard(ctx context.Context, keys ...string) {
	if s.Objects == nil {
		return
	}
	for _, k := range keys {
		if k == "" {
			continue
		}
		if err := s.Objects.Delete(ctx, k); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", k).Warn("failed to delete object")
		}
	}
}

func (s *CatalogService) indexWarn(err error, msg string, fields logrus.Fields) {
	if err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithFields(fields).Warn(msg)
	}
}

// URL resolves an object key to a public URL, or "" when unset.
func (s *CatalogService) URL(key string) string {
	if key == "" || s.Objects == nil {
		return ""
	}
	return s.Objects.URL(key)
}
