package storage

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/storefront/backend/internal/application/media"
)

// StubObjectStorage is an in-process stand-in for S3 used in development and tests.
// Keys count as existing once an upload URL was issued for them, so the
// presign-then-attach flow works without a real bucket.
type StubObjectStorage struct {
	// BaseURL prefixes every generated URL
	BaseURL string

	mu      sync.RWMutex
	objects map[string]struct{}
}

// NewStubObjectStorage creates a new StubObjectStorage
func NewStubObjectStorage(baseURL string) *StubObjectStorage {
	if baseURL == "" {
		baseURL = "http://localhost:8080/static"
	}
	return &StubObjectStorage{
		BaseURL: strings.TrimRight(baseURL, "/"),
		objects: make(map[string]struct{}),
	}
}

var _ media.ObjectStorageService = (*StubObjectStorage)(nil)

// GenerateUploadURL returns a fake presigned URL and records the key
func (s *StubObjectStorage) GenerateUploadURL(
	_ context.Context,
	storageKey, _ string,
	expiresIn time.Duration,
) (string, time.Time, error) {
	if err := checkKey(storageKey); err != nil {
		return "", time.Time{}, err
	}

	s.mu.Lock()
	s.objects[storageKey] = struct{}{}
	s.mu.Unlock()

	expiresAt := time.Now().Add(expiresIn)
	return s.BaseURL + "/upload/" + storageKey + "?expires=" + expiresAt.Format(time.RFC3339), expiresAt, nil
}

// DeleteObject forgets the key
func (s *StubObjectStorage) DeleteObject(_ context.Context, storageKey string) error {
	if err := checkKey(storageKey); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.objects, storageKey)
	s.mu.Unlock()
	return nil
}

// ObjectExists reports whether the key was presigned or uploaded
func (s *StubObjectStorage) ObjectExists(_ context.Context, storageKey string) (bool, error) {
	if err := checkKey(storageKey); err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.objects[storageKey]
	s.mu.RUnlock()
	return ok, nil
}

// EnsureBucket is a no-op
func (s *StubObjectStorage) EnsureBucket(context.Context) error {
	return nil
}

// PublicURL returns BaseURL/<key>
func (s *StubObjectStorage) PublicURL(storageKey string) string {
	return s.BaseURL + "/" + strings.TrimLeft(storageKey, "/")
}
