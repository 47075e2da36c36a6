// Package media issues presigned upload tickets for catalog images and avatars
// and resolves stored object keys to public URLs.
package media

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Storage key prefixes
const (
	ProductImagePrefix = "product-images"
	AvatarPrefix       = "avatars"
)

// MaxImageSize is the largest accepted image upload (10 MiB)
const MaxImageSize int64 = 10 << 20

// ImageContentTypes maps accepted image content types to their file extension.
// SVG is not accepted since it can carry script.
var ImageContentTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// ObjectStorageService is implemented by the infrastructure storage layer (S3, MinIO, stub)
type ObjectStorageService interface {
	// GenerateUploadURL returns a presigned PUT URL and its expiry
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
	// PublicURL builds the public URL of a stored object
	PublicURL(storageKey string) string
}

// UploadRequest describes a file the client wants to upload
type UploadRequest struct {
	FileName    string `json:"file_name" binding:"required,max=255"`
	ContentType string `json:"content_type" binding:"required"`
	Size        int64  `json:"size" binding:"required,min=1"`
}

// UploadTicket is returned to the client to perform a direct upload
type UploadTicket struct {
	UploadURL  string    `json:"upload_url"`
	StorageKey string    `json:"storage_key"`
	PublicURL  string    `json:"public_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Presigner validates upload requests and issues tickets
type Presigner struct {
	storage   ObjectStorageService
	urlExpiry time.Duration
}

// NewPresigner creates a Presigner. A zero expiry defaults to 15 minutes.
func NewPresigner(storage ObjectStorageService, urlExpiry time.Duration) *Presigner {
	if urlExpiry <= 0 {
		urlExpiry = 15 * time.Minute
	}
	return &Presigner{storage: storage, urlExpiry: urlExpiry}
}

// Presign validates req and returns an upload ticket for a new key under prefix
func (p *Presigner) Presign(ctx context.Context, prefix string, req UploadRequest) (*UploadTicket, error) {
	contentType := strings.ToLower(strings.TrimSpace(req.ContentType))
	ext, ok := ImageContentTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError("DISALLOWED_CONTENT_TYPE",
			fmt.Sprintf("Content type '%s' is not allowed. Allowed types: JPEG, PNG, WebP, GIF.", req.ContentType))
	}
	if req.Size <= 0 || req.Size > MaxImageSize {
		return nil, shared.NewDomainError("FILE_TOO_LARGE", "Images must be between 1 byte and 10 MiB")
	}
	if fileExt := strings.ToLower(filepath.Ext(req.FileName)); fileExt == ext || (ext == ".jpg" && fileExt == ".jpeg") {
		ext = fileExt
	}

	key := path.Join(prefix, uuid.New().String()+ext)
	uploadURL, expiresAt, err := p.storage.GenerateUploadURL(ctx, key, contentType, p.urlExpiry)
	if err != nil {
		return nil, shared.WrapDomainError("UPLOAD_URL_FAILED", "Failed to generate upload URL", err)
	}

	return &UploadTicket{
		UploadURL:  uploadURL,
		StorageKey: key,
		PublicURL:  p.storage.PublicURL(key),
		ExpiresAt:  expiresAt,
	}, nil
}

// ResolveURL turns a stored reference into a URL. Absolute URLs pass through.
func (p *Presigner) ResolveURL(ref string) string {
	if ref == "" || IsAbsoluteURL(ref) {
		return ref
	}
	return p.storage.PublicURL(ref)
}

// Delete removes a stored object. Absolute URLs are not managed and are ignored.
func (p *Presigner) Delete(ctx context.Context, ref string) error {
	if ref == "" || IsAbsoluteURL(ref) {
		return nil
	}
	return p.storage.DeleteObject(ctx, ref)
}

// Exists reports whether a stored object is present. Absolute URLs are assumed present.
func (p *Presigner) Exists(ctx context.Context, ref string) (bool, error) {
	if IsAbsoluteURL(ref) {
		return true, nil
	}
	return p.storage.ObjectExists(ctx, ref)
}

// IsAbsoluteURL reports whether ref is an http(s) URL rather than a storage key
func IsAbsoluteURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// ProductImageDir returns the key prefix for a product's images
func ProductImageDir(productID uuid.UUID) string {
	return path.Join(ProductImagePrefix, productID.String())
}

// AvatarDir returns the key prefix for a user's avatars
func AvatarDir(userID uuid.UUID) string {
	return path.Join(AvatarPrefix, userID.String())
}

// KeyWithin reports whether key is a storage key inside dir
func KeyWithin(key, dir string) bool {
	clean := path.Clean(key)
	return clean == key && strings.HasPrefix(clean, dir+"/")
}
