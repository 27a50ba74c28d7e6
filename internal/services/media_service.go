package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kitzone/api/internal/platform/storage"
)

var (
	// ErrMediaInvalidInput signals a malformed upload request.
	ErrMediaInvalidInput = errors.New("media: invalid input")
	// ErrMediaSigningFailed indicates the signed URL could not be issued.
	ErrMediaSigningFailed = errors.New("media: signing failed")
)

var allowedImageContentTypes = []string{"image/jpeg", "image/png", "image/webp"}

const productImageUploadExpiry = 15 * time.Minute

// URLSigner issues signed storage URLs. *storage.Client satisfies it.
type URLSigner interface {
	SignedURL(ctx context.Context, bucket, object string, opts storage.SignedURLOptions) (storage.SignedURLResult, error)
}

// MediaServiceDeps bundles collaborators required to construct the media service.
type MediaServiceDeps struct {
	Signer       URLSigner
	Bucket       string
	UploadExpiry time.Duration
}

type mediaService struct {
	signer URLSigner
	bucket string
	expiry time.Duration
}

var _ MediaService = (*mediaService)(nil)

// NewMediaService wires dependencies into a concrete MediaService implementation.
func NewMediaService(deps MediaServiceDeps) (MediaService, error) {
	if deps.Signer == nil {
		return nil, errors.New("media service: url signer is required")
	}
	if strings.TrimSpace(deps.Bucket) == "" {
		return nil, errors.New("media service: bucket is required")
	}
	expiry := deps.UploadExpiry
	if expiry <= 0 {
		expiry = productImageUploadExpiry
	}

	return &mediaService{
		signer: deps.Signer,
		bucket: deps.Bucket,
		expiry: expiry,
	}, nil
}

// IssueProductImageUpload hands out a short-lived PUT URL for a product image.
// The object path is derived from the product id so images stay grouped per
// product in the media bucket.
func (s *mediaService) IssueProductImageUpload(ctx context.Context, cmd ProductImageUploadCommand) (SignedUpload, error) {
	if strings.TrimSpace(cmd.ProductID) == "" {
		return SignedUpload{}, fmt.Errorf("%w: product id is required", ErrMediaInvalidInput)
	}
	if strings.TrimSpace(cmd.FileName) == "" {
		return SignedUpload{}, fmt.Errorf("%w: file name is required", ErrMediaInvalidInput)
	}
	if strings.TrimSpace(cmd.ContentType) == "" {
		return SignedUpload{}, fmt.Errorf("%w: content type is required", ErrMediaInvalidInput)
	}

	object, err := storage.BuildObjectPath(storage.PurposeProductImage, storage.PathParams{
		ProductID: cmd.ProductID,
		FileName:  cmd.FileName,
	})
	if err != nil {
		return SignedUpload{}, fmt.Errorf("%w: %v", ErrMediaInvalidInput, err)
	}

	result, err := s.signer.SignedURL(ctx, s.bucket, object, storage.SignedURLOptions{
		Method:              "PUT",
		ContentType:         cmd.ContentType,
		AllowedContentTypes: allowedImageContentTypes,
		ExpiresIn:           s.expiry,
	})
	if err != nil {
		return SignedUpload{}, fmt.Errorf("%w: %v", ErrMediaSigningFailed, err)
	}

	return SignedUpload{
		URL:        result.URL,
		Method:     result.Method,
		ObjectPath: object,
		Headers:    result.Headers,
		ExpiresAt:  result.ExpiresAt,
	}, nil
}
