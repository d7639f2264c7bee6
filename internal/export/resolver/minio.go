package resolver

import (
	"context"
	"fmt"
	"time"

	minio "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/jmylchreest/eventexport/internal/config"
)

// defaultRegion avoids a bucket-location lookup on every presign.
const defaultRegion = "us-east-1"

// MinioSigner presigns GET requests against an S3-compatible object store.
type MinioSigner struct {
	client *minio.Client
}

// NewMinioSigner creates a signer from object store configuration. It does
// not contact the store.
func NewMinioSigner(cfg config.ObjectStoreConfig) (*MinioSigner, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("object store endpoint is required")
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: region,
	})
	if err != nil {
		return nil, fmt.Errorf("creating object store client: %w", err)
	}
	return &MinioSigner{client: client}, nil
}

// Sign returns a presigned GET URL for bucket/path valid for ttl.
func (s *MinioSigner) Sign(ctx context.Context, bucket, path string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, bucket, path, ttl, nil)
	if err != nil {
		return "", fmt.Errorf("presigning %s/%s: %w", bucket, path, err)
	}
	return u.String(), nil
}
