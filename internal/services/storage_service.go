package services

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Branding asset kinds referenced from company settings.
const (
	BrandingLogo      = "logo"
	BrandingStamp     = "stamp"
	BrandingSignature = "signature"
)

// BrandingStorage stores company branding images (logo, stamp, signature)
// consumed by the external PDF renderer. File contents are opaque here;
// upload validation is outside this core.
type BrandingStorage interface {
	Upload(ctx context.Context, companyID uuid.UUID, kind string, reader io.Reader, size int64, contentType string) (string, error)
	PresignedURL(objectKey string, expiry time.Duration) (string, error)
	Delete(ctx context.Context, objectKey string) error
	EnsureBucket(ctx context.Context) error
}

type minioStorage struct {
	client *minio.Client
	bucket string
}

func NewMinioBrandingStorage(endpoint, accessKey, secretKey, bucket string, useSSL bool) (BrandingStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}
	return &minioStorage{client: client, bucket: bucket}, nil
}

func (m *minioStorage) Upload(ctx context.Context, companyID uuid.UUID, kind string, reader io.Reader, size int64, contentType string) (string, error) {
	objectKey := fmt.Sprintf("%s/%s/%s", companyID, kind, uuid.New())
	_, err := m.client.PutObject(ctx, m.bucket, objectKey, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return objectKey, nil
}

func (m *minioStorage) PresignedURL(objectKey string, expiry time.Duration) (string, error) {
	url, err := m.client.PresignedGetObject(context.Background(), m.bucket, objectKey, expiry, nil)
	if err != nil {
		return "", err
	}
	return url.String(), nil
}

func (m *minioStorage) Delete(ctx context.Context, objectKey string) error {
	return m.client.RemoveObject(ctx, m.bucket, objectKey, minio.RemoveObjectOptions{})
}

func (m *minioStorage) EnsureBucket(ctx context.Context) error {
	found, err := m.client.BucketExists(ctx, m.bucket)
	if err != nil {
		return err
	}
	if !found {
		return m.client.MakeBucket(ctx, m.bucket, minio.MakeBucketOptions{})
	}
	return nil
}
