package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/niklvrr/TicketBoard/internal/config"
	"go.uber.org/zap"
)

func init() {
	RegisterStorageType(config.StorageProviderMinio, NewMinioStorage)
}

type MinioStorage struct {
	client   *minio.Client
	bucket   string
	basePath string
	log      *zap.Logger
}

func NewMinioStorage(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (ObjectStorage, error) {
	client, err := minio.New(cfg.Minio.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Minio.AccessKeyID, cfg.Minio.SecretAccessKey, ""),
		Secure: cfg.Minio.UseSSL,
		Region: cfg.Minio.Location,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Minio.Bucket)
	if err != nil {
		return nil, fmt.Errorf("minio bucket check: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Minio.Bucket, minio.MakeBucketOptions{Region: cfg.Minio.Location}); err != nil {
			return nil, fmt.Errorf("minio make bucket: %w", err)
		}
		log.Info("minio bucket created", zap.String("bucket", cfg.Minio.Bucket))
	}

	// Ссылки на объекты постоянные, поэтому чтение бакета открыто
	if err := client.SetBucketPolicy(ctx, cfg.Minio.Bucket, publicReadPolicy(cfg.Minio.Bucket)); err != nil {
		return nil, fmt.Errorf("minio bucket policy: %w", err)
	}

	return &MinioStorage{
		client:   client,
		bucket:   cfg.Minio.Bucket,
		basePath: cfg.BasePath,
		log:      log,
	}, nil
}

func (m *MinioStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) (string, error) {
	objectName := buildPath(m.basePath, key)
	_, err := m.client.PutObject(ctx, m.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		m.log.Error("failed to put object", zap.String("object", objectName), zap.Error(err))
		return "", fmt.Errorf("%w: %w", errSave, err)
	}

	return objectURL(m.client.EndpointURL(), m.bucket, objectName), nil
}

func (m *MinioStorage) Delete(ctx context.Context, key string) error {
	objectName := buildPath(m.basePath, key)
	err := m.client.RemoveObject(ctx, m.bucket, objectName, minio.RemoveObjectOptions{})
	if err != nil && minio.ToErrorResponse(err).Code != "NoSuchKey" {
		m.log.Error("failed to remove object", zap.String("object", objectName), zap.Error(err))
		return fmt.Errorf("%w: %w", errDelete, err)
	}
	return nil
}

// objectURL постоянный адрес объекта вида <endpoint>/<bucket>/<object>
func objectURL(endpoint *url.URL, bucket, objectName string) string {
	return endpoint.JoinPath(bucket, objectName).String()
}

func publicReadPolicy(bucket string) string {
	return fmt.Sprintf(`{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":["*"]},"Action":["s3:GetObject"],"Resource":["arn:aws:s3:::%s/*"]}]}`, bucket)
}
