package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/niklvrr/TicketBoard/internal/config"
	"go.uber.org/zap"
)

func init() {
	RegisterStorageType(config.StorageProviderAzure, NewAzureBlobStorage)
}

type AzureBlobStorage struct {
	client    *azblob.Client
	container string
	basePath  string
	log       *zap.Logger
}

func NewAzureBlobStorage(ctx context.Context, cfg *config.StorageConfig, log *zap.Logger) (ObjectStorage, error) {
	endpoint := cfg.Azure.Endpoint
	if endpoint == "" {
		endpoint = fmt.Sprintf("https://%s.blob.core.windows.net/", cfg.Azure.AccountName)
	}

	cred, err := azblob.NewSharedKeyCredential(cfg.Azure.AccountName, cfg.Azure.AccountKey)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}
	client, err := azblob.NewClientWithSharedKeyCredential(endpoint, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure client: %w", err)
	}

	_, err = client.CreateContainer(ctx, cfg.Azure.Container, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
		return nil, fmt.Errorf("azure create container: %w", err)
	}

	return &AzureBlobStorage{
		client:    client,
		container: cfg.Azure.Container,
		basePath:  cfg.BasePath,
		log:       log,
	}, nil
}

func (a *AzureBlobStorage) Save(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (string, error) {
	blobName := buildPath(a.basePath, key)
	_, err := a.client.UploadStream(ctx, a.container, blobName, r, &azblob.UploadStreamOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	if err != nil {
		a.log.Error("failed to upload blob", zap.String("blob", blobName), zap.Error(err))
		return "", fmt.Errorf("%w: %w", errSave, err)
	}

	blobClient := a.client.ServiceClient().NewContainerClient(a.container).NewBlobClient(blobName)
	return blobClient.URL(), nil
}

func (a *AzureBlobStorage) Delete(ctx context.Context, key string) error {
	blobName := buildPath(a.basePath, key)
	_, err := a.client.DeleteBlob(ctx, a.container, blobName, nil)
	if err != nil && !bloberror.HasCode(err, bloberror.BlobNotFound) {
		a.log.Error("failed to delete blob", zap.String("blob", blobName), zap.Error(err))
		return fmt.Errorf("%w: %w", errDelete, err)
	}
	return nil
}
