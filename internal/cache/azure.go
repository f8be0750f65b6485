package cache

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"greenearth/internal/config"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

type BlobCache struct {
	containerClient *azblob.Client
	container       string
}

var _ Cache = (*BlobCache)(nil)

// NewBlobCache uses the shared account key when one is configured and falls
// back to the default Azure credential chain otherwise.
func NewBlobCache(cfg config.CacheConfig) (*BlobCache, error) {
	accountName := strings.TrimSpace(cfg.AzureAccountName)
	if accountName == "" {
		return nil, errors.New("azure storage account name is required")
	}
	container := strings.TrimSpace(cfg.Container)
	if container == "" {
		return nil, errors.New("blob container is required")
	}

	// The service URL for blob endpoints is usually in the form: http(s)://<account>.blob.core.windows.net/
	serviceURL := fmt.Sprintf("https://%s.blob.core.windows.net/", accountName)

	var (
		client *azblob.Client
		err    error
	)
	if key := strings.TrimSpace(cfg.AzureAccountKey); key != "" {
		cred, credErr := azblob.NewSharedKeyCredential(accountName, key)
		if credErr != nil {
			return nil, fmt.Errorf("failed to create shared key credential: %w", credErr)
		}
		client, err = azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	} else {
		var cred azcore.TokenCredential
		cred, err = azidentity.NewDefaultAzureCredential(nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create default azure credential: %w", err)
		}
		client, err = azblob.NewClient(serviceURL, cred, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	return &BlobCache{
		containerClient: client,
		container:       container,
	}, nil
}

func (bc *BlobCache) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	stream, err := bc.containerClient.DownloadStream(ctx, bc.container, key, &azblob.DownloadStreamOptions{})
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, ErrNotFound
		}
		slog.WarnContext(ctx, "failed to download blob", "key", key, "error", err)
		return nil, err
	}

	return stream.Body, nil
}

func (bc *BlobCache) Put(ctx context.Context, key, value string) error {
	_, err := bc.containerClient.UploadStream(ctx, bc.container, key, strings.NewReader(value), &azblob.UploadStreamOptions{})
	if err != nil {
		return fmt.Errorf("upload blob %s: %w", key, err)
	}
	return nil
}
