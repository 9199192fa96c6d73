package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
)

// blobDownloader is the subset of the azblob client used for fetching
type blobDownloader interface {
	DownloadStream(ctx context.Context, containerName string, blobName string, o *azblob.DownloadStreamOptions) (azblob.DownloadStreamResponse, error)
}

// AzureImageFetcher implements ImageFetcher over Azure Blob Storage
type AzureImageFetcher struct {
	client   blobDownloader
	maxBytes int64
}

// NewAzureImageFetcher creates a fetcher authenticated with a shared key
func NewAzureImageFetcher(accountName, accountKey string, maxBytes int64) (*AzureImageFetcher, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid azure credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create azure client: %w", err)
	}

	return &AzureImageFetcher{client: client, maxBytes: maxBytes}, nil
}

// FetchImage downloads the blob named by ref, either "container/blob/path" or a full blob URL
func (s *AzureImageFetcher) FetchImage(ctx context.Context, ref string) ([]byte, error) {
	containerName, blobName, err := ParseBlobReference(ref)
	if err != nil {
		return nil, err
	}

	var opts *azblob.DownloadStreamOptions
	if s.maxBytes > 0 {
		// Ask for one byte over the cap so oversize blobs are detected without a full download
		opts = &azblob.DownloadStreamOptions{
			Range: azblob.HTTPRange{Offset: 0, Count: s.maxBytes + 1},
		}
	}

	resp, err := s.client.DownloadStream(ctx, containerName, blobName, opts)
	if err != nil {
		if bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound) {
			return nil, fmt.Errorf("%w: %s/%s", ErrSourceNotFound, containerName, blobName)
		}
		return nil, fmt.Errorf("download failed: %w", err)
	}

	body := resp.Body
	defer body.Close()

	if resp.ContentLength != nil && s.maxBytes > 0 && *resp.ContentLength > s.maxBytes {
		return nil, fmt.Errorf("%w: blob %s/%s", ErrImageTooLarge, containerName, blobName)
	}
	return readLimited(body, s.maxBytes)
}

// ParseBlobReference splits a blob reference into container and blob names
func ParseBlobReference(ref string) (string, string, error) {
	path := ref
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		parsedURL, err := url.Parse(ref)
		if err != nil {
			return "", "", fmt.Errorf("invalid blob URL: %w", err)
		}
		path = parsedURL.Path
	}

	path = strings.TrimPrefix(path, "/")
	containerName, blobName, ok := strings.Cut(path, "/")
	if !ok || containerName == "" || blobName == "" {
		return "", "", fmt.Errorf("invalid blob reference %q: want container/blob", ref)
	}
	return containerName, blobName, nil
}
