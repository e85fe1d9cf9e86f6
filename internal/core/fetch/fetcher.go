// Package fetch resolves source locators to raw document bytes.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Mokshithabhi/chatpdf/internal/core"
	objectclient "github.com/Mokshithabhi/chatpdf/internal/core/object-client"
)

var _ core.SourceFetcher = (*Fetcher)(nil)

// Fetcher dispatches on the locator scheme: s3:// goes to object storage,
// http(s):// over the wire, anything else is read from the local filesystem.
type Fetcher struct {
	httpClient *http.Client
	objects    objectclient.ObjectClient // nil when S3 is not configured
}

func NewFetcher(objects objectclient.ObjectClient) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		objects:    objects,
	}
}

func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	switch {
	case strings.HasPrefix(locator, "s3://"):
		return f.fetchObject(ctx, locator)
	case strings.HasPrefix(locator, "http://"), strings.HasPrefix(locator, "https://"):
		return f.fetchHTTP(ctx, locator)
	default:
		data, err := os.ReadFile(locator)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", core.ErrSourceUnavailable, locator, err)
		}
		return data, nil
	}
}

func (f *Fetcher) fetchObject(ctx context.Context, locator string) ([]byte, error) {
	if f.objects == nil {
		return nil, fmt.Errorf("%w: object storage not configured for %s", core.ErrSourceUnavailable, locator)
	}
	bucket, key, err := splitS3Locator(locator)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnavailable, err)
	}
	data, err := f.objects.GetFile(ctx, bucket, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnavailable, err)
	}
	return data, nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, locator string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, locator, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrSourceUnavailable, err)
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %v", core.ErrSourceUnavailable, locator, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", core.ErrSourceUnavailable, locator, resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", core.ErrSourceUnavailable, locator, err)
	}
	return data, nil
}

// splitS3Locator parses s3://bucket/key/with/slashes.
func splitS3Locator(locator string) (bucket, key string, err error) {
	rest := strings.TrimPrefix(locator, "s3://")
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("malformed s3 locator %q", locator)
	}
	return parts[0], parts[1], nil
}
