package openapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"strings"
	"time"
)

// SourceOptions configures ReadSource.
type SourceOptions struct {
	// FileSystem resolves relative locations when set; the OS is used otherwise.
	FileSystem fs.FS
	// HTTPClient enables http(s) locations. Nil disables remote loading.
	HTTPClient *http.Client
	// Timeout caps remote fetches.
	Timeout time.Duration
}

// ReadSource reads an OpenAPI document from a file, an fs.FS entry or an
// http(s) URL.
func ReadSource(ctx context.Context, location string, opts SourceOptions) ([]byte, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, errors.New("openapi: source location is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(location, "http://"), strings.HasPrefix(location, "https://"):
		if opts.HTTPClient == nil {
			return nil, errors.New("openapi: http support disabled")
		}
		return readHTTP(ctx, opts.HTTPClient, location, opts.Timeout)
	case opts.FileSystem != nil:
		data, err := fs.ReadFile(opts.FileSystem, location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", location, err)
		}
		return data, nil
	default:
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, fmt.Errorf("openapi: read %s: %w", location, err)
		}
		return data, nil
	}
}

func readHTTP(ctx context.Context, client *http.Client, url string, timeout time.Duration) ([]byte, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openapi: fetch %s: %w", url, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("openapi: fetch %s: unexpected status %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
