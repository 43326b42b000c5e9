// Package download implements Bot.Download's terminal operations, grounded on the source's
// file_downloader.py: resolve a file_id to a file_path via getFile, then stream its bytes from
// base_file_url.
package download

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"os"
)

// Resolver calls getFile and returns the Bot API file_path for a file_id.
type Resolver interface {
	ResolveFilePath(ctx context.Context, fileID string) (string, error)
}

// Builder is a pull-based terminal-operation builder for one file_id.
type Builder struct {
	resolver    Resolver
	httpClient  *http.Client
	baseFileURL string
	token       string
	fileID      string
}

// NewBuilder returns a Builder for fileID; it performs no network I/O until a terminal operation
// is called.
func NewBuilder(resolver Resolver, httpClient *http.Client, baseFileURL, token, fileID string) *Builder {
	return &Builder{
		resolver:    resolver,
		httpClient:  httpClient,
		baseFileURL: baseFileURL,
		token:       token,
		fileID:      fileID,
	}
}

// Stream resolves the file and returns an open, caller-closed reader over its bytes.
func (b *Builder) Stream(ctx context.Context) (io.ReadCloser, error) {
	filePath, err := b.resolver.ResolveFilePath(ctx, b.fileID)
	if err != nil {
		return nil, fmt.Errorf("resolving file_id %s: %w", b.fileID, err)
	}

	url := b.baseFileURL + "/bot" + b.token + "/" + filePath

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building download request: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading %s: %w", filePath, err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()

		return nil, fmt.Errorf("downloading %s: HTTP %d", filePath, resp.StatusCode)
	}

	return resp.Body, nil
}

// Bytes collects the whole file into memory.
func (b *Builder) Bytes(ctx context.Context) ([]byte, error) {
	rc, err := b.Stream(ctx)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

// ToFile writes the file to a local path.
func (b *Builder) ToFile(ctx context.Context, path string) error {
	data, err := b.Bytes(ctx)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// Base64 collects the file and base64-encodes it.
func (b *Builder) Base64(ctx context.Context) (string, error) {
	data, err := b.Bytes(ctx)
	if err != nil {
		return "", err
	}

	return base64.StdEncoding.EncodeToString(data), nil
}
