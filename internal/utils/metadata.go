package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultIPFSGateway  = "https://ipfs.io/ipfs/"
	metadataFetchLimit  = 1 << 20 // 1 MiB
	metadataFetchExpiry = 10 * time.Second
)

// TokenMetadata is the subset of an NFT metadata document the UI displays.
type TokenMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// MetadataResolver fetches token metadata documents over HTTP with a bounded
// timeout. ipfs:// URIs are rewritten onto a public gateway.
type MetadataResolver struct {
	client  *http.Client
	gateway string
}

func NewMetadataResolver() *MetadataResolver {
	return &MetadataResolver{
		client:  &http.Client{Timeout: metadataFetchExpiry},
		gateway: defaultIPFSGateway,
	}
}

// Resolve fetches and parses the metadata document at uri. Failures are
// returned to the caller, who treats them as a display fallback, never as a
// hard error.
func (r *MetadataResolver) Resolve(ctx context.Context, uri string) (*TokenMetadata, error) {
	if uri == "" {
		return nil, fmt.Errorf("empty metadata URI")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.rewriteURI(uri), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("metadata fetch returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, metadataFetchLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to read metadata body: %w", err)
	}

	var metadata TokenMetadata
	if err := json.Unmarshal(body, &metadata); err != nil {
		return nil, fmt.Errorf("failed to parse metadata: %w", err)
	}
	metadata.Image = r.rewriteURI(metadata.Image)
	return &metadata, nil
}

func (r *MetadataResolver) rewriteURI(uri string) string {
	if strings.HasPrefix(uri, "ipfs://") {
		return r.gateway + strings.TrimPrefix(uri, "ipfs://")
	}
	return uri
}
