package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataResolverFetchesDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"name":"Edition #1","description":"First edition","image":"ipfs://QmImage"}`))
	}))
	defer server.Close()

	resolver := NewMetadataResolver()
	metadata, err := resolver.Resolve(context.Background(), server.URL+"/token/1.json")
	require.NoError(t, err)

	assert.Equal(t, "Edition #1", metadata.Name)
	assert.Equal(t, "First edition", metadata.Description)
	// Image URIs are rewritten onto the gateway too.
	assert.Equal(t, "https://ipfs.io/ipfs/QmImage", metadata.Image)
}

func TestMetadataResolverRewritesIPFS(t *testing.T) {
	resolver := NewMetadataResolver()
	assert.Equal(t, "https://ipfs.io/ipfs/QmDoc/1.json", resolver.rewriteURI("ipfs://QmDoc/1.json"))
	assert.Equal(t, "https://example.com/1.json", resolver.rewriteURI("https://example.com/1.json"))
}

func TestMetadataResolverErrors(t *testing.T) {
	t.Run("empty URI", func(t *testing.T) {
		resolver := NewMetadataResolver()
		_, err := resolver.Resolve(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("non-200 status", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		resolver := NewMetadataResolver()
		_, err := resolver.Resolve(context.Background(), server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 404")
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("<html>not json</html>"))
		}))
		defer server.Close()

		resolver := NewMetadataResolver()
		_, err := resolver.Resolve(context.Background(), server.URL)
		require.Error(t, err)
	})
}
