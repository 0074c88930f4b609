package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagsServer(t *testing.T, names ...string) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		models := make([]map[string]string, 0, len(names))
		for _, n := range names {
			models = append(models, map[string]string{"name": n})
		}
		json.NewEncoder(w).Encode(map[string]any{"models": models})
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{BaseURL: srv.URL}, nil)
}

func TestEnsureEmbedModel_Installed(t *testing.T) {
	c := tagsServer(t, "llava:13b", "nomic-embed-text")
	require.NoError(t, c.EnsureEmbedModel(context.Background(), "nomic-embed-text"))
}

func TestEnsureEmbedModel_LatestTagAccepted(t *testing.T) {
	c := tagsServer(t, "nomic-embed-text:latest")
	require.NoError(t, c.EnsureEmbedModel(context.Background(), "nomic-embed-text"))
}

func TestEnsureEmbedModel_MissingCarriesInstallHint(t *testing.T) {
	c := tagsServer(t, "llava:13b")
	err := c.EnsureEmbedModel(context.Background(), "nomic-embed-text")
	require.ErrorIs(t, err, ErrModelMissing)
	assert.True(t, strings.Contains(err.Error(), "ollama pull nomic-embed-text"), err.Error())
}

func TestResolveVisionModel_RequestedInstalled(t *testing.T) {
	c := tagsServer(t, "llava:13b")
	model, err := c.ResolveVisionModel(context.Background(), "llava:13b")
	require.NoError(t, err)
	assert.Equal(t, "llava:13b", model)
}

func TestResolveVisionModel_DefaultWhenEmpty(t *testing.T) {
	c := tagsServer(t, DefaultVisionModel())
	model, err := c.ResolveVisionModel(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, DefaultVisionModel(), model)
}

func TestResolveVisionModel_UnlistedNeverRuns(t *testing.T) {
	// The unlisted model is installed, but it must not be selected.
	c := tagsServer(t, "mystery-model:7b", "llava:7b")
	model, err := c.ResolveVisionModel(context.Background(), "mystery-model:7b")
	require.NoError(t, err)
	assert.Equal(t, "llava:7b", model)
}

func TestResolveVisionModel_SubstitutesByPreferenceOrder(t *testing.T) {
	// Requested model absent; llava:7b outranks minicpm-v:8b on the list.
	c := tagsServer(t, "minicpm-v:8b", "llava:7b")
	model, err := c.ResolveVisionModel(context.Background(), "qwen3-vl:8b")
	require.NoError(t, err)
	assert.Equal(t, "llava:7b", model)
}

func TestResolveVisionModel_NoneInstalled(t *testing.T) {
	c := tagsServer(t, "nomic-embed-text")
	_, err := c.ResolveVisionModel(context.Background(), "")
	require.ErrorIs(t, err, ErrModelMissing)
	assert.True(t, strings.Contains(err.Error(), "ollama pull"), err.Error())
}
