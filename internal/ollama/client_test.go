package ollama

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func TestGenerate(t *testing.T) {
	var gotBody map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &gotBody))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"fix: correct off-by-one"}`))
	})

	c, err := New(srv.URL, "test-model", 5*time.Second)
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "describe this diff", true)
	require.NoError(t, err)
	assert.Equal(t, "fix: correct off-by-one", out)

	assert.Equal(t, "test-model", gotBody["model"])
	assert.Equal(t, "describe this diff", gotBody["prompt"])
	assert.Equal(t, false, gotBody["stream"])
	rf, ok := gotBody["response_format"].(map[string]any)
	require.True(t, ok, "structured requests must carry response_format")
	assert.Equal(t, "json_object", rf["type"])
}

func TestGenerate_Unstructured(t *testing.T) {
	var gotBody map[string]any
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"response":"plain text"}`))
	})

	c, err := New(srv.URL, "test-model", 5*time.Second)
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), "p", false)
	require.NoError(t, err)
	assert.Equal(t, "plain text", out)
	assert.NotContains(t, gotBody, "response_format")
}

func TestGenerate_Timeout(t *testing.T) {
	srv := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		_, _ = w.Write([]byte(`{"response":"too late"}`))
	})

	c, err := New(srv.URL, "test-model", 5*time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.Generate(ctx, "p", false)
	assert.ErrorIs(t, err, ErrTimeout)
}
