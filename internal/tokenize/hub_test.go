package tokenize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testModel = "nlptown/bert-base-multilingual-uncased-sentiment"

func TestTokenizerPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("models", "nlptown_bert-base-multilingual-uncased-sentiment", "tokenizer.json"),
		TokenizerPath("models", testModel))
}

func TestDownloadTokenizerIfMissing(t *testing.T) {
	var hits atomic.Int32
	var gotPath, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"version":"1.0"}`))
	}))
	defer srv.Close()

	cfg := HubConfig{Endpoint: srv.URL + "/", ModelName: testModel, Dir: t.TempDir(), Token: "hf_test"}

	path, err := DownloadTokenizerIfMissing(context.Background(), srv.Client(), cfg)
	require.NoError(t, err)
	assert.Equal(t, TokenizerPath(cfg.Dir, testModel), path)
	assert.Equal(t, "/"+testModel+"/resolve/main/tokenizer.json", gotPath)
	assert.Equal(t, "Bearer hf_test", gotAuth)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":"1.0"}`, string(content))

	_, err = DownloadTokenizerIfMissing(context.Background(), srv.Client(), cfg)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	tk.Reload()
	_, _, err = tk.Truncate("outra ideia", ModelMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}

func TestDownloadTokenizerRejectsErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := HubConfig{Endpoint: srv.URL, ModelName: testModel, Dir: t.TempDir()}

	_, err := DownloadTokenizerIfMissing(context.Background(), srv.Client(), cfg)
	require.Error(t, err)
	_, statErr := os.Stat(TokenizerPath(cfg.Dir, testModel))
	assert.True(t, os.IsNotExist(statErr))
}

func TestHubTokenizerCountsWordsWhileUnavailable(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	tk := NewHubTokenizer(HubConfig{Endpoint: srv.URL, ModelName: testModel, Dir: t.TempDir()})

	span, count, err := tk.Truncate("mais ciclovias no centro", ModelMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, "mais ciclovias no centro", span)
	assert.Equal(t, 4, count)

	// the failure is held for the retry window
	_, _, err = tk.Truncate("outra ideia", ModelMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, int32(1), hits.Load())

	tk.Reload()
	_, _, err = tk.Truncate("outra ideia", ModelMaxTokens)
	require.NoError(t, err)
	assert.Equal(t, int32(2), hits.Load())
}
