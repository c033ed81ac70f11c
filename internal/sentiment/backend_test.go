package sentiment

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/ideiamap/internal/models"
	"github.com/spacesedan/ideiamap/internal/tokenize"
	"github.com/spacesedan/ideiamap/internal/utils"
)

func TestHugotBackendReportsUnusableModelDir(t *testing.T) {
	modelDir := filepath.Join(t.TempDir(), "models")
	require.NoError(t, os.WriteFile(modelDir, []byte("not a directory"), 0o644))

	classifier, err := NewClassifierForBackend(BackendOptions{Backend: BackendHugot, ModelDir: modelDir})
	require.NoError(t, err)

	result := classifier.Classify(context.Background(), "Mais ônibus no Campeche")
	assert.Equal(t, models.SentimentError, result.Label)
	assert.NoError(t, classifier.Close())
}

func TestHugotBackendRetriesFailedLoadAfterReload(t *testing.T) {
	calls := 0
	backend := &hugotBackend{loaded: utils.NewLazy(func() (loadedModel, error) {
		calls++
		if calls == 1 {
			return loadedModel{}, errors.New("failed to create model directory")
		}
		return loadedModel{tokenizer: tokenize.Whitespace{}}, nil
	}, MODEL_RETRY_AFTER)}

	_, _, err := backend.Truncate("ideia", MaxTokens)
	require.ErrorContains(t, err, "model unavailable")

	// held until the retry window passes
	_, _, err = backend.Truncate("ideia", MaxTokens)
	require.Error(t, err)
	assert.Equal(t, 1, calls)

	NewClassifier(backend, backend).Reload()

	span, count, err := backend.Truncate("ideia boa", MaxTokens)
	require.NoError(t, err)
	assert.Equal(t, "ideia boa", span)
	assert.Equal(t, 2, count)
	assert.Equal(t, 2, calls)
}

func TestIsRemote(t *testing.T) {
	assert.True(t, IsRemote(BackendHuggingFace))
	assert.True(t, IsRemote(BackendOpenAI))
	assert.False(t, IsRemote(BackendHugot))
	assert.False(t, IsRemote(BackendVader))
}

func TestNewClassifierForBackendErrors(t *testing.T) {
	_, err := NewClassifierForBackend(BackendOptions{Backend: BackendHuggingFace})
	assert.Error(t, err)
	_, err = NewClassifierForBackend(BackendOptions{Backend: BackendOpenAI})
	assert.Error(t, err)
	_, err = NewClassifierForBackend(BackendOptions{Backend: "bert"})
	assert.Error(t, err)
}
