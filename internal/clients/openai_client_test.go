package clients

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient("", "")
	require.Error(t, err)

	client, err := NewOpenAIClient("sk-test", "")
	require.NoError(t, err)
	assert.Equal(t, DEFAULT_OPENAI_MODEL, client.model)
}

func TestCleanOpenAIResponse(t *testing.T) {
	assert.Equal(t, `{"stars": 4, "confidence": 0.8}`,
		cleanOpenAIResponse("```json\n{\"stars\": 4, \"confidence\": 0.8}\n```"))
	assert.Equal(t, `{"stars": 2}`, cleanOpenAIResponse("  {\"stars\": 2} "))
}

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 0.0, clampUnit(-0.2))
	assert.Equal(t, 0.5, clampUnit(0.5))
	assert.Equal(t, 1.0, clampUnit(7))
}
