package ai

import (
	"errors"
	"testing"

	"github.com/openai/openai-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecast/internal/models"
)

func TestNewOpenAIClient(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.ErrorIs(t, err, ErrMissingAPIKey)

	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestOpenAIGrids(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)

	text := client.TextGrid()
	assert.Equal(t, []string{"v1"}, text.APIVersions, "no version axis to walk")
	assert.Equal(t, defaultOpenAITextModels, text.Models)

	speech := client.SpeechGrid()
	assert.Equal(t, defaultOpenAISpeechModels, speech.Models)
}

func TestOpenAIVoiceForLanguage(t *testing.T) {
	client, err := NewOpenAIClient(OpenAIConfig{APIKey: "sk-test"})
	require.NoError(t, err)

	assert.Equal(t, "nova", client.VoiceForLanguage(models.LanguageChinese))
	assert.Equal(t, "alloy", client.VoiceForLanguage(models.LanguageEnglish))
}

func TestNormalizeOpenAIError(t *testing.T) {
	t.Run("api error maps to call error", func(t *testing.T) {
		err := normalizeOpenAIError(&openai.Error{StatusCode: 429, Message: "rate limit exceeded"})
		var callErr *CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, 429, callErr.Status)
		assert.True(t, callErr.Transient())
		assert.Contains(t, callErr.Detail, "rate limit")
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := errors.New("dial tcp: connection refused")
		assert.Equal(t, cause, normalizeOpenAIError(cause))
	})
}
