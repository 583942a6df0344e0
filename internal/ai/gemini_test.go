package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timecast/internal/models"
)

func newTestGemini(t *testing.T, handler http.HandlerFunc) *GeminiClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewGeminiClient(GeminiConfig{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

func textResponse(text string) map[string]any {
	return map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
}

func TestNewGeminiClient(t *testing.T) {
	t.Run("missing api key", func(t *testing.T) {
		_, err := NewGeminiClient(GeminiConfig{})
		require.ErrorIs(t, err, ErrMissingAPIKey)
	})

	t.Run("configured model leads the candidate list", func(t *testing.T) {
		client, err := NewGeminiClient(GeminiConfig{APIKey: "k", TextModel: "models/gemini-exp"})
		require.NoError(t, err)
		grid := client.TextGrid()
		assert.Equal(t, "gemini-exp", grid.Models[0], "models/ prefix is stripped")
		assert.Contains(t, grid.Models, "gemini-2.5-flash", "defaults remain as degradation path")
	})

	t.Run("configured default is not duplicated", func(t *testing.T) {
		client, err := NewGeminiClient(GeminiConfig{APIKey: "k", TextModel: "gemini-2.5-flash"})
		require.NoError(t, err)
		grid := client.TextGrid()
		assert.Equal(t, defaultGeminiTextModels, grid.Models)
	})
}

func TestGeminiGenerateText(t *testing.T) {
	t.Run("returns first textual part", func(t *testing.T) {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Contains(t, r.URL.Path, "/v1/models/gemini-2.5-flash:generateContent")
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gen, _ := body["generationConfig"].(map[string]any)
			assert.Equal(t, "application/json", gen["responseMimeType"])

			json.NewEncoder(w).Encode(textResponse(`{"events":[]}`))
		})

		text, err := client.GenerateText(context.Background(), "v1", "gemini-2.5-flash", "prompt")
		require.NoError(t, err)
		assert.Equal(t, `{"events":[]}`, text)
	})

	t.Run("empty candidate list is an empty payload", func(t *testing.T) {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
		})

		_, err := client.GenerateText(context.Background(), "v1", "gemini-2.5-flash", "prompt")
		require.ErrorIs(t, err, ErrEmptyPayload)
	})

	t.Run("upstream error message is surfaced", func(t *testing.T) {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"code": 404, "message": "model gemini-zzz is not found"},
			})
		})

		_, err := client.GenerateText(context.Background(), "v1", "gemini-zzz", "prompt")
		var callErr *CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, 404, callErr.Status)
		assert.True(t, callErr.Rejected())
		assert.Contains(t, callErr.Detail, "gemini-zzz is not found")
	})

	t.Run("malformed error body falls back to status", func(t *testing.T) {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("<html>overloaded</html>"))
		})

		_, err := client.GenerateText(context.Background(), "v1", "gemini-2.5-flash", "prompt")
		var callErr *CallError
		require.ErrorAs(t, err, &callErr)
		assert.Equal(t, 503, callErr.Status)
		assert.True(t, callErr.Transient())
		assert.Equal(t, "HTTP 503", callErr.Detail)
	})
}

func TestGeminiGenerateSpeech(t *testing.T) {
	t.Run("decodes inline audio", func(t *testing.T) {
		pcm := []byte{0x01, 0x02, 0x03, 0x04}
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			gen, _ := body["generationConfig"].(map[string]any)
			assert.Equal(t, []any{"AUDIO"}, gen["responseModalities"])

			json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{
						{"inlineData": map[string]any{
							"mimeType": "audio/l16;codec=pcm;rate=24000",
							"data":     base64.StdEncoding.EncodeToString(pcm),
						}},
					}}},
				},
			})
		})

		payload, err := client.GenerateSpeech(context.Background(), "v1beta", "gemini-2.5-flash-preview-tts", "hello", "Aoede")
		require.NoError(t, err)
		assert.Equal(t, pcm, payload.Data)
		assert.Equal(t, "audio/l16;codec=pcm;rate=24000", payload.MimeType)
	})

	t.Run("missing mime type defaults to wav", func(t *testing.T) {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(map[string]any{
				"candidates": []map[string]any{
					{"content": map[string]any{"parts": []map[string]any{
						{"inlineData": map[string]any{"data": base64.StdEncoding.EncodeToString([]byte("x"))}},
					}}},
				},
			})
		})

		payload, err := client.GenerateSpeech(context.Background(), "v1", "gemini-2.5-flash-preview-tts", "hello", "Kore")
		require.NoError(t, err)
		assert.Equal(t, "audio/wav", payload.MimeType)
	})

	t.Run("text-only response is an empty payload", func(t *testing.T) {
		client := newTestGemini(t, func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(textResponse("I cannot produce audio."))
		})

		_, err := client.GenerateSpeech(context.Background(), "v1", "gemini-2.5-flash-preview-tts", "hello", "Kore")
		require.ErrorIs(t, err, ErrEmptyPayload)
	})
}

func TestGeminiVoiceForLanguage(t *testing.T) {
	client, err := NewGeminiClient(GeminiConfig{APIKey: "k"})
	require.NoError(t, err)

	assert.Equal(t, "Kore", client.VoiceForLanguage(models.LanguageChinese))
	assert.Equal(t, "Aoede", client.VoiceForLanguage(models.LanguageEnglish))
	assert.Equal(t, "Aoede", client.VoiceForLanguage("fr"))
}
