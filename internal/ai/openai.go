package ai

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"timecast/internal/models"
)

// The OpenAI API has no version axis in its URL scheme, so its grid is a
// single version with model-level fallback only.
var (
	defaultOpenAIAPIVersions  = []string{"v1"}
	defaultOpenAITextModels   = []string{"gpt-4o-mini", "gpt-4o"}
	defaultOpenAISpeechModels = []string{"gpt-4o-mini-tts", "tts-1"}
)

type OpenAIConfig struct {
	APIKey string
}

type OpenAIClient struct {
	client openai.Client
}

func NewOpenAIClient(cfg OpenAIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY: %w", ErrMissingAPIKey)
	}
	client := openai.NewClient(option.WithAPIKey(cfg.APIKey))
	return &OpenAIClient{client: client}, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) TextGrid() Grid {
	return Grid{APIVersions: defaultOpenAIAPIVersions, Models: defaultOpenAITextModels, Attempts: DefaultAttempts}
}

func (c *OpenAIClient) SpeechGrid() Grid {
	return Grid{APIVersions: defaultOpenAIAPIVersions, Models: defaultOpenAISpeechModels, Attempts: DefaultAttempts}
}

func (c *OpenAIClient) VoiceForLanguage(language string) string {
	if language == models.LanguageChinese {
		return "nova"
	}
	return "alloy"
}

func (c *OpenAIClient) GenerateText(ctx context.Context, _ string, model, prompt string) (string, error) {
	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfSystem: &openai.ChatCompletionSystemMessageParam{
					Content: openai.ChatCompletionSystemMessageParamContentUnion{
						OfString: openai.String("You are a precise news research assistant. Respond with JSON only."),
					},
				},
			},
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String(prompt),
					},
				},
			},
		},
		Temperature: openai.Float(0.3),
	})
	if err != nil {
		return "", normalizeOpenAIError(err)
	}

	if len(response.Choices) == 0 || response.Choices[0].Message.Content == "" {
		return "", ErrEmptyPayload
	}
	return response.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) GenerateSpeech(ctx context.Context, _ string, model, text, voice string) (SpeechPayload, error) {
	resp, err := c.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Model:          openai.SpeechModel(model),
		Input:          text,
		Voice:          openai.AudioSpeechNewParamsVoice(voice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatWAV,
	})
	if err != nil {
		return SpeechPayload{}, normalizeOpenAIError(err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return SpeechPayload{}, fmt.Errorf("read speech response: %w", err)
	}
	if len(data) == 0 {
		return SpeechPayload{}, fmt.Errorf("empty audio data: %w", ErrEmptyPayload)
	}

	mimeType := resp.Header.Get("Content-Type")
	if mimeType == "" {
		mimeType = "audio/wav"
	}
	return SpeechPayload{Data: data, MimeType: mimeType}, nil
}

// normalizeOpenAIError maps SDK errors onto the shared classification so the
// fallback invoker treats both providers uniformly.
func normalizeOpenAIError(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		detail := apiErr.Message
		if detail == "" {
			detail = apiErr.Error()
		}
		return &CallError{Status: apiErr.StatusCode, Detail: detail}
	}
	return err
}
