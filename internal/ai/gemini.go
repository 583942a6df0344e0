package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"timecast/internal/models"
)

const defaultGeminiBaseURL = "https://generativelanguage.googleapis.com"

var (
	defaultGeminiAPIVersions  = []string{"v1", "v1beta"}
	defaultGeminiTextModels   = []string{"gemini-2.5-flash", "gemini-2.0-flash", "gemini-1.5-flash"}
	defaultGeminiSpeechModels = []string{"gemini-2.5-flash-preview-tts", "gemini-2.5-pro-preview-tts"}

	modelsPrefixRe = regexp.MustCompile(`^models/`)
)

type GeminiConfig struct {
	APIKey string

	// Preferred overrides; the built-in candidates are always appended so the
	// grid degrades even when configuration is absent.
	APIVersion  string
	TextModel   string
	SpeechModel string

	// BaseURL overrides the production endpoint, used by tests.
	BaseURL string
}

type GeminiClient struct {
	apiKey       string
	baseURL      string
	apiVersions  []string
	textModels   []string
	speechModels []string
	httpClient   *http.Client
}

func NewGeminiClient(cfg GeminiConfig) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY: %w", ErrMissingAPIKey)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}

	return &GeminiClient{
		apiKey:       cfg.APIKey,
		baseURL:      strings.TrimRight(baseURL, "/"),
		apiVersions:  candidateList(strings.TrimSpace(cfg.APIVersion), defaultGeminiAPIVersions),
		textModels:   candidateList(stripModelsPrefix(cfg.TextModel), defaultGeminiTextModels),
		speechModels: candidateList(stripModelsPrefix(cfg.SpeechModel), defaultGeminiSpeechModels),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

func (c *GeminiClient) Name() string { return "gemini" }

func (c *GeminiClient) TextGrid() Grid {
	return Grid{APIVersions: c.apiVersions, Models: c.textModels, Attempts: DefaultAttempts}
}

func (c *GeminiClient) SpeechGrid() Grid {
	return Grid{APIVersions: c.apiVersions, Models: c.speechModels, Attempts: DefaultAttempts}
}

func (c *GeminiClient) VoiceForLanguage(language string) string {
	if language == models.LanguageChinese {
		return "Kore"
	}
	return "Aoede"
}

type geminiPart struct {
	Text       string `json:"text,omitempty"`
	InlineData *struct {
		MimeType string `json:"mimeType"`
		Data     string `json:"data"`
	} `json:"inlineData,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *GeminiClient) GenerateText(ctx context.Context, apiVersion, model, prompt string) (string, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]any{{"text": prompt}}},
		},
		"generationConfig": map[string]any{
			"responseMimeType": "application/json",
		},
	}

	payload, err := c.generateContent(ctx, apiVersion, model, body)
	if err != nil {
		return "", err
	}

	for _, cand := range payload.Candidates {
		for _, part := range cand.Content.Parts {
			if part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", ErrEmptyPayload
}

func (c *GeminiClient) GenerateSpeech(ctx context.Context, apiVersion, model, text, voice string) (SpeechPayload, error) {
	body := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]any{{"text": text}}},
		},
		"generationConfig": map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{
						"voiceName": voice,
					},
				},
			},
		},
	}

	payload, err := c.generateContent(ctx, apiVersion, model, body)
	if err != nil {
		return SpeechPayload{}, err
	}

	for _, cand := range payload.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || part.InlineData.Data == "" {
				continue
			}
			data, decodeErr := base64.StdEncoding.DecodeString(part.InlineData.Data)
			if decodeErr != nil {
				return SpeechPayload{}, fmt.Errorf("decode inline audio: %w", decodeErr)
			}
			mimeType := part.InlineData.MimeType
			if mimeType == "" {
				mimeType = "audio/wav"
			}
			return SpeechPayload{Data: data, MimeType: mimeType}, nil
		}
	}
	return SpeechPayload{}, fmt.Errorf("empty audio data: %w", ErrEmptyPayload)
}

func (c *GeminiClient) generateContent(ctx context.Context, apiVersion, model string, body any) (*geminiResponse, error) {
	endpoint := fmt.Sprintf("%s/%s/models/%s:generateContent?key=%s", c.baseURL, apiVersion, model, c.apiKey)

	raw, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	var payload geminiResponse
	// Malformed bodies are tolerated; status classification decides the path.
	_ = json.NewDecoder(resp.Body).Decode(&payload)

	if resp.StatusCode != http.StatusOK {
		detail := fmt.Sprintf("HTTP %d", resp.StatusCode)
		if payload.Error != nil && payload.Error.Message != "" {
			detail = payload.Error.Message
		}
		return nil, &CallError{Status: resp.StatusCode, Detail: detail}
	}

	return &payload, nil
}

// candidateList puts the configured value first and appends the built-in
// defaults, deduplicated, so an override narrows preference without removing
// the degradation path.
func candidateList(configured string, defaults []string) []string {
	seen := make(map[string]bool, len(defaults)+1)
	var out []string
	for _, v := range append([]string{configured}, defaults...) {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

func stripModelsPrefix(model string) string {
	return modelsPrefixRe.ReplaceAllString(strings.TrimSpace(model), "")
}
