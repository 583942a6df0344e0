package ai

import "context"

// SpeechPayload is the decoded audio returned by a speech model.
type SpeechPayload struct {
	Data     []byte
	MimeType string
}

// TextProvider generates structured text from a prompt, one candidate
// attempt at a time; callers drive the fallback grid via Invoke.
type TextProvider interface {
	Name() string
	TextGrid() Grid
	GenerateText(ctx context.Context, apiVersion, model, prompt string) (string, error)
}

// SpeechProvider converts a script into audio the same way.
type SpeechProvider interface {
	Name() string
	SpeechGrid() Grid
	VoiceForLanguage(language string) string
	GenerateSpeech(ctx context.Context, apiVersion, model, text, voice string) (SpeechPayload, error)
}
