package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"timecast/internal/ai"
)

const defaultSampleRate = 24000

var sampleRateRe = regexp.MustCompile(`rate=(\d+)`)

// SynthesizeAudio converts the final script into a playable audio file and
// returns its public reference path. Raw linear-PCM payloads are re-encoded
// as WAV; container payloads (e.g. MP3) are written unmodified.
func (g *Generator) SynthesizeAudio(ctx context.Context, scriptText, language, id string) (string, error) {
	text := strings.TrimSpace(scriptText)
	if text == "" {
		return "", &EmptyResultError{Stage: StageAudio, Reason: "generated script is empty after normalization"}
	}

	voice := g.speech.VoiceForLanguage(language)
	grid := g.speech.SpeechGrid()
	grid.Sleep = g.sleep

	payload, err := ai.Invoke(ctx, grid, func(ctx context.Context, version, model string) (ai.SpeechPayload, error) {
		return g.speech.GenerateSpeech(ctx, version, model, text, voice)
	})
	if err != nil {
		return "", fmt.Errorf("speech synthesis: %w", err)
	}

	mimeType := strings.ToLower(payload.MimeType)
	data := payload.Data
	ext := "wav"

	switch {
	case isRawPCM(mimeType):
		data = PCM16ToWAV(data, sampleRateFromMime(mimeType), 1)
	case strings.Contains(mimeType, "mp3") || strings.Contains(mimeType, "mpeg"):
		ext = "mp3"
	}

	fileName := fmt.Sprintf("%s.%s", id, ext)
	if err := g.blobs.Write(fileName, data); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return g.blobs.URLFor(fileName), nil
}

func isRawPCM(mimeType string) bool {
	return strings.Contains(mimeType, "audio/l16") || strings.Contains(mimeType, "audio/pcm")
}

// sampleRateFromMime parses the rate parameter that raw-PCM media types
// carry, e.g. "audio/l16;codec=pcm;rate=24000".
func sampleRateFromMime(mimeType string) int {
	m := sampleRateRe.FindStringSubmatch(mimeType)
	if m == nil {
		return defaultSampleRate
	}
	rate, err := strconv.Atoi(m[1])
	if err != nil || rate <= 0 {
		return defaultSampleRate
	}
	return rate
}
