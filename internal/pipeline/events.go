package pipeline

import (
	"context"
	"strings"

	"timecast/internal/ai"
	"timecast/internal/models"
)

// metaCommentaryMarkers flag model output that disclaims network access or
// leaks instructions instead of reporting news. Matching is case-insensitive
// in both supported languages.
var metaCommentaryMarkers = []string{
	"无法访问",
	"cannot access",
	"system prompt",
	"系统提示",
}

// NormalizeEvents maps loosely decoded model output into canonical events.
// It accepts either a bare array or an object with an "events" field, coerces
// known fields to strings, and filters out empty-title and meta-commentary
// items. Input order is preserved.
func NormalizeEvents(decoded any) []models.NewsEvent {
	rawList, ok := decoded.([]any)
	if !ok {
		if obj, isObj := decoded.(map[string]any); isObj {
			rawList, _ = obj["events"].([]any)
		}
	}

	events := make([]models.NewsEvent, 0, len(rawList))
	for _, raw := range rawList {
		item, isObj := raw.(map[string]any)
		if !isObj {
			continue
		}

		event := models.NewsEvent{
			Title:        stringField(item, "title"),
			Date:         stringField(item, "date"),
			Category:     stringField(item, "category"),
			WhyImportant: stringField(item, "whyImportant"),
			SourceName:   stringField(item, "sourceName"),
			URL:          stringField(item, "url"),
			Sources:      sourcesField(item),
		}
		if event.WhyImportant == "" {
			event.WhyImportant = stringField(item, "reason")
		}

		if event.Title == "" {
			continue
		}
		if containsMetaCommentary(event) {
			continue
		}
		events = append(events, event)
	}
	return events
}

func containsMetaCommentary(event models.NewsEvent) bool {
	text := strings.ToLower(event.Title + " " + event.WhyImportant + " " + event.SourceName)
	for _, marker := range metaCommentaryMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}

func stringField(item map[string]any, key string) string {
	s, _ := item[key].(string)
	return s
}

func sourcesField(item map[string]any) []models.EventSource {
	rawSources, _ := item["sources"].([]any)
	sources := make([]models.EventSource, 0, len(rawSources))
	for _, raw := range rawSources {
		src, isObj := raw.(map[string]any)
		if !isObj {
			continue
		}
		sources = append(sources, models.EventSource{
			SourceName: stringField(src, "sourceName"),
			URL:        stringField(src, "url"),
		})
	}
	return sources
}

// ExtractEvents runs the news extraction stage: prompt, grid invocation,
// loose decode, normalization, and exactly one amended retry when the first
// pass filters down to nothing. The retry's result is accepted as-is; an
// empty result after it is the caller's fatal condition.
func (g *Generator) ExtractEvents(ctx context.Context, req models.GenerationRequest) ([]models.NewsEvent, *models.GenerationDebug, error) {
	prompt := buildNewsPrompt(req)

	firstRaw, err := g.invokeText(ctx, prompt)
	if err != nil {
		return nil, nil, err
	}

	debug := &models.GenerationDebug{
		Provider: g.text.Name(),
		Prompt:   prompt,
		FirstRaw: firstRaw,
	}

	events := NormalizeEvents(ai.DecodeLoose(firstRaw, []any{}))
	if len(events) > 0 {
		return events, debug, nil
	}

	retryRaw, err := g.invokeText(ctx, prompt+"\n\n"+retryAmendment)
	if err != nil {
		return nil, nil, err
	}
	debug.RetryRaw = retryRaw

	events = NormalizeEvents(ai.DecodeLoose(retryRaw, []any{}))
	return events, debug, nil
}

func (g *Generator) invokeText(ctx context.Context, prompt string) (string, error) {
	grid := g.text.TextGrid()
	grid.Sleep = g.sleep
	return ai.Invoke(ctx, grid, func(ctx context.Context, version, model string) (string, error) {
		return g.text.GenerateText(ctx, version, model, prompt)
	})
}
