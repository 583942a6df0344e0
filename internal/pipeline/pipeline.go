package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"timecast/internal/ai"
	"timecast/internal/models"
)

// Stage names identify which part of the pipeline a failure came from.
const (
	StageEvents = "news extraction"
	StageScript = "script synthesis"
	StageAudio  = "audio synthesis"
)

// EmptyResultError means a stage produced nothing usable after every backstop.
// Fatal for the request.
type EmptyResultError struct {
	Stage  string
	Reason string
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf("%s produced no usable result: %s", e.Stage, e.Reason)
}

// BlobStore persists generated audio files.
type BlobStore interface {
	Write(name string, data []byte) error
	URLFor(name string) string
}

// Generator sequences the generation stages into one request→record
// transaction. One Run is a single sequential chain; concurrent Runs share
// nothing.
type Generator struct {
	text   ai.TextProvider
	speech ai.SpeechProvider
	blobs  BlobStore
	log    *slog.Logger

	// now, newID and sleep are injectable for tests.
	now   func() time.Time
	newID func() string
	sleep func(ctx context.Context, d time.Duration) error
}

func NewGenerator(text ai.TextProvider, speech ai.SpeechProvider, blobs BlobStore, log *slog.Logger) *Generator {
	if log == nil {
		log = slog.Default()
	}
	return &Generator{
		text:   text,
		speech: speech,
		blobs:  blobs,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Run executes extraction → script → monologue → backstops → audio and
// returns the completed record. Any fatal stage failure aborts the whole
// request; the caller persists nothing in that case. An audio file written
// before a later failure cannot exist since audio is the last stage.
func (g *Generator) Run(ctx context.Context, req models.GenerationRequest, user models.User) (models.PodcastRecord, error) {
	if req.Region == "" {
		req.Region = models.DefaultRegion
	}

	events, debug, err := g.ExtractEvents(ctx, req)
	if err != nil {
		return models.PodcastRecord{}, fmt.Errorf("%s: %w", StageEvents, err)
	}
	if len(events) == 0 {
		return models.PodcastRecord{}, &EmptyResultError{
			Stage:  StageEvents,
			Reason: "no structured events extracted; retry with a narrower date range",
		}
	}
	g.log.Info("events extracted", "count", len(events), "provider", g.text.Name())

	draft, err := g.SynthesizeScript(ctx, req, events)
	if err != nil {
		return models.PodcastRecord{}, fmt.Errorf("%s: %w", StageScript, err)
	}

	id := g.newID()

	scriptText := ToMonologue(firstNonEmpty(draft.ScriptText, draft.Summary))
	if scriptText == "" {
		scriptText = BuildFallbackScriptFromEvents(req.Language, req.Region, req.StartDate, req.EndDate, events)
		g.log.Info("model script unusable, using algorithmic fallback", "id", id)
	}

	title, summary := EnsureTitleAndSummary(draft, events, scriptText, req.Language, req.StartDate, req.EndDate, req.Region)

	audioURL, err := g.SynthesizeAudio(ctx, scriptText, req.Language, id)
	if err != nil {
		return models.PodcastRecord{}, fmt.Errorf("%s: %w", StageAudio, err)
	}
	g.log.Info("audio synthesized", "id", id, "url", audioURL)

	keyPoints := draft.KeyPoints
	if keyPoints == nil {
		keyPoints = []string{}
	}

	return models.PodcastRecord{
		ID:         id,
		CreatedAt:  g.now().UTC().Format(time.RFC3339),
		User:       user,
		Input:      req,
		Events:     events,
		Title:      title,
		Summary:    summary,
		ScriptText: scriptText,
		KeyPoints:  keyPoints,
		Debug:      debug,
		AudioURL:   audioURL,
		ShareURL:   "/share/" + id,
	}, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
