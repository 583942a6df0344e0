package models

const (
	LanguageEnglish = "en"
	LanguageChinese = "zh"

	DefaultRegion = "Global"
)

// GenerationRequest is the user-supplied input for one podcast generation.
// It is immutable once accepted by the server.
type GenerationRequest struct {
	Categories []string `json:"categories"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Language   string   `json:"language"`
	Region     string   `json:"region"`
}

type EventSource struct {
	SourceName string `json:"sourceName"`
	URL        string `json:"url"`
}

// NewsEvent is one normalized news item extracted by the model.
// Instances are produced only by pipeline.NormalizeEvents.
type NewsEvent struct {
	Title        string        `json:"title"`
	Date         string        `json:"date"`
	Category     string        `json:"category"`
	WhyImportant string        `json:"whyImportant"`
	SourceName   string        `json:"sourceName"`
	URL          string        `json:"url"`
	Sources      []EventSource `json:"sources"`
}

// ScriptDraft is the model's narration output before the backstops run.
// Every field may be empty; downstream stages must tolerate that.
type ScriptDraft struct {
	Title      string   `json:"title"`
	Summary    string   `json:"summary"`
	ScriptText string   `json:"scriptText"`
	KeyPoints  []string `json:"keyPoints"`
}

type User struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// GenerationDebug records the raw model exchange for the news extraction
// stage, including the amended retry if one was made.
type GenerationDebug struct {
	Provider string `json:"provider"`
	Prompt   string `json:"prompt"`
	FirstRaw string `json:"firstRaw"`
	RetryRaw string `json:"retryRaw,omitempty"`
}

// PodcastRecord is the persisted artifact of one completed generation.
// Immutable after creation except for deletion.
type PodcastRecord struct {
	ID         string            `json:"id"`
	CreatedAt  string            `json:"createdAt"`
	User       User              `json:"user"`
	Input      GenerationRequest `json:"input"`
	Events     []NewsEvent       `json:"events"`
	Title      string            `json:"title"`
	Summary    string            `json:"summary"`
	ScriptText string            `json:"scriptText"`
	KeyPoints  []string          `json:"keyPoints"`
	Debug      *GenerationDebug  `json:"debug"`
	AudioURL   string            `json:"audioUrl"`
	ShareURL   string            `json:"shareUrl"`
}

// PodcastSummary is the listing shape returned for a user's own records.
type PodcastSummary struct {
	ID        string            `json:"id"`
	Title     string            `json:"title"`
	CreatedAt string            `json:"createdAt"`
	Input     GenerationRequest `json:"input"`
}

func (r PodcastRecord) Summarize() PodcastSummary {
	return PodcastSummary{
		ID:        r.ID,
		Title:     r.Title,
		CreatedAt: r.CreatedAt,
		Input:     r.Input,
	}
}
