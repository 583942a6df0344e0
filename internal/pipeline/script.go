package pipeline

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"timecast/internal/ai"
	"timecast/internal/models"
)

var (
	sourceFooterZhRe = regexp.MustCompile(`[ \t]*来源[:：][^\n。！？!?]*([。！？!?]|$)`)
	sourceFooterEnRe = regexp.MustCompile(`(?i)[ \t]*Source[:：][^\n.?!]*([.?!]|$)`)
	speakerLabelRe   = regexp.MustCompile(`(?i)^\s*(host\s*[ab]|主播[ab甲乙]?|a|b)\s*[:：]\s*`)
	bulletRe         = regexp.MustCompile(`^\s*[-*]\s*`)
	sentenceSplitRe  = regexp.MustCompile(`[\n。！？.!?]`)
	genericTitleRe   = regexp.MustCompile(`(?i)^generated podcast$`)
)

// SynthesizeScript runs the script synthesis stage. A draft that fails to
// decode comes back empty rather than failing the request; the backstops
// below absorb every missing field.
func (g *Generator) SynthesizeScript(ctx context.Context, req models.GenerationRequest, events []models.NewsEvent) (models.ScriptDraft, error) {
	raw, err := g.invokeText(ctx, buildScriptPrompt(req, events))
	if err != nil {
		return models.ScriptDraft{}, err
	}

	var draft models.ScriptDraft
	ai.DecodeLooseInto(raw, &draft)
	return draft, nil
}

// ToMonologue strips source-attribution footers and speaker labels so the
// script reads as a single narrator. Returns "" when nothing survives.
func ToMonologue(text string) string {
	if text == "" {
		return ""
	}

	cleaned := sourceFooterZhRe.ReplaceAllString(text, "")
	cleaned = sourceFooterEnRe.ReplaceAllString(cleaned, "")

	var lines []string
	for _, line := range strings.Split(cleaned, "\n") {
		line = speakerLabelRe.ReplaceAllString(line, "")
		line = bulletRe.ReplaceAllString(line, "")
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n\n")
}

// fallbackEventCap bounds how many events the algorithmic script reads out.
const fallbackEventCap = 8

// BuildFallbackScriptFromEvents renders a deterministic script directly from
// the extracted events: a fixed intro naming the date range and region, one
// numbered line per event, and a fixed closing. Model-independent; non-empty
// whenever at least one event exists.
func BuildFallbackScriptFromEvents(language, region, startDate, endDate string, events []models.NewsEvent) string {
	top := events
	if len(top) > fallbackEventCap {
		top = top[:fallbackEventCap]
	}
	if len(top) == 0 {
		return ""
	}
	region = regionOrGlobal(region)

	if language == models.LanguageChinese {
		parts := []string{
			fmt.Sprintf("早上好，这里是 Timecast。今天我们回看 %s 到 %s，重点地区是 %s。以下是这个时间段最值得关注的新闻脉络。", startDate, endDate, region),
		}
		for i, e := range top {
			parts = append(parts, fmt.Sprintf("第%d条，%s。%s", i+1, e.Title, e.WhyImportant))
		}
		parts = append(parts, "以上是本期历史新闻回顾，我们下期再见。")
		return strings.Join(parts, "\n\n")
	}

	parts := []string{
		fmt.Sprintf("Good morning, this is Timecast. Today we review %s to %s, with a focus on %s. Here are the key stories from that period.", startDate, endDate, region),
	}
	for i, e := range top {
		parts = append(parts, fmt.Sprintf("Story %d: %s. %s", i+1, e.Title, e.WhyImportant))
	}
	parts = append(parts, "That wraps up this historical news briefing. See you next time.")
	return strings.Join(parts, "\n\n")
}

const (
	titleBudgetZh = 24
	titleBudgetEn = 48
)

// EnsureTitleAndSummary guarantees a non-empty, language-correct title and
// summary even for a fully empty draft. Model output wins when usable; a
// placeholder or blank title is rebuilt from the date range and the first
// event, and a blank summary from the opening of the final script text.
func EnsureTitleAndSummary(draft models.ScriptDraft, events []models.NewsEvent, scriptText, language, startDate, endDate, region string) (string, string) {
	first := ""
	if len(events) > 0 {
		first = events[0].Title
	}
	if first == "" {
		if language == models.LanguageChinese {
			first = "历史新闻回顾"
		} else {
			first = "Historical News Briefing"
		}
	}

	title := strings.TrimSpace(draft.Title)
	if title == "" || genericTitleRe.MatchString(title) {
		if language == models.LanguageChinese {
			title = fmt.Sprintf("回看%s至%s：%s", startDate, endDate, truncateRunes(first, titleBudgetZh))
		} else {
			title = fmt.Sprintf("Revisiting %s to %s: %s", startDate, endDate, truncateRunes(first, titleBudgetEn))
		}
	}

	summary := strings.TrimSpace(draft.Summary)
	if summary == "" {
		summary = summaryFromScript(scriptText, language, startDate, endDate, region)
	}

	return title, summary
}

func summaryFromScript(scriptText, language, startDate, endDate, region string) string {
	var segments []string
	for _, seg := range sentenceSplitRe.Split(scriptText, -1) {
		seg = strings.TrimSpace(seg)
		if seg != "" {
			segments = append(segments, seg)
		}
	}

	if len(segments) >= 2 {
		if language == models.LanguageChinese {
			return segments[0] + "。" + segments[1] + "。"
		}
		return segments[0] + ". " + segments[1] + "."
	}

	region = regionOrGlobal(region)
	if language == models.LanguageChinese {
		return fmt.Sprintf("本期回顾 %s 至 %s 的%s新闻脉络，围绕重点事件提炼核心变化与影响。", startDate, endDate, region)
	}
	return fmt.Sprintf("This episode reviews key %s stories from %s to %s, focusing on major shifts and their impact.", region, startDate, endDate)
}

func truncateRunes(s string, budget int) string {
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}
