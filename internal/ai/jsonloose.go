package ai

import (
	"encoding/json"
	"regexp"
	"strings"
)

var (
	fenceOpenRe  = regexp.MustCompile("(?i)^```json\\s*")
	fenceBareRe  = regexp.MustCompile("(?i)^```\\s*")
	fenceCloseRe = regexp.MustCompile("\\s*```$")
)

// DecodeLoose parses model output that should be JSON but may be wrapped in a
// fenced code block. On total failure it returns fallback unchanged; it never
// fails.
func DecodeLoose(raw string, fallback any) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		return v
	}

	cleaned := stripFences(raw)
	if err := json.Unmarshal([]byte(cleaned), &v); err == nil {
		return v
	}
	return fallback
}

// DecodeLooseInto is the typed variant: it decodes into v and reports whether
// either the strict or the fence-stripped parse succeeded. v is untouched on
// failure only if decoding never started, so callers should pass a fresh
// value.
func DecodeLooseInto(raw string, v any) bool {
	if err := json.Unmarshal([]byte(raw), v); err == nil {
		return true
	}
	return json.Unmarshal([]byte(stripFences(raw)), v) == nil
}

func stripFences(raw string) string {
	cleaned := fenceOpenRe.ReplaceAllString(strings.TrimSpace(raw), "")
	cleaned = fenceBareRe.ReplaceAllString(cleaned, "")
	cleaned = fenceCloseRe.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}
