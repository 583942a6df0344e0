package ai

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLoose(t *testing.T) {
	t.Run("strict json passes through", func(t *testing.T) {
		v := DecodeLoose(`{"title":"Morning Brief","count":3}`, nil)
		m, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Morning Brief", m["title"])
		assert.Equal(t, float64(3), m["count"])
	})

	t.Run("fenced block is unwrapped", func(t *testing.T) {
		raw := "```json\n[{\"title\":\"AI chips\"}]\n```"
		v := DecodeLoose(raw, nil)
		list, ok := v.([]any)
		require.True(t, ok)
		require.Len(t, list, 1)
	})

	t.Run("bare fence without language tag", func(t *testing.T) {
		raw := "```\n{\"ok\":true}\n```"
		v := DecodeLoose(raw, nil)
		m, ok := v.(map[string]any)
		require.True(t, ok)
		assert.Equal(t, true, m["ok"])
	})

	t.Run("leading whitespace before fence", func(t *testing.T) {
		raw := "\n  ```json\n{\"ok\":true}\n```  "
		v := DecodeLoose(raw, nil)
		_, ok := v.(map[string]any)
		assert.True(t, ok)
	})

	t.Run("garbage yields the fallback", func(t *testing.T) {
		fallback := []any{}
		v := DecodeLoose("I could not produce JSON today.", fallback)
		assert.Equal(t, fallback, v)
	})

	t.Run("round trip is lossless", func(t *testing.T) {
		original := map[string]any{"events": []any{map[string]any{"title": "量子计算突破"}}}
		raw, err := json.Marshal(original)
		require.NoError(t, err)
		assert.Equal(t, original, DecodeLoose(string(raw), nil))
	})
}

func TestDecodeLooseInto(t *testing.T) {
	type draft struct {
		Title  string `json:"title"`
		Script string `json:"script"`
	}

	t.Run("typed decode from fenced payload", func(t *testing.T) {
		var d draft
		ok := DecodeLooseInto("```json\n{\"title\":\"t\",\"script\":\"s\"}\n```", &d)
		require.True(t, ok)
		assert.Equal(t, "t", d.Title)
		assert.Equal(t, "s", d.Script)
	})

	t.Run("reports failure on non-json", func(t *testing.T) {
		var d draft
		assert.False(t, DecodeLooseInto("plain prose, no braces", &d))
	})
}
