package vision

import (
	"encoding/json"
	"strings"
)

// AnalysisPrompt asks the model for a machine-readable result. Models that
// ignore the "only valid JSON" instruction are handled by ParseAnalysis.
const AnalysisPrompt = `Analyze this image comprehensively. Return a JSON object with these fields:
{
  "description": "2-3 sentence description of what's shown",
  "categories": ["array", "of", "category", "tags"],
  "objects": ["main", "objects", "detected"],
  "scene": "scene type (indoor/outdoor/studio/nature/urban/etc)",
  "mood": "emotional tone (happy/serene/dramatic/professional/casual/etc)"
}

Return only valid JSON, no explanation.`

// fallbackDescriptionLimit bounds how much raw model output is kept when
// the response is not parseable JSON.
const fallbackDescriptionLimit = 500

// Analysis is one image's analysis result.
type Analysis struct {
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Objects     []string `json:"objects"`
	Scene       string   `json:"scene"`
	Mood        string   `json:"mood"`
}

// ParseAnalysis extracts an Analysis from raw model output. The JSON may
// be wrapped in a fenced code block (with or without a "json" language
// tag). Unparseable output yields a fallback record: the raw text
// truncated into the description, scene "unknown", mood "neutral".
func ParseAnalysis(raw string) Analysis {
	cleaned := strings.TrimSpace(raw)
	if strings.HasPrefix(cleaned, "```") {
		parts := strings.SplitN(cleaned, "```", 3)
		if len(parts) >= 2 {
			cleaned = parts[1]
		}
		cleaned = strings.TrimPrefix(cleaned, "json")
		cleaned = strings.TrimSpace(cleaned)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(cleaned), &a); err != nil {
		return Analysis{
			Description: truncate(raw, fallbackDescriptionLimit),
			Categories:  []string{},
			Objects:     []string{},
			Scene:       "unknown",
			Mood:        "neutral",
		}
	}
	if a.Scene == "" {
		a.Scene = "unknown"
	}
	if a.Mood == "" {
		a.Mood = "neutral"
	}
	if a.Categories == nil {
		a.Categories = []string{}
	}
	if a.Objects == nil {
		a.Objects = []string{}
	}
	return a
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit]
}
