package quizgen

import "strings"

const (
	jsonFenceOpener = "```json"
	fenceMarker     = "```"
)

// CleanResponse strips reasoning tags and markdown fences that models add around
// JSON despite being told not to. Unfenced JSON passes through unchanged.
func CleanResponse(raw string) string {
	s := strings.TrimSpace(raw)

	if thinkStart := strings.Index(s, "<think>"); thinkStart != -1 {
		if thinkEnd := strings.Index(s, "</think>"); thinkEnd > thinkStart {
			s = strings.TrimSpace(s[:thinkStart] + s[thinkEnd+len("</think>"):])
		}
	}

	switch {
	case strings.HasPrefix(s, jsonFenceOpener):
		s = s[len(jsonFenceOpener):]
	case strings.HasPrefix(s, fenceMarker):
		s = s[len(fenceMarker):]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), fenceMarker)
	s = strings.TrimSpace(s)

	// Fall back to the outermost object when the model wrapped it in prose.
	if !strings.HasPrefix(s, "{") && !strings.HasPrefix(s, "[") {
		start := strings.Index(s, "{")
		end := strings.LastIndex(s, "}")
		if start != -1 && end > start {
			s = s[start : end+1]
		}
	}
	return s
}

// truncateRunes keeps the first max characters of s.
func truncateRunes(s string, max int) (string, bool) {
	if max <= 0 || len(s) <= max {
		return s, false
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s, false
	}
	return string(runes[:max]), true
}
