package agents

import "strings"

// normalizeJSONText strips markdown code fences and surrounding prose from a
// model reply that is supposed to be a single JSON object.
func normalizeJSONText(s string) string {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		t = strings.TrimPrefix(t, "```")
		// drop a language hint such as json
		if idx := strings.IndexByte(t, '\n'); idx != -1 {
			t = t[idx+1:]
		} else {
			t = strings.TrimPrefix(t, "json")
		}
		if j := strings.LastIndex(t, "```"); j != -1 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	if !strings.HasPrefix(t, "{") {
		if obj := extractJSONObject(t); obj != "" {
			return obj
		}
	}
	return t
}

// extractJSONObject returns the first balanced top-level {...} in s, ignoring
// braces inside string literals.
func extractJSONObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return ""
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return ""
}
