package llm

import "strings"

// CleanJSONBlock reduces a model response to the JSON document it carries.
// Even with a JSON response MIME type, Gemini sometimes wraps the document
// in a markdown fence or chats around it. Fences are stripped first, then
// the first balanced object or array is extracted; if no balanced document
// is found the text is returned as-is.
func CleanJSONBlock(text string) string {
	text = stripFence(strings.TrimSpace(text))

	if i := strings.IndexAny(text, "{["); i >= 0 {
		var doc string
		if text[i] == '{' {
			doc = extractJSONObject(text[i:])
		} else {
			doc = extractJSONArray(text[i:])
		}
		if doc != "" {
			return doc
		}
	}
	return text
}

// stripFence removes a surrounding ``` fence, including a language tag such
// as "json" on the opening line.
func stripFence(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	body := text[3:]
	if nl := strings.Index(body, "\n"); nl >= 0 {
		if isLanguageTag(strings.TrimSpace(body[:nl])) {
			body = body[nl+1:]
		}
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// isLanguageTag reports whether the first fence line is a language marker
// rather than the start of the payload.
func isLanguageTag(s string) bool {
	return len(s) < 20 && !strings.ContainsAny(s, " {[")
}

func extractJSONObject(s string) string { return extractBalanced(s, '{', '}') }

func extractJSONArray(s string) string { return extractBalanced(s, '[', ']') }

// extractBalanced returns the prefix of s that forms a balanced document
// delimited by open/close, honoring string literals and escapes so braces
// inside values do not count. Returns "" when s does not start with open or
// never balances.
func extractBalanced(s string, open, close byte) string {
	if len(s) == 0 || s[0] != open {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}
