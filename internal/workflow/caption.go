package workflow

import (
	"strings"
	"unicode/utf8"
)

// maxCaptionLength is the lowest common caption limit across the publish
// targets (Instagram's 2200 characters).
const maxCaptionLength = 2200

// stage markers the script prompt asks for; they structure the narration but
// do not belong in a caption.
var scriptMarkers = []string{"HOOK:", "BODY:", "CTA:"}

// BuildCaption derives a publish caption from the narration script: marker
// lines are stripped, the text is truncated at a word boundary to fit the
// platform limit, and hashtags are appended.
func BuildCaption(script string, hashtags []string) string {
	var kept []string
	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		trimmed = stripMarker(trimmed)
		if trimmed == "" {
			continue
		}
		kept = append(kept, trimmed)
	}
	caption := strings.Join(kept, "\n\n")

	var tags string
	if len(hashtags) > 0 {
		var withHash []string
		for _, tag := range hashtags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if !strings.HasPrefix(tag, "#") {
				tag = "#" + tag
			}
			withHash = append(withHash, tag)
		}
		tags = strings.Join(withHash, " ")
	}

	budget := maxCaptionLength
	if tags != "" {
		budget -= utf8.RuneCountInString(tags) + 2
	}
	caption = truncateAtWord(caption, budget)

	if tags != "" {
		if caption == "" {
			return tags
		}
		return caption + "\n\n" + tags
	}
	return caption
}

// stripMarker removes a leading stage marker from a line. A line that is only
// a marker collapses to empty.
func stripMarker(line string) string {
	upper := strings.ToUpper(line)
	for _, m := range scriptMarkers {
		if strings.HasPrefix(upper, m) {
			return strings.TrimSpace(line[len(m):])
		}
	}
	return line
}

// truncateAtWord cuts s to at most limit runes, backing up to the previous
// word boundary so no word is split.
func truncateAtWord(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	runes := []rune(s)
	cut := limit
	for cut > 0 && !isSpace(runes[cut-1]) {
		cut--
	}
	if cut == 0 {
		// Single word longer than the limit; hard cut.
		cut = limit
	}
	return strings.TrimSpace(string(runes[:cut]))
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\n' || r == '\t'
}
