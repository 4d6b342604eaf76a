package ai

import (
	"errors"
	"strings"
)

// ExtractJSON pulls the outermost JSON object out of a model reply.
//
// Models often wrap their answer in markdown code fences or surround it with
// prose. The fences are stripped first, then the span from the first '{' to
// the last '}' is returned.
func ExtractJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end < start {
		return "", errors.New("no json object in reply")
	}
	return s[start : end+1], nil
}
