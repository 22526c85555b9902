package util

import (
	"errors"
	"strings"

	"github.com/tidwall/gjson"
)

var ErrInvalidJSON = errors.New("model output is not valid JSON")

// CleanJSON strips markdown code fences and any prose around the outermost
// JSON object or array in model output.
func CleanJSON(text string) (string, error) {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```JSON")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
		s = strings.TrimSpace(s)
	}
	if gjson.Valid(s) {
		return s, nil
	}

	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return "", ErrInvalidJSON
	}
	closer := "}"
	if s[start] == '[' {
		closer = "]"
	}
	end := strings.LastIndex(s, closer)
	if end <= start {
		return "", ErrInvalidJSON
	}
	s = s[start : end+1]
	if !gjson.Valid(s) {
		return "", ErrInvalidJSON
	}
	return s, nil
}
