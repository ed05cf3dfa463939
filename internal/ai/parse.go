package ai

import (
	"fmt"
	"strconv"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ExtractJSONObject returns the first balanced {...} in text. Braces inside
// JSON strings, including escaped quotes, are ignored.
func ExtractJSONObject(text string) (string, bool) {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

func decodeReply(text string) (map[string]interface{}, error) {
	raw, ok := ExtractJSONObject(text)
	if !ok {
		return nil, fmt.Errorf("%w: no JSON object in reply", ErrMalformedReply)
	}
	var obj map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedReply, err)
	}
	return obj, nil
}

// ParseRanking extracts the rankedShortcuts list from a reply. Numeric ids
// are converted to strings; other non-string entries are skipped.
func ParseRanking(text string) ([]string, error) {
	obj, err := decodeReply(text)
	if err != nil {
		return nil, err
	}
	list, ok := obj["rankedShortcuts"].([]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: rankedShortcuts missing or not a list", ErrMalformedReply)
	}
	ids := make([]string, 0, len(list))
	for _, v := range list {
		switch id := v.(type) {
		case string:
			ids = append(ids, id)
		case float64:
			ids = append(ids, strconv.FormatFloat(id, 'f', -1, 64))
		}
	}
	return ids, nil
}

// ParseExplanation extracts a non-empty explanation string from a reply.
func ParseExplanation(text string) (string, error) {
	obj, err := decodeReply(text)
	if err != nil {
		return "", err
	}
	s, ok := obj["explanation"].(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("%w: explanation missing or not a string", ErrMalformedReply)
	}
	return strings.TrimSpace(s), nil
}
