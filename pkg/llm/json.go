package llm

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// thinkTagPattern matches <think>...</think> reasoning blocks some models
// emit before the answer.
var thinkTagPattern = regexp.MustCompile(`(?s)<think>.*?</think>`)

// ExtractObject pulls the first balanced top-level JSON object out of a
// response that may wrap it in prose, markdown code fences or reasoning tags.
func ExtractObject(response string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(response, "")
	cleaned = stripCodeFences(cleaned)

	start := strings.IndexByte(cleaned, '{')
	if start < 0 {
		return "", fmt.Errorf("no JSON object in response")
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(cleaned); i++ {
		c := cleaned[i]
		if escaped {
			escaped = false
			continue
		}
		if inString {
			switch c {
			case '\\':
				escaped = true
			case '"':
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
				candidate := cleaned[start : i+1]
				if !json.Valid([]byte(candidate)) {
					return "", fmt.Errorf("unbalanced JSON object is not valid")
				}
				return candidate, nil
			}
		}
	}

	return "", fmt.Errorf("unterminated JSON object in response")
}

// ParseObject extracts the first JSON object and unmarshals it into T.
func ParseObject[T any](response string) (T, error) {
	var result T

	jsonStr, err := ExtractObject(response)
	if err != nil {
		return result, err
	}
	if err := json.Unmarshal([]byte(jsonStr), &result); err != nil {
		return result, fmt.Errorf("unmarshal JSON: %w", err)
	}
	return result, nil
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
