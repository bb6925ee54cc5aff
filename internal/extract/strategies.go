package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

// stringList tolerates the shapes models emit for list fields: a JSON
// array, a single string, or a comma-separated string.
type stringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *stringList) UnmarshalJSON(data []byte) error {
	var arr []string
	if err := json.Unmarshal(data, &arr); err == nil {
		*l = arr
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*l = splitList(s)
		return nil
	}

	// Mixed-type arrays: keep the string elements.
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	*l = out
	return nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// parseCandidate attempts a strict JSON object parse of s.
func parseCandidate(s string) (*candidate, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "{") {
		return nil, false
	}
	var c candidate
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return nil, false
	}
	return &c, true
}

// wholeResponse parses the entire response as a single JSON object.
type wholeResponse struct{}

func (wholeResponse) name() string { return "whole-response" }

func (wholeResponse) apply(response string) (*candidate, bool) {
	return parseCandidate(response)
}

// fencePattern matches fenced code regions, capturing the info string
// and the body. (?s) lets the body span lines.
var fencePattern = regexp.MustCompile("(?s)```[ \t]*([a-zA-Z0-9]*)[ \t]*\n(.*?)```")

// fencedBlock looks for a JSON object inside fenced code regions:
// fences tagged as json first, then any fence.
type fencedBlock struct{}

func (fencedBlock) name() string { return "fenced-block" }

func (fencedBlock) apply(response string) (*candidate, bool) {
	matches := fencePattern.FindAllStringSubmatch(response, -1)
	if len(matches) == 0 {
		return nil, false
	}

	// Tagged fences take precedence over untagged ones.
	for _, pass := range []bool{true, false} {
		for _, m := range matches {
			tagged := strings.EqualFold(m[1], "json")
			if tagged != pass {
				continue
			}
			if c, ok := parseCandidate(stripComments(m[2])); ok {
				return c, true
			}
		}
	}
	return nil, false
}

// embeddedObject scans for the first opening brace anywhere in the
// response and attempts brace-balanced extraction from that point,
// stripping comments before parsing.
type embeddedObject struct{}

func (embeddedObject) name() string { return "embedded-object" }

func (embeddedObject) apply(response string) (*candidate, bool) {
	for start := strings.IndexByte(response, '{'); start >= 0; {
		if body, ok := balancedFrom(response[start:]); ok {
			if c, ok := parseCandidate(stripComments(body)); ok {
				return c, true
			}
		}
		next := strings.IndexByte(response[start+1:], '{')
		if next < 0 {
			break
		}
		start += 1 + next
	}
	return nil, false
}

// balancedFrom returns the prefix of s that closes the opening brace or
// bracket s starts with, honouring string literals and escapes.
func balancedFrom(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false

	for i := 0; i < len(s); i++ {
		ch := s[i]
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
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// stripComments removes // and # line comments and /* */ block
// comments outside string literals. Models occasionally annotate the
// JSON they were asked not to annotate.
func stripComments(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inString := false
	escaped := false
	inBlock := false

	for i := 0; i < len(s); i++ {
		ch := s[i]

		if inBlock {
			if ch == '*' && i+1 < len(s) && s[i+1] == '/' {
				inBlock = false
				i++
			}
			continue
		}

		if inString {
			b.WriteByte(ch)
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

		switch {
		case ch == '"':
			inString = true
			b.WriteByte(ch)
		case ch == '/' && i+1 < len(s) && s[i+1] == '/':
			i = skipToLineEnd(s, i)
		case ch == '#':
			i = skipToLineEnd(s, i)
		case ch == '/' && i+1 < len(s) && s[i+1] == '*':
			inBlock = true
			i++
		default:
			b.WriteByte(ch)
		}
	}

	return b.String()
}

func skipToLineEnd(s string, i int) int {
	for i < len(s) && s[i] != '\n' {
		i++
	}
	return i - 1
}
