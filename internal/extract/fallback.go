package extract

import (
	"regexp"
	"strings"
)

// labelPattern matches a labelled prose line: optional bullet, optional
// bold markers, a known label, a colon, and the value.
var labelPattern = regexp.MustCompile(`(?i)^\s*(?:[-*•]\s*)?(?:\*\*)?([a-z][a-z _-]{0,20}?)(?:\*\*)?\s*:\s*(.*?)\s*$`)

// bulletPattern matches a plain bullet line continuing a list field.
var bulletPattern = regexp.MustCompile(`^\s*[-*•]\s+(.+?)\s*$`)

// labelledProse is the fallback generation strategy: it assembles a
// candidate from labelled lines in plain prose. It matches whenever the
// response is non-empty, so it always yields a candidate - possibly one
// that is mostly defaults. Validation after default-fill decides
// whether that candidate survives.
type labelledProse struct{}

func (labelledProse) name() string { return "labelled-prose" }

//nolint:gocognit // Line scanner with one branch per recognised label.
func (labelledProse) apply(response string) (*candidate, bool) {
	c := &candidate{}
	var listTarget *stringList

	for _, line := range strings.Split(response, "\n") {
		m := labelPattern.FindStringSubmatch(line)
		if m == nil {
			// A bare bullet continues the most recent list label.
			if listTarget != nil {
				if b := bulletPattern.FindStringSubmatch(line); b != nil {
					*listTarget = append(*listTarget, strings.TrimSpace(stripEmphasis(b[1])))
					continue
				}
			}
			if !isBlank(line) {
				listTarget = nil
			}
			continue
		}

		label := strings.ToLower(strings.TrimSpace(m[1]))
		value := strings.TrimSpace(stripEmphasis(m[2]))
		listTarget = nil

		switch label {
		case "title", "name":
			if value != "" {
				c.Title = value
			}
		case "project":
			if value != "" {
				c.Project = value
			}
		case "summary", "short summary":
			if value != "" {
				c.Summary = value
			}
		case "long summary", "long_summary", "description":
			if value != "" {
				c.LongSummary = value
			}
		case "excerpt", "quote":
			if value != "" {
				c.Excerpt = value
			}
		case "tags", "tag":
			c.Tags = splitList(value)
			listTarget = &c.Tags
		case "entities", "entity", "people", "names":
			c.Entities = splitList(value)
			listTarget = &c.Entities
		case "topics", "topic", "themes":
			c.Topics = splitList(value)
			listTarget = &c.Topics
		}
	}

	return c, true
}

// stripEmphasis removes markdown bold/italic markers from a value.
func stripEmphasis(s string) string {
	return strings.NewReplacer("**", "", "*", "", "__", "", "`", "").Replace(s)
}
