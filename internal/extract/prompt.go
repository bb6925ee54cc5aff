package extract

import (
	"fmt"
	"strings"
)

// promptTemplate instructs the model to emit the record schema. It
// includes an inline example because models follow examples far more
// reliably than field lists - though the extractor still assumes
// nothing about compliance.
const promptTemplate = `Analyse the following content and summarise it as a JSON object.

Respond with ONLY a JSON object in exactly this shape:

{
  "title": "Trip Planning",
  "project": "general",
  "summary": "One or two sentences describing the content.",
  "long_summary": "A fuller paragraph covering the main points.",
  "tags": ["travel", "planning"],
  "entities": ["Lisbon"],
  "topics": ["itineraries"],
  "excerpt": "A short verbatim quote from the content."
}

Use empty strings and empty arrays for anything you cannot determine.
Do not add fields, comments or text outside the JSON object.

Known title: %s
Known project: %s

Content:
%s`

// maxPromptContent bounds how much content is inlined into the prompt.
const maxPromptContent = 12000

// BuildPrompt renders the extraction prompt for one source unit.
func BuildPrompt(title, project, content string) string {
	if title == "" {
		title = "(unknown)"
	}
	if project == "" {
		project = "(unknown)"
	}
	if len(content) > maxPromptContent {
		content = content[:maxPromptContent]
		// Cut at a line boundary so the model doesn't see a torn word.
		if i := strings.LastIndexByte(content, '\n'); i > 0 {
			content = content[:i]
		}
	}
	return fmt.Sprintf(promptTemplate, title, project, content)
}
