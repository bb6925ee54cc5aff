package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalText_AllFields(t *testing.T) {
	r := &IndexedRecord{
		Title:       "Deploy runbook",
		Summary:     "Short summary.",
		LongSummary: "Longer summary.",
		Tags:        []string{"ops", "deploy"},
		Topics:      []string{"infrastructure"},
		Excerpt:     "Check health first.",
	}

	got := r.CanonicalText()

	assert.Equal(t, "Deploy runbook\nShort summary.\nLonger summary.\nops, deploy\ninfrastructure\nCheck health first.", got)
}

func TestCanonicalText_SkipsEmptyParts(t *testing.T) {
	r := &IndexedRecord{Title: "Only a title", Summary: "   "}

	assert.Equal(t, "Only a title", r.CanonicalText())
}

func TestCanonicalText_StableForUnchangedRecord(t *testing.T) {
	r := &IndexedRecord{Title: "T", Summary: "S", Tags: []string{"a"}}

	assert.Equal(t, r.CanonicalText(), r.CanonicalText())
}
