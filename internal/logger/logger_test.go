package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects log output to a buffer and restores defaults when
// the test ends.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestDebugAndInfo_GatedByVerbose(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Debug("chunking %s", "notes/a.md")
	Info("run complete")
	Section("Indexing")
	assert.Zero(t, buf.Len())

	SetVerbose(true)
	Debug("chunking %s", "notes/a.md")
	Info("run complete")
	Section("Indexing")
	assert.Contains(t, buf.String(), "[DEBUG] chunking notes/a.md\n")
	assert.Contains(t, buf.String(), "[INFO] run complete\n")
	assert.Contains(t, buf.String(), "=== Indexing ===\n")
}

func TestWarn_PrintsWithVerboseOff(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Warn("chunk %s persisted without embedding", "c1")

	assert.Equal(t, "[WARN] chunk c1 persisted without embedding\n", buf.String())
}

func TestError_PrintsWithVerboseOff(t *testing.T) {
	buf := capture(t)

	SetVerbose(false)
	Error("indexing %s failed: %v", "notes/a.md", os.ErrClosed)

	assert.Contains(t, buf.String(), "[ERROR] indexing notes/a.md failed:")
}

func TestConcurrentAccess(t *testing.T) {
	capture(t)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func(n int) {
			SetVerbose(true)
			Debug("worker %d", n)
			Warn("worker %d", n)
			IsVerbose()
			SetVerbose(false)
			done <- struct{}{}
		}(i)
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}
