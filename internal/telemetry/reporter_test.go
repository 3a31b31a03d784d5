package telemetry

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nvim-markdown-preview/internal/logger"
)

func TestNewWithoutKeyReturnsNil(t *testing.T) {
	log := logger.New("test")
	r := New(Metadata{Name: "ext", Version: "1.0.0"}, log)
	assert.Nil(t, r)
}

func TestNilReporterIsSafe(t *testing.T) {
	var r *Reporter
	r.SendEvent("preview.show", map[string]string{"where": "tab"})
	r.Dispose()
	r.Dispose()
}

func TestEventsFlushOnDispose(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("test")
	log.SetOutput(&buf)
	log.SetLevel(logger.LevelDebug)

	r := New(Metadata{Name: "ext", Version: "1.0.0", Key: "k-123"}, log)
	require.NotNil(t, r)

	r.SendEvent("preview.show", map[string]string{"where": "tab"})
	r.SendEvent("security.selector", nil)
	r.Dispose()

	out := buf.String()
	assert.Contains(t, out, "preview.show")
	assert.Contains(t, out, "security.selector")
}

func TestSendEventNeverBlocks(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New("test")
	log.SetOutput(&buf)

	r := New(Metadata{Name: "ext", Version: "1.0.0", Key: "k-123"}, log)
	require.NotNil(t, r)
	defer r.Dispose()

	// Far more events than the queue holds; overflow is dropped, not blocked.
	for i := 0; i < 10_000; i++ {
		r.SendEvent("burst", nil)
	}
}
