package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbosity(int(Info))
	})
	return &buf
}

func TestVerbosityFiltering(t *testing.T) {
	buf := capture(t)

	SetVerbosity(int(Info))
	Infof("event=visible n=%d", 1)
	Debugf("event=hidden")
	Tracef("event=hidden_too")

	out := buf.String()
	assert.Contains(t, out, "event=visible n=1")
	assert.NotContains(t, out, "hidden")
}

func TestErrorLevelOnly(t *testing.T) {
	buf := capture(t)

	SetVerbosity(int(Error))
	Infof("event=quiet")
	Errorf("event=failure err=%v", "boom")

	out := buf.String()
	assert.NotContains(t, out, "quiet")
	assert.Contains(t, out, "err=boom")
	assert.Contains(t, out, "level=error")
}

func TestVerbosityRoundTrip(t *testing.T) {
	capture(t)

	for _, l := range []Level{Error, Info, Debug, Trace} {
		SetVerbosity(int(l))
		assert.Equal(t, l, Verbosity())
	}

	SetVerbosity(-3)
	assert.Equal(t, Error, Verbosity())
	SetVerbosity(10)
	assert.Equal(t, Trace, Verbosity())
}

func TestWithFields(t *testing.T) {
	buf := capture(t)
	SetVerbosity(int(Debug))

	WithFields(map[string]any{"request_id": "abc"}).Debug("request")
	assert.Contains(t, buf.String(), "request_id=abc")
}
