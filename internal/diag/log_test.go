package diag

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestDefaultLogger_Discards(t *testing.T) {
	var buf bytes.Buffer
	// Sanity check that Nop truly discards regardless of sink: the default
	// logger isn't wired to buf at all, so buf must stay empty.
	Debug().Str("x", "y").Msg("should not appear")
	assert.Empty(t, buf.String())
}

func TestSetLogger_InstallsCustomSink(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	defer SetLogger(zerolog.Nop())

	Warn().Msg("hello")
	assert.Contains(t, buf.String(), "hello")
}
