package pipeline_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/globonews/newsmapper/internal/pipeline"
)

func TestErrorKindsSurviveWrapping(t *testing.T) {
	base := &pipeline.TransportError{Op: "geocode", Err: errors.New("timeout")}
	wrapped := fmt.Errorf("resolve coordinates: %w", base)
	assert.True(t, pipeline.IsTransport(wrapped))
	assert.False(t, pipeline.IsParse(wrapped))

	parse := fmt.Errorf("keywords: %w", &pipeline.ParseError{Op: "generate", Err: errors.New("bad json")})
	assert.True(t, pipeline.IsParse(parse))
	assert.False(t, pipeline.IsTransport(parse))
}

func TestConfigurationErrorMessage(t *testing.T) {
	err := &pipeline.ConfigurationError{Reason: "sources file missing"}
	assert.Equal(t, "configuration: sources file missing", err.Error())

	withCause := &pipeline.ConfigurationError{Reason: "assets file", Err: errors.New("no such file")}
	assert.Contains(t, withCause.Error(), "no such file")
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", pipeline.Truncate("abc", 150))
	assert.Equal(t, "ab", pipeline.Truncate("abcd", 2))
	// Rune-safe truncation.
	assert.Equal(t, "ciò", pipeline.Truncate("ciò che accade", 3))
}
