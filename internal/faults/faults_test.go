package faults

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfSurvivesWrapping(t *testing.T) {
	inner := New(KindQuotaExceeded, "quota exhausted")
	wrapped := fmt.Errorf("pipeline failed: %w", inner)

	assert.Equal(t, KindQuotaExceeded, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindQuotaExceeded))
	assert.False(t, Is(wrapped, KindTimeout))
}

func TestKindOfUnclassified(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.Equal(t, KindInternal, KindOf(nil))
}

func TestUserMessageNeverLeaksWrappedError(t *testing.T) {
	cause := errors.New("connection reset by upstream 10.0.0.3")
	f := Wrap(KindTimeout, "analysis did not finish in time", cause)

	assert.Equal(t, "analysis did not finish in time", UserMessage(f))
	assert.NotContains(t, UserMessage(f), "10.0.0.3")
	assert.Contains(t, f.Error(), "10.0.0.3", "server-side text keeps the cause")
}

func TestUserMessageFallback(t *testing.T) {
	assert.Equal(t, "internal server error", UserMessage(errors.New("raw")))
}
