package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiImageKey_Deterministic(t *testing.T) {
	a := []byte("image-a-bytes")
	b := []byte("image-b-bytes")

	first := MultiImageKey([][]byte{a, b})
	second := MultiImageKey([][]byte{a, b})

	assert.Equal(t, first, second, "same ordered input must produce the same key")
	assert.Contains(t, first, "multi_2_")
}

func TestMultiImageKey_OrderSensitive(t *testing.T) {
	a := []byte("image-a-bytes")
	b := []byte("image-b-bytes")

	ab := MultiImageKey([][]byte{a, b})
	ba := MultiImageKey([][]byte{b, a})

	assert.NotEqual(t, ab, ba, "image order must affect the key")
}

func TestStepTwoKey_NamespaceDistinctFromMultiImage(t *testing.T) {
	text := "grounded facts"
	stepKey := StepTwoKey(text)
	imgKey := MultiImageKey([][]byte{[]byte(text)})

	assert.Contains(t, stepKey, "step2_")
	assert.NotEqual(t, stepKey, imgKey)
}

func TestNamespacedKeys(t *testing.T) {
	base := MultiImageKey([][]byte{[]byte("x")})

	assert.Equal(t, "grounded_"+base, GroundedKey(base))
	assert.Equal(t, "markdown_"+base, MarkdownKey(base))
	assert.NotEqual(t, GroundedKey(base), MarkdownKey(base))
}

func TestCache_SetGetTyped(t *testing.T) {
	c := NewCache(NoExpiration, 0)

	c.Set("k", "value", NoExpiration)

	got, ok := GetTyped[string](c, "k")
	assert.True(t, ok)
	assert.Equal(t, "value", got)

	_, ok = GetTyped[int](c, "k")
	assert.False(t, ok, "type mismatch must report a miss")

	_, ok = GetTyped[string](c, "missing")
	assert.False(t, ok)
}
