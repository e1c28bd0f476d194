package cache

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
)

// Content-addressed cache keys. MD5 is fine here: the cache is not a
// security boundary, only a collision-resistant fingerprint of inputs.

// MultiImageKey fingerprints an ordered list of image byte sequences.
// Input order affects the key: the same images uploaded in a different
// order produce a different key.
func MultiImageKey(images [][]byte) string {
	h := md5.New()
	for _, img := range images {
		sum := md5.Sum(img)
		h.Write(sum[:])
	}
	return fmt.Sprintf("multi_%d_%s", len(images), hex.EncodeToString(h.Sum(nil)))
}

// StepTwoKey fingerprints the grounded intermediate text that feeds the
// JSON conversion step. Namespaced so it can never collide with an
// image-derived key.
func StepTwoKey(groundedText string) string {
	sum := md5.Sum([]byte(groundedText))
	return "step2_" + hex.EncodeToString(sum[:])
}

// GroundedKey namespaces a multi-image key for storing the step-1
// intermediate text.
func GroundedKey(multiImageKey string) string {
	return "grounded_" + multiImageKey
}

// MarkdownKey namespaces a multi-image key for storing a validated
// markdown-mode result.
func MarkdownKey(multiImageKey string) string {
	return "markdown_" + multiImageKey
}
