package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/jpeg"
	_ "image/png"
)

// Admission failures. The HTTP layer maps all of these to 400.
var (
	ErrFileTooLarge      = errors.New("file exceeds the maximum allowed size")
	ErrEmptyFile         = errors.New("file is empty")
	ErrUnsupportedFormat = errors.New("unsupported image format, only JPEG and PNG are accepted")
	ErrImageTooSmall     = errors.New("image dimensions are too small")
	ErrImageTooLarge     = errors.New("image dimensions are too large")
)

// Limits bound what the admission gate accepts.
type Limits struct {
	MaxFileSize  int64
	MinDimension int
	MaxDimension int
}

// Validate checks uploaded bytes before any model call is made. Checks
// run in order and short-circuit on the first failure. Pure: no side
// effects, the full image is never decoded here.
func Validate(data []byte, limits Limits) error {
	if int64(len(data)) > limits.MaxFileSize {
		return fmt.Errorf("%w (max %d bytes)", ErrFileTooLarge, limits.MaxFileSize)
	}
	if len(data) == 0 {
		return ErrEmptyFile
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if format != "jpeg" && format != "png" {
		return fmt.Errorf("%w (got %s)", ErrUnsupportedFormat, format)
	}

	if cfg.Width < limits.MinDimension || cfg.Height < limits.MinDimension {
		return fmt.Errorf("%w (min %dx%d)", ErrImageTooSmall, limits.MinDimension, limits.MinDimension)
	}
	if cfg.Width > limits.MaxDimension || cfg.Height > limits.MaxDimension {
		return fmt.Errorf("%w (max %dx%d)", ErrImageTooLarge, limits.MaxDimension, limits.MaxDimension)
	}

	return nil
}
