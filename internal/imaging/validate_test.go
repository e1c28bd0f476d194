package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLimits() Limits {
	return Limits{
		MaxFileSize:  10 * 1024 * 1024,
		MinDimension: 100,
		MaxDimension: 10000,
	}
}

func makeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func makePNG(t *testing.T, width, height int, alpha uint8) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: alpha})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		data    func(t *testing.T) []byte
		wantErr error
	}{
		{
			name:    "valid 500x500 jpeg passes",
			data:    func(t *testing.T) []byte { return makeJPEG(t, 500, 500) },
			wantErr: nil,
		},
		{
			name:    "valid 100x100 png at the lower bound passes",
			data:    func(t *testing.T) []byte { return makePNG(t, 100, 100, 255) },
			wantErr: nil,
		},
		{
			name:    "empty file",
			data:    func(t *testing.T) []byte { return nil },
			wantErr: ErrEmptyFile,
		},
		{
			name: "file over the size limit",
			data: func(t *testing.T) []byte {
				return make([]byte, 11*1024*1024)
			},
			wantErr: ErrFileTooLarge,
		},
		{
			name:    "50x50 image is too small",
			data:    func(t *testing.T) []byte { return makePNG(t, 50, 50, 255) },
			wantErr: ErrImageTooSmall,
		},
		{
			name: "not an image at all",
			data: func(t *testing.T) []byte {
				return []byte("this is definitely not an image")
			},
			wantErr: ErrUnsupportedFormat,
		},
		{
			name: "gif is an unsupported format",
			data: func(t *testing.T) []byte {
				// Minimal GIF header, enough for a format sniff failure
				// since the gif decoder is not registered.
				return []byte("GIF89a\x01\x00\x01\x00\x00\x00\x00;")
			},
			wantErr: ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.data(t), testLimits())
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidate_SizeCheckRunsBeforeEmptyCheck(t *testing.T) {
	limits := testLimits()
	limits.MaxFileSize = 10

	err := Validate(make([]byte, 11), limits)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestValidate_TooLargeDimensions(t *testing.T) {
	limits := testLimits()
	limits.MaxDimension = 400

	err := Validate(makeJPEG(t, 500, 300), limits)
	assert.ErrorIs(t, err, ErrImageTooLarge)
}
