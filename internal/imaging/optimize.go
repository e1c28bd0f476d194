package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"

	"github.com/rwcarlsen/goexif/exif"
	xdraw "golang.org/x/image/draw"
)

const (
	MIMEJPEG = "image/jpeg"
	MIMEPNG  = "image/png"
)

// Options control re-encoding before the image is sent to the model.
type Options struct {
	MaxDimension int
	JPEGQuality  int
}

// Optimize prepares an admitted image for the model request: fixes EXIF
// rotation, downsamples the longest side to MaxDimension, flattens
// transparency onto white for JPEG output. PNG output is kept only when
// the source is a PNG with genuine alpha. Returns the re-encoded bytes
// and their MIME type.
func Optimize(data []byte, opts Options) ([]byte, string, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("failed to decode image: %w", err)
	}

	if format == "jpeg" {
		img = applyOrientation(img, exifOrientation(data))
	}

	if opts.MaxDimension > 0 {
		img = downscale(img, opts.MaxDimension)
	}

	var buf bytes.Buffer
	if format == "png" && !isOpaque(img) {
		if err := png.Encode(&buf, img); err != nil {
			return nil, "", fmt.Errorf("failed to encode png: %w", err)
		}
		return buf.Bytes(), MIMEPNG, nil
	}

	quality := opts.JPEGQuality
	if quality <= 0 {
		quality = 85
	}
	if err := jpeg.Encode(&buf, flattenToRGB(img), &jpeg.Options{Quality: quality}); err != nil {
		return nil, "", fmt.Errorf("failed to encode jpeg: %w", err)
	}
	return buf.Bytes(), MIMEJPEG, nil
}

// exifOrientation reads the EXIF orientation tag, 1 (normal) when absent.
func exifOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil || orientation < 1 || orientation > 8 {
		return 1
	}
	return orientation
}

// applyOrientation bakes the EXIF orientation into pixel data.
func applyOrientation(img image.Image, orientation int) image.Image {
	if orientation <= 1 {
		return img
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	swapped := orientation >= 5 // 90 or 270 degree rotations swap axes
	var dst *image.NRGBA
	if swapped {
		dst = image.NewNRGBA(image.Rect(0, 0, h, w))
	} else {
		dst = image.NewNRGBA(image.Rect(0, 0, w, h))
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.At(bounds.Min.X+x, bounds.Min.Y+y)
			switch orientation {
			case 2: // mirror horizontal
				dst.Set(w-1-x, y, c)
			case 3: // rotate 180
				dst.Set(w-1-x, h-1-y, c)
			case 4: // mirror vertical
				dst.Set(x, h-1-y, c)
			case 5: // mirror horizontal, rotate 270 CW
				dst.Set(y, x, c)
			case 6: // rotate 90 CW
				dst.Set(h-1-y, x, c)
			case 7: // mirror horizontal, rotate 90 CW
				dst.Set(h-1-y, w-1-x, c)
			case 8: // rotate 270 CW
				dst.Set(y, w-1-x, c)
			}
		}
	}
	return dst
}

// downscale resizes so the longest side is at most maxDim.
func downscale(img image.Image, maxDim int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	longest := w
	if h > longest {
		longest = h
	}
	if longest <= maxDim {
		return img
	}

	scale := float64(maxDim) / float64(longest)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewNRGBA(image.Rect(0, 0, dw, dh))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, xdraw.Over, nil)
	return dst
}

// flattenToRGB composites the image over a white background, dropping
// any alpha channel for JPEG encoding.
func flattenToRGB(img image.Image) image.Image {
	if isOpaque(img) {
		return img
	}
	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Over)
	return dst
}

func isOpaque(img image.Image) bool {
	type opaquer interface{ Opaque() bool }
	if o, ok := img.(opaquer); ok {
		return o.Opaque()
	}
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}
