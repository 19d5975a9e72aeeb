package media

import (
	"context"
	"fmt"
	"image"
	"math"
	"os"

	"photo-library/internal/catalog"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageDimension bounds the width or height of a decoded original.
	MaxImageDimension = 4096

	// MaxImagePixels bounds the pixel count of a decoded original
	// (about 48MB as RGBA). It is below MaxImageDimension squared, so near
	// square originals are held to it after the dimension cap.
	MaxImagePixels = 12_000_000
)

// ImageDimensions holds image width and height.
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions reads only the image header of path.
func GetImageDimensions(path string) (*ImageDimensions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			log.Warn("failed to close %s: %v", path, cerr)
		}
	}()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: cfg.Width, Height: cfg.Height}, nil
}

// constrainedSize scales width×height down until it fits both limits,
// keeping the aspect ratio. ok is false when no scaling is needed.
func constrainedSize(width, height, maxDimension, maxPixels int) (int, int, bool) {
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return width, height, false
	}

	w, h := width, height
	if w > maxDimension || h > maxDimension {
		if w > h {
			h = h * maxDimension / w
			w = maxDimension
		} else {
			w = w * maxDimension / h
			h = maxDimension
		}
	}
	if w*h > maxPixels {
		// Area shrinks with the square of the side scale.
		scale := math.Sqrt(float64(maxPixels) / float64(w*h))
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
		for w*h > maxPixels {
			if w >= h {
				w--
			} else {
				h--
			}
		}
	}
	return max(w, 1), max(h, 1), true
}

// ImagingDecoder decodes with the pure Go imaging library, honoring EXIF
// orientation. Oversized originals are scaled down right after decoding.
type ImagingDecoder struct{}

// Name implements Decoder.
func (ImagingDecoder) Name() string { return "imaging" }

// Supports implements Decoder.
func (ImagingDecoder) Supports(kind catalog.Kind) bool { return kind == catalog.KindImage }

// Decode implements Decoder.
func (ImagingDecoder) Decode(_ context.Context, path string, _, _ int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	b := img.Bounds()
	if w, h, scaled := constrainedSize(b.Dx(), b.Dy(), MaxImageDimension, MaxImagePixels); scaled {
		log.Info("constraining large image %s from %dx%d to %dx%d", path, b.Dx(), b.Dy(), w, h)
		img = imaging.Resize(img, w, h, imaging.Lanczos)
	}
	return img, nil
}
