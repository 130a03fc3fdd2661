// internal/common/imaging/imaging.go
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"greenguide/internal/common/errors"
	"greenguide/internal/models"

	"github.com/gabriel-vasile/mimetype"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxDimension = 1024
	DefaultJPEGQuality  = 85
	DefaultMaxPixels    = 50_000_000
)

var supportedTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp"}

type Options struct {
	MaxDimension int
	JPEGQuality  int
	// MaxPixels bounds the declared canvas (width*height) before decoding.
	MaxPixels int
}

func (o Options) withDefaults() Options {
	if o.MaxDimension <= 0 {
		o.MaxDimension = DefaultMaxDimension
	}
	if o.JPEGQuality <= 0 || o.JPEGQuality > 100 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.MaxPixels <= 0 {
		o.MaxPixels = DefaultMaxPixels
	}
	return o
}

// Process sniffs, checks the declared size against MaxPixels, decodes, downsizes to fit MaxDimension and re-encodes the
// upload as JPEG. Aspect ratio is preserved and images are never upscaled.
func Process(data []byte, opts Options) (*models.ImagePayload, error) {
	opts = opts.withDefaults()

	if len(data) == 0 {
		return nil, errors.NewImageDecodeFailedError(fmt.Errorf("empty upload"))
	}

	detected := mimetype.Detect(data)
	if !mimetype.EqualsAny(detected.String(), supportedTypes...) {
		return nil, errors.NewImageDecodeFailedError(fmt.Errorf("unsupported content type %s", detected.String()))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewImageDecodeFailedError(fmt.Errorf("decode %s header: %w", detected.String(), err))
	}
	if pixels := int64(cfg.Width) * int64(cfg.Height); pixels > int64(opts.MaxPixels) {
		return nil, errors.NewImageDecodeFailedError(fmt.Errorf("image %dx%d exceeds the %d pixel limit", cfg.Width, cfg.Height, opts.MaxPixels))
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.NewImageDecodeFailedError(fmt.Errorf("decode %s: %w", detected.String(), err))
	}

	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return nil, errors.NewImageDecodeFailedError(fmt.Errorf("image %s has zero size", format))
	}

	width, height := FitWithin(bounds.Dx(), bounds.Dy(), opts.MaxDimension)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	// JPEG has no alpha channel, so flatten onto white first.
	draw.Draw(dst, dst.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: opts.JPEGQuality}); err != nil {
		return nil, errors.NewInternalError(fmt.Errorf("encode jpeg: %w", err))
	}

	return models.NewImagePayload(buf.Bytes(), "image/jpeg", width, height), nil
}

// FitWithin scales (w, h) down so neither side exceeds max, keeping the ratio.
func FitWithin(w, h, max int) (int, int) {
	if w <= max && h <= max {
		return w, h
	}
	if w >= h {
		nh := h * max / w
		if nh < 1 {
			nh = 1
		}
		return max, nh
	}
	nw := w * max / h
	if nw < 1 {
		nw = 1
	}
	return nw, max
}
