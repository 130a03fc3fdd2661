// internal/common/imaging/imaging_test.go
package imaging

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"greenguide/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 80, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// pngHeader returns a PNG signature and IHDR chunk declaring a w*h RGBA canvas
// with no pixel data behind it.
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.Write([]byte("\x89PNG\r\n\x1a\n"))

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA

	chunk := append([]byte("IHDR"), ihdr...)
	_ = binary.Write(&buf, binary.BigEndian, uint32(len(ihdr)))
	buf.Write(chunk)
	_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(chunk))
	return buf.Bytes()
}

func TestProcess_DownscalesLargeImage(t *testing.T) {
	payload, err := Process(pngBytes(t, 2048, 1024), Options{})
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", payload.MIMEType)
	assert.Equal(t, 1024, payload.Width)
	assert.Equal(t, 512, payload.Height)
	assert.True(t, strings.HasPrefix(payload.DataURL(), "data:image/jpeg;base64,"))

	decoded, err := jpeg.Decode(bytes.NewReader(payload.Data))
	require.NoError(t, err)
	assert.Equal(t, 1024, decoded.Bounds().Dx())
}

func TestProcess_KeepsSmallImageSize(t *testing.T) {
	payload, err := Process(pngBytes(t, 64, 48), Options{MaxDimension: 1024, JPEGQuality: 85})
	require.NoError(t, err)
	assert.Equal(t, 64, payload.Width)
	assert.Equal(t, 48, payload.Height)
	assert.NotEmpty(t, payload.Base64)
}

func TestProcess_RejectsNonImages(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("definitely not an image, just some text")},
		{"pdf", []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n")},
		{"truncated png", pngBytes(t, 32, 32)[:40]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Process(tt.data, Options{})
			require.Error(t, err)
			assert.True(t, errors.HasCode(err, errors.ErrCodeImageDecodeFailed))
		})
	}
}

func TestProcess_RejectsOversizedCanvas(t *testing.T) {
	_, err := Process(pngHeader(30000, 30000), Options{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeImageDecodeFailed))
	assert.Contains(t, err.(*errors.StandardError).Details, "pixel limit")
}

func TestProcess_MaxPixelsOption(t *testing.T) {
	data := pngBytes(t, 100, 100)

	_, err := Process(data, Options{MaxPixels: 9_999})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeImageDecodeFailed))

	payload, err := Process(data, Options{MaxPixels: 10_000})
	require.NoError(t, err)
	assert.Equal(t, 100, payload.Width)
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max    int
		wantW, wantH int
	}{
		{800, 600, 1024, 800, 600},
		{4000, 3000, 1024, 1024, 768},
		{3000, 4000, 1024, 768, 1024},
		{5000, 2, 1024, 1024, 1},
		{1024, 1024, 1024, 1024, 1024},
	}
	for _, tt := range tests {
		w, h := FitWithin(tt.w, tt.h, tt.max)
		assert.Equal(t, tt.wantW, w)
		assert.Equal(t, tt.wantH, h)
	}
}
