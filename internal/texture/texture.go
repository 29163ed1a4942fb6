// Package texture decodes material channel images into RGBA maps ready for
// upload by the rendering surface.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"path"
	"strings"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/h2non/filetype"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/Faultbox/bed-atelier/internal/catalog"
	"github.com/Faultbox/bed-atelier/pkg/math"
)

// ErrUnsupportedFormat is returned when the data matches no known decoder.
var ErrUnsupportedFormat = errors.New("unsupported texture format")

type decodeFunc func(data []byte) (image.Image, error)

func reader(fn func(r *bytes.Reader) (image.Image, error)) decodeFunc {
	return func(data []byte) (image.Image, error) {
		return fn(bytes.NewReader(data))
	}
}

// decoders keyed by filetype extension.
var decoders = map[string]decodeFunc{
	"png":  reader(func(r *bytes.Reader) (image.Image, error) { return png.Decode(r) }),
	"jpg":  reader(func(r *bytes.Reader) (image.Image, error) { return jpeg.Decode(r) }),
	"bmp":  reader(func(r *bytes.Reader) (image.Image, error) { return bmp.Decode(r) }),
	"tif":  reader(func(r *bytes.Reader) (image.Image, error) { return tiff.Decode(r) }),
	"webp": reader(func(r *bytes.Reader) (image.Image, error) { return webp.Decode(r) }),
	"tga":  func(data []byte) (image.Image, error) { return DecodeTGA(data) },
}

// Format reports the decoder key for data. TGA has no magic number, so it is
// recognized by file extension; everything else is sniffed from content.
func Format(name string, data []byte) (string, error) {
	if strings.EqualFold(path.Ext(name), ".tga") {
		return "tga", nil
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if _, ok := decoders[kind.Extension]; !ok {
		return "", fmt.Errorf("%w: %s (%s)", ErrUnsupportedFormat, name, kind.MIME.Value)
	}
	return kind.Extension, nil
}

// Decode decodes a channel image and normalizes it to RGBA.
// Images larger than maxSize on either side are downscaled preserving
// aspect ratio; maxSize <= 0 disables the limit.
func Decode(name string, data []byte, maxSize int) (*image.RGBA, error) {
	format, err := Format(name, data)
	if err != nil {
		return nil, err
	}

	img, err := decoders[format](data)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	rgba := clone.AsRGBA(img)
	return Fit(rgba, maxSize), nil
}

// Fit downscales img so neither side exceeds maxSize.
func Fit(img *image.RGBA, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize <= 0 || (w <= maxSize && h <= maxSize) {
		return img
	}

	if w >= h {
		h = max(1, h*maxSize/w)
		w = maxSize
	} else {
		w = max(1, w*maxSize/h)
		h = maxSize
	}
	return transform.Resize(img, w, h, transform.Linear)
}

// Map is one decoded channel of a material, with the sampling parameters
// the surface applies when uploading it.
type Map struct {
	Channel    catalog.Channel
	Image      *image.RGBA
	WrapRepeat bool
	Repeat     math.Vec2
}

// Size returns the map's pixel dimensions.
func (m *Map) Size() (int, int) {
	if m == nil || m.Image == nil {
		return 0, 0
	}
	b := m.Image.Bounds()
	return b.Dx(), b.Dy()
}
