package scene

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"

	_ "github.com/ftrvxmtrx/tga"
	"golang.org/x/image/draw"

	"prop-brush/internal/logging"
	"prop-brush/internal/mathutil"
)

// ErrEmptyHeightmap is returned for heightmaps smaller than 2×2 samples.
var ErrEmptyHeightmap = errors.New("scene: heightmap needs at least 2x2 samples")

// HeightmapOptions controls how image luminance maps to terrain.
type HeightmapOptions struct {
	CellSize    float64       // world units between samples (default 1)
	HeightScale float64       // world height of a white pixel (default 10)
	MaxSize     int           // downscale so neither side exceeds this (0 = keep)
	Origin      mathutil.Vec3 // world position of sample (0, 0)
}

func (o HeightmapOptions) withDefaults() HeightmapOptions {
	if o.CellSize <= 0 {
		o.CellSize = 1
	}
	if o.HeightScale <= 0 {
		o.HeightScale = 10
	}
	return o
}

// LoadHeightmap reads a TGA, PNG or JPEG image and builds a heightfield from
// its luminance. Image row 0 becomes the far (max Y) edge of the terrain.
func LoadHeightmap(path string, opts HeightmapOptions) (*Heightfield, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scene: read %s: %w", path, err)
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("scene: decode %s: %w", path, err)
	}
	logging.Logger().Debug("heightmap decoded", "path", path, "format", format,
		"width", img.Bounds().Dx(), "height", img.Bounds().Dy())

	hf, err := HeightfieldFromImage(ObjectRef(path), img, opts)
	if err != nil {
		return nil, fmt.Errorf("scene: heightmap %s: %w", path, err)
	}
	return hf, nil
}

// HeightfieldFromImage converts img luminance to terrain heights.
func HeightfieldFromImage(name ObjectRef, img image.Image, opts HeightmapOptions) (*Heightfield, error) {
	opts = opts.withDefaults()
	gray := toGray16(img, opts.MaxSize)
	b := gray.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 2 || h < 2 {
		return nil, ErrEmptyHeightmap
	}

	heights := make([]float64, w*h)
	for y := 0; y < h; y++ {
		row := h - 1 - y
		for x := 0; x < w; x++ {
			v := gray.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			heights[row*w+x] = float64(v) / 65535 * opts.HeightScale
		}
	}

	hf, err := NewHeightfield(name, w, h, opts.CellSize, heights)
	if err != nil {
		return nil, err
	}
	hf.Origin = opts.Origin
	return hf, nil
}

// toGray16 converts any image to 16-bit grayscale, downscaling with
// Catmull-Rom when it exceeds maxSize on either side.
func toGray16(src image.Image, maxSize int) *image.Gray16 {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 1 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(2, h*maxSize/w)
			w = maxSize
		} else {
			w = max(2, w*maxSize/h)
			h = maxSize
		}
		scaled := image.NewRGBA64(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)
		src = scaled
		b = scaled.Bounds()
	}

	if g, ok := src.(*image.Gray16); ok {
		return g
	}
	dst := image.NewGray16(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst.SetGray16(x, y, color.Gray16Model.Convert(src.At(b.Min.X+x, b.Min.Y+y)).(color.Gray16))
		}
	}
	return dst
}
