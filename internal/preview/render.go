// Package preview draws a top-down picture of the brush over the scene:
// hillshaded terrain, placed props, the brush outline, the tangent frame and
// every candidate coloured by validity.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/gogpu/gg"

	"prop-brush/internal/mathutil"
	"prop-brush/internal/scene"
	"prop-brush/internal/session"
)

// Options controls the preview image.
type Options struct {
	Size        int // output width in pixels; height follows the view aspect
	Supersample int
	// Min and Max bound the viewed XY region. When both are zero the terrain
	// bounds are used, or a square around the brush if there is no terrain.
	Min, Max mathutil.Vec3
}

// view maps world XY to pixel coordinates, +Y up.
type view struct {
	minX, maxY float64
	scale      float64
	w, h       int
}

func (v view) project(p mathutil.Vec3) (float64, float64) {
	return (p[0] - v.minX) * v.scale, (v.maxY - p[1]) * v.scale
}

func (v view) unproject(px, py float64) (float64, float64) {
	return v.minX + px/v.scale, v.maxY - py/v.scale
}

func newView(lo, hi mathutil.Vec3, width int) view {
	dx := math.Max(hi[0]-lo[0], 1e-6)
	dy := math.Max(hi[1]-lo[1], 1e-6)
	scale := float64(width) / dx
	return view{
		minX:  lo[0],
		maxY:  hi[1],
		scale: scale,
		w:     width,
		h:     max(1, int(math.Round(dy*scale))),
	}
}

// Render draws the world and the frame hints. Drawing is best-effort: a
// frame without hints still shows the terrain and props.
func Render(w *scene.World, hints session.RenderHints, opts Options) (*image.NRGBA, error) {
	size := opts.Size
	if size <= 0 {
		size = 512
	}
	ss := max(opts.Supersample, 1)

	lo, hi := viewBounds(w, hints, opts)
	v := newView(lo, hi, size*ss)

	bg := background(w, v)
	dc := gg.NewContextForImage(bg)
	defer dc.Close()

	lw := float64(ss)
	if err := drawProps(dc, w.Props(), v, lw); err != nil {
		return nil, err
	}
	if hints.HasFrame {
		if err := drawBrush(dc, hints, v, lw); err != nil {
			return nil, err
		}
	}

	img := toNRGBA(dc.Image())
	return Downsample(img, ss), nil
}

func viewBounds(w *scene.World, hints session.RenderHints, opts Options) (mathutil.Vec3, mathutil.Vec3) {
	if opts.Min != opts.Max {
		return opts.Min, opts.Max
	}
	if hf, ok := w.Terrain(); ok {
		return hf.Bounds()
	}
	c := hints.Frame.Origin
	r := math.Max(hints.Radius, 1) * 2
	return c.Sub(mathutil.Vec3{r, r, 0}), c.Add(mathutil.Vec3{r, r, 0})
}

// background hillshades the terrain, or fills a neutral grey without one.
func background(w *scene.World, v view) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, v.w, v.h))
	hf, ok := w.Terrain()
	if !ok {
		draw.Draw(img, img.Bounds(), image.NewUniform(color.NRGBA{96, 100, 104, 255}), image.Point{}, draw.Src)
		return img
	}

	lo, hi := hf.Bounds()
	span := math.Max(hi[2]-lo[2], 1e-6)
	lc := DefaultLightConfig()
	for py := 0; py < v.h; py++ {
		for px := 0; px < v.w; px++ {
			x, y := v.unproject(float64(px)+0.5, float64(py)+0.5)
			i := img.PixOffset(px, py)
			z, inside := hf.HeightAt(x, y)
			if !inside {
				img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = 40, 40, 44, 255
				continue
			}
			tint := elevationColor((z - lo[2]) / span)
			shade := lc.ComputeShade(hf.NormalAt(x, y))
			img.Pix[i] = toSRGB8(ACESTonemap(tint[0] * shade * 2))
			img.Pix[i+1] = toSRGB8(ACESTonemap(tint[1] * shade * 2))
			img.Pix[i+2] = toSRGB8(ACESTonemap(tint[2] * shade * 2))
			img.Pix[i+3] = 255
		}
	}
	return img
}

func drawProps(dc *gg.Context, props []*scene.Prop, v view, lw float64) error {
	for _, p := range props {
		x, y := v.project(p.Position)
		r := math.Max(p.Radius*v.scale, 2*lw)
		dc.SetRGBA(0.12, 0.1, 0.08, 0.85)
		dc.DrawCircle(x, y, r)
		if err := dc.FillPreserve(); err != nil {
			return fmt.Errorf("preview: prop fill: %w", err)
		}
		dc.SetRGBA(0.9, 0.85, 0.7, 0.9)
		dc.SetLineWidth(lw)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("preview: prop outline: %w", err)
		}

		// Lean: base to the projected top of the prop's axis.
		top := p.Transform().MulPoint(mathutil.Vec3{0, p.Height, 0})
		tx, ty := v.project(top)
		if math.Hypot(tx-x, ty-y) > lw {
			dc.DrawLine(x, y, tx, ty)
			if err := dc.Stroke(); err != nil {
				return fmt.Errorf("preview: prop lean: %w", err)
			}
		}
	}
	return nil
}

func drawBrush(dc *gg.Context, hints session.RenderHints, v view, lw float64) error {
	// Outline
	if len(hints.Boundary) > 1 {
		dc.SetRGBA(1, 1, 1, 0.9)
		dc.SetLineWidth(2 * lw)
		x, y := v.project(hints.Boundary[0])
		dc.MoveTo(x, y)
		for _, p := range hints.Boundary[1:] {
			x, y = v.project(p)
			dc.LineTo(x, y)
		}
		dc.ClosePath()
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("preview: outline: %w", err)
		}
	}

	// Tangent frame axes, one world unit long.
	f := hints.Frame
	axes := []struct {
		dir     mathutil.Vec3
		r, g, b float64
	}{
		{f.Tangent, 1, 0.2, 0.2},
		{f.Bitangent, 0.2, 1, 0.2},
		{f.Normal, 0.3, 0.5, 1},
	}
	ox, oy := v.project(f.Origin)
	for _, a := range axes {
		ex, ey := v.project(f.Origin.Add(a.dir))
		dc.SetRGB(a.r, a.g, a.b)
		dc.SetLineWidth(3 * lw)
		dc.DrawLine(ox, oy, ex, ey)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("preview: axes: %w", err)
		}
	}

	// Candidates
	for _, c := range hints.Candidates {
		x, y := v.project(c.Position)
		if c.Sample.Item == nil {
			// Placeholder: a small sphere with an up-axis tick.
			dc.SetRGB(1, 1, 1)
			dc.DrawCircle(x, y, 3*lw)
			if err := dc.Fill(); err != nil {
				return fmt.Errorf("preview: marker: %w", err)
			}
			ux, uy := v.project(c.Position.Add(c.Up()))
			dc.SetLineWidth(lw)
			dc.DrawLine(x, y, ux, uy)
			if err := dc.Stroke(); err != nil {
				return fmt.Errorf("preview: marker: %w", err)
			}
			continue
		}

		if c.Valid {
			dc.SetRGBA(0.2, 0.9, 0.35, 0.55)
		} else {
			dc.SetRGBA(0.95, 0.15, 0.15, 0.6)
		}
		dc.DrawCircle(x, y, math.Max(c.Sample.Item.Footprint*v.scale, 3*lw))
		if err := dc.Fill(); err != nil {
			return fmt.Errorf("preview: candidate: %w", err)
		}
		// Facing tick shows the random spin.
		fx, fy := v.project(c.Position.Add(c.Rotation.Rotate(mathutil.Vec3{0, 0, 1}).Scale(c.Sample.Item.Footprint)))
		dc.SetRGB(0.05, 0.05, 0.05)
		dc.SetLineWidth(lw)
		dc.DrawLine(x, y, fx, fy)
		if err := dc.Stroke(); err != nil {
			return fmt.Errorf("preview: candidate: %w", err)
		}
	}
	return nil
}

// toNRGBA converts any image to NRGBA format.
func toNRGBA(src image.Image) *image.NRGBA {
	if n, ok := src.(*image.NRGBA); ok {
		return n
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Encode writes img as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("preview: webp encode: %w", err)
	}
	return nil
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
