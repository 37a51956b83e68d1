package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"
	"math"
	"os"
	"path/filepath"

	xdraw "golang.org/x/image/draw"

	"cubefit/pkg/cube"
	"cubefit/pkg/geometry"
)

var (
	// DarkColour is used for the three faces hidden behind the cube
	DarkColour = color.RGBA{R: 100, G: 100, B: 100, A: 255}

	// LightColour is used for the three visible faces
	LightColour = color.RGBA{R: 255, G: 255, B: 255, A: 255}

	// MarkerColour is used for annotated points
	MarkerColour = color.RGBA{R: 0, G: 0, B: 255, A: 255}
)

const (
	lineWidth    = 4
	markerRadius = 5
)

// Viewer draws fitted cubes over an image for visual confirmation
type Viewer struct {
	canvas *image.RGBA
}

// NewViewer creates a viewer drawing on a copy of img
func NewViewer(img image.Image) *Viewer {
	b := img.Bounds()
	canvas := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Draw(canvas, canvas.Bounds(), img, b.Min, xdraw.Src)
	return &Viewer{canvas: canvas}
}

// Image returns the canvas
func (v *Viewer) Image() *image.RGBA {
	return v.canvas
}

// DrawCube draws the six faces of c, back faces first
func (v *Viewer) DrawCube(c *cube.Cube) {
	pts := c.ProjectedVertices()
	for _, f := range cube.Faces {
		col := LightColour
		if f.Shade == cube.Dark {
			col = DarkColour
		}
		for _, e := range f.Edges() {
			v.DrawLine(pts[e[0]], pts[e[1]], col)
		}
	}
}

// DrawMarkers marks each point with a filled disc
func (v *Viewer) DrawMarkers(points []geometry.Point2d) {
	r := markerRadius
	for _, p := range points {
		cx, cy := int(math.Round(p.X)), int(math.Round(p.Y))
		for dy := -r; dy <= r; dy++ {
			for dx := -r; dx <= r; dx++ {
				if dx*dx+dy*dy <= r*r {
					v.set(cx+dx, cy+dy, MarkerColour)
				}
			}
		}
	}
}

// DrawLine draws a line lineWidth pixels wide from a to b, stepping along
// the major axis one pixel at a time. The part outside the canvas is
// clipped away.
func (v *Viewer) DrawLine(a, b geometry.Point2d, col color.RGBA) {
	if !a.IsFinite() || !b.IsFinite() {
		return
	}
	a, b, ok := v.clip(a, b)
	if !ok {
		return
	}
	dx := b.X - a.X
	dy := b.Y - a.Y
	steps := math.Max(math.Abs(dx), math.Abs(dy))
	if steps == 0 {
		v.brush(int(a.X), int(a.Y), col)
		return
	}

	xInc := dx / steps
	yInc := dy / steps
	x, y := a.X, a.Y
	for i := 0; i <= int(steps); i++ {
		v.brush(int(math.Round(x)), int(math.Round(y)), col)
		x += xInc
		y += yInc
	}
}

// clip cuts the segment a-b to the canvas, widened by the brush, using the
// Liang-Barsky parametric test. ok is false when nothing of it is visible.
func (v *Viewer) clip(a, b geometry.Point2d) (geometry.Point2d, geometry.Point2d, bool) {
	bounds := v.canvas.Bounds()
	minX := float64(bounds.Min.X - lineWidth)
	minY := float64(bounds.Min.Y - lineWidth)
	maxX := float64(bounds.Max.X + lineWidth)
	maxY := float64(bounds.Max.Y + lineWidth)

	d := b.Sub(a)
	t0, t1 := 0.0, 1.0
	edges := [4][2]float64{
		{-d.X, a.X - minX},
		{d.X, maxX - a.X},
		{-d.Y, a.Y - minY},
		{d.Y, maxY - a.Y},
	}
	for _, e := range edges {
		p, q := e[0], e[1]
		if p == 0 {
			if q < 0 {
				return a, b, false
			}
			continue
		}
		r := q / p
		if p < 0 {
			if r > t1 {
				return a, b, false
			}
			t0 = math.Max(t0, r)
		} else {
			if r < t0 {
				return a, b, false
			}
			t1 = math.Min(t1, r)
		}
	}
	return a.Add(d.Scale(t0)), a.Add(d.Scale(t1)), true
}

func (v *Viewer) brush(x, y int, col color.RGBA) {
	lo := -(lineWidth / 2)
	for dy := lo; dy < lo+lineWidth; dy++ {
		for dx := lo; dx < lo+lineWidth; dx++ {
			v.set(x+dx, y+dy, col)
		}
	}
}

func (v *Viewer) set(x, y int, col color.RGBA) {
	if (image.Point{X: x, Y: y}).In(v.canvas.Bounds()) {
		v.canvas.SetRGBA(x, y, col)
	}
}

// Save saves the canvas as a JPEG image
func (v *Viewer) Save(filename string) error {
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return err
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return jpeg.Encode(file, v.canvas, &jpeg.Options{Quality: 90})
}

// LoadImage loads a JPEG or PNG image from a file
func LoadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	return img, nil
}

// Resize scales img to width x height. Annotations are taken against the
// resized image.
func Resize(img image.Image, width, height int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}
