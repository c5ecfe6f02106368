package advanced

import (
	"io"
	"math"

	"github.com/fogleman/gg"
)

// Padding around the drawing, in pixels
const drawPadding = 40

// Drawing renders visual field geometry to a PNG: the sub-mesh wireframe, and
// any traced subpaths and contours on top of it. It is meant for debugging and
// for the command line tool.
type Drawing struct {
	Sub      *SubMesh
	Subpaths []Subpath
	Contours []Isocontour
	// Pixels per unit of visual field. Zero picks a scale that makes the
	// drawing about 800 pixels across.
	Scale float64
}

func (d *Drawing) bounds() (minX, minY, maxX, maxY float64) {
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	extend := func(p Point) {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	if d.Sub != nil {
		for _, p := range d.Sub.Visual {
			extend(p)
		}
	}
	for _, sp := range d.Subpaths {
		for _, p := range sp.Visual {
			extend(p)
		}
	}
	for _, c := range d.Contours {
		for _, p := range c.Visual {
			extend(p)
		}
	}
	if math.IsInf(minX, 1) {
		return 0, 0, 1, 1
	}
	return minX, minY, maxX, maxY
}

func (d *Drawing) context() *gg.Context {
	minX, minY, maxX, maxY := d.bounds()
	scale := d.Scale
	if scale <= 0 {
		scale = 800 / math.Max(math.Max(maxX-minX, maxY-minY), Tolerance)
	}

	width := int(scale*(maxX-minX)) + drawPadding*2
	height := int(scale*(maxY-minY)) + drawPadding*2
	c := gg.NewContext(width, height)
	c.SetRGB(0, 0, 0)
	c.DrawRectangle(0, 0, float64(width), float64(height))
	c.Fill()

	// Flip the context so the origin is at the bottom left
	c.Translate(0, float64(height))
	c.Scale(1, -1)
	c.Translate(drawPadding, drawPadding)
	c.Scale(scale, scale)
	c.Translate(-minX, -minY)

	// Line widths are in user space, so undo the scale
	unit := 1 / scale

	if d.Sub != nil {
		c.SetLineWidth(unit)
		c.SetRGB(0.3, 0.3, 0.3)
		for fi := range d.Sub.Faces {
			tri := d.Sub.VisualTriangle(fi)
			c.MoveTo(tri.A.X, tri.A.Y)
			c.LineTo(tri.B.X, tri.B.Y)
			c.LineTo(tri.C.X, tri.C.Y)
			c.ClosePath()
		}
		c.Stroke()
	}

	c.SetLineWidth(3 * unit)
	c.SetRGB(0, 1, 1)
	for _, sp := range d.Subpaths {
		polyline(c, sp.Visual)
	}
	c.SetRGB(1, 0.6, 0)
	for _, contour := range d.Contours {
		polyline(c, contour.Visual)
	}
	return c
}

func polyline(c *gg.Context, points []Point) {
	if len(points) < 2 {
		return
	}
	c.MoveTo(points[0].X, points[0].Y)
	for _, p := range points[1:] {
		c.LineTo(p.X, p.Y)
	}
	c.Stroke()
}

func (d *Drawing) EncodePNG(w io.Writer) error {
	return d.context().EncodePNG(w)
}

func (d *Drawing) SavePNG(path string) error {
	return d.context().SavePNG(path)
}
