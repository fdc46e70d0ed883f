package tracing

import (
	"image"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// capSegments is the number of sides of the polygon used for round stroke caps
const capSegments = 16

// Point is a canvas coordinate in pixels
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Stroke is one continuous pen movement
type Stroke []Point

// RenderReference rasterizes the glyph centred on a w×h canvas
func (v *Validator) RenderReference(glyph string, w, h int) (*image.Alpha, error) {
	face, err := newFace(v.font, float64(h)*v.cfg.GlyphScale)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	bounds, _ := font.BoundString(face, glyph)

	// Центрируем видимую часть глифа, а не его advance
	cx := (bounds.Min.X + bounds.Max.X) / 2
	cy := (bounds.Min.Y + bounds.Max.Y) / 2
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Opaque,
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(w)/2 - cx, Y: fixed.I(h)/2 - cy},
	}
	d.DrawString(glyph)
	return dst, nil
}

// RenderStrokes rasterizes the user's strokes with round joins and caps
func RenderStrokes(strokes []Stroke, w, h int, lineWidth float64) *image.Alpha {
	dst := image.NewAlpha(image.Rect(0, 0, w, h))
	if len(strokes) == 0 {
		return dst
	}
	half := lineWidth / 2
	z := vector.NewRasterizer(w, h)
	for _, s := range strokes {
		for i, p := range s {
			addDisc(z, p, half)
			if i > 0 {
				addSegment(z, s[i-1], p, half)
			}
		}
	}
	z.Draw(dst, dst.Bounds(), image.Opaque, image.Point{})
	return dst
}

// Polygons are all added counter-clockwise so overlapping shapes accumulate instead of cancelling.
func addPolygon(z *vector.Rasterizer, pts []Point) {
	if signedArea(pts) < 0 {
		for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
			pts[i], pts[j] = pts[j], pts[i]
		}
	}
	z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		z.LineTo(float32(p.X), float32(p.Y))
	}
	z.ClosePath()
}

func addDisc(z *vector.Rasterizer, c Point, r float64) {
	pts := make([]Point, capSegments)
	for i := range pts {
		a := 2 * math.Pi * float64(i) / capSegments
		pts[i] = Point{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	addPolygon(z, pts)
}

func addSegment(z *vector.Rasterizer, a, b Point, r float64) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return
	}
	nx, ny := -dy/l*r, dx/l*r
	addPolygon(z, []Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	})
}

func signedArea(pts []Point) float64 {
	var sum float64
	for i := range pts {
		j := (i + 1) % len(pts)
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum / 2
}

// CollectPixels returns the coordinates whose alpha is above threshold
func CollectPixels(img *image.Alpha, threshold uint8) []image.Point {
	b := img.Bounds()
	var pts []image.Point
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.AlphaAt(x, y).A > threshold {
				pts = append(pts, image.Point{X: x, Y: y})
			}
		}
	}
	return pts
}

// ToleranceZone marks every pixel within radius of a reference pixel
func ToleranceZone(ref []image.Point, w, h, radius int) []bool {
	zone := make([]bool, w*h)
	var offsets []image.Point
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			if dx*dx+dy*dy <= radius*radius {
				offsets = append(offsets, image.Point{X: dx, Y: dy})
			}
		}
	}
	for _, p := range ref {
		for _, o := range offsets {
			x, y := p.X+o.X, p.Y+o.Y
			if x < 0 || y < 0 || x >= w || y >= h {
				continue
			}
			zone[y*w+x] = true
		}
	}
	return zone
}
