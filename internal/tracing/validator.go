// Package tracing checks a learner's traced character against the reference glyph
// by comparing inked pixel sets with a tolerance zone around the reference.
package tracing

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"

	"golang.org/x/image/font/sfnt"
)

// Feedback strings shown by the tracing widget
const (
	FeedbackEmpty    = "Draw something first!"
	FeedbackAccepted = "Great job! That looks right."
	FeedbackRejected = "Not quite. Try following the outline more closely."
)

// ErrEmptyReference is returned when the glyph renders no pixels, e.g. the font lacks it
var ErrEmptyReference = errors.New("reference glyph rendered no pixels")

// ErrInvalidCanvas is returned for attempts with an unusable canvas size,
// coordinates far outside the canvas or too many points
var ErrInvalidCanvas = errors.New("invalid canvas")

// Config holds the validator's fixed thresholds
type Config struct {
	AlphaThreshold   uint8   // Pixels with alpha above this count as inked
	ToleranceRadius  int     // Dilation radius of the reference in pixels
	MinMatch         float64 // Share of user pixels that must be on or near the reference
	MinCoverage      float64 // Matched user pixels relative to reference pixels
	GlyphScale       float64 // Font size as a fraction of canvas height
	DefaultLineWidth float64
	MaxLineWidth     float64
	MaxCanvas        int
	MaxPoints        int // Total over all strokes
}

// DefaultConfig returns the thresholds used by the tracing widget
func DefaultConfig() Config {
	return Config{
		AlphaThreshold:   30,
		ToleranceRadius:  8,
		MinMatch:         0.60,
		MinCoverage:      0.35,
		GlyphScale:       0.7,
		DefaultLineWidth: 12,
		MaxLineWidth:     64,
		MaxCanvas:        1024,
		MaxPoints:        5000,
	}
}

// Attempt is what the tracing canvas submits
type Attempt struct {
	Width     int      `json:"width"`
	Height    int      `json:"height"`
	LineWidth float64  `json:"line_width"`
	Strokes   []Stroke `json:"strokes"`
}

// Result is the validator's verdict
type Result struct {
	Accepted        bool    `json:"accepted"`
	Match           float64 `json:"match"`
	Coverage        float64 `json:"coverage"`
	UserPixels      int     `json:"user_pixels"`
	ReferencePixels int     `json:"reference_pixels"`
	Feedback        string  `json:"feedback"`
}

// Empty reports whether nothing was drawn
func (r Result) Empty() bool {
	return r.UserPixels == 0
}

// Validator renders reference glyphs and compares them with attempts
type Validator struct {
	font *sfnt.Font
	cfg  Config
}

// NewValidator creates a validator rendering glyphs with the given font
func NewValidator(f *sfnt.Font, cfg Config) *Validator {
	return &Validator{font: f, cfg: cfg}
}

// Validate compares the attempt with the glyph rendered at the same canvas size
func (v *Validator) Validate(ctx context.Context, glyph string, attempt Attempt) (Result, error) {
	if err := v.checkCanvas(attempt); err != nil {
		return Result{}, err
	}
	if len(attempt.Strokes) == 0 {
		return Result{Feedback: FeedbackEmpty}, nil
	}
	lineWidth := attempt.LineWidth
	if lineWidth <= 0 {
		lineWidth = v.cfg.DefaultLineWidth
	}

	ref, err := v.RenderReference(glyph, attempt.Width, attempt.Height)
	if err != nil {
		return Result{}, fmt.Errorf("failed to render reference %q: %w", glyph, err)
	}
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	user := RenderStrokes(attempt.Strokes, attempt.Width, attempt.Height, lineWidth)
	return v.Compare(ref, user)
}

// Compare applies the overlay rules to two rendered canvases of equal size
func (v *Validator) Compare(ref, user *image.Alpha) (Result, error) {
	if ref.Bounds() != user.Bounds() {
		return Result{}, fmt.Errorf("canvas size mismatch: %v vs %v", ref.Bounds(), user.Bounds())
	}
	refPixels := CollectPixels(ref, v.cfg.AlphaThreshold)
	userPixels := CollectPixels(user, v.cfg.AlphaThreshold)

	res := Result{UserPixels: len(userPixels), ReferencePixels: len(refPixels)}
	if len(userPixels) == 0 {
		res.Feedback = FeedbackEmpty
		return res, nil
	}
	if len(refPixels) == 0 {
		return res, ErrEmptyReference
	}

	w, h := ref.Bounds().Dx(), ref.Bounds().Dy()
	origin := ref.Bounds().Min
	zone := ToleranceZone(shift(refPixels, origin), w, h, v.cfg.ToleranceRadius)

	onRef := 0
	for _, p := range shift(userPixels, origin) {
		if zone[p.Y*w+p.X] {
			onRef++
		}
	}

	res.Match = float64(onRef) / float64(len(userPixels))
	res.Coverage = float64(onRef) / float64(len(refPixels))
	res.Accepted = v.Accept(res.Match, res.Coverage)
	if res.Accepted {
		res.Feedback = FeedbackAccepted
	} else {
		res.Feedback = FeedbackRejected
	}
	return res, nil
}

// Accept requires both thresholds at once
func (v *Validator) Accept(match, coverage float64) bool {
	return match >= v.cfg.MinMatch && coverage >= v.cfg.MinCoverage
}

func (v *Validator) checkCanvas(a Attempt) error {
	if a.Width <= 0 || a.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidCanvas, a.Width, a.Height)
	}
	if a.Width > v.cfg.MaxCanvas || a.Height > v.cfg.MaxCanvas {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidCanvas, a.Width, a.Height, v.cfg.MaxCanvas)
	}
	if !finite(a.LineWidth) || a.LineWidth > v.cfg.MaxLineWidth {
		return fmt.Errorf("%w: line width %v", ErrInvalidCanvas, a.LineWidth)
	}

	// Точки допускаются не дальше одного размера холста за его краем
	w, h := float64(a.Width), float64(a.Height)
	points := 0
	for _, stroke := range a.Strokes {
		points += len(stroke)
		if points > v.cfg.MaxPoints {
			return fmt.Errorf("%w: more than %d points", ErrInvalidCanvas, v.cfg.MaxPoints)
		}
		for _, p := range stroke {
			if !finite(p.X) || !finite(p.Y) || p.X < -w || p.X > 2*w || p.Y < -h || p.Y > 2*h {
				return fmt.Errorf("%w: point (%v, %v) outside %dx%d", ErrInvalidCanvas, p.X, p.Y, a.Width, a.Height)
			}
		}
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func shift(pts []image.Point, origin image.Point) []image.Point {
	if origin == (image.Point{}) {
		return pts
	}
	out := make([]image.Point, len(pts))
	for i, p := range pts {
		out[i] = p.Sub(origin)
	}
	return out
}
