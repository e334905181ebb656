package imagepkg

import (
	"fmt"
	"image"
	"image/draw"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontSource identifies where the card fonts came from.
type FontSource int

const (
	SourceConfigured FontSource = iota // TrueType file from configuration
	SourceEmbedded                     // Go Regular, compiled into the binary
	SourceBasic                        // basicfont.Face7x13, fixed size
)

func (s FontSource) String() string {
	switch s {
	case SourceConfigured:
		return "configured"
	case SourceEmbedded:
		return "embedded"
	default:
		return "basic"
	}
}

// FontResolver picks the font used for invitation text once and hands out
// sized faces for each render.
//
// A parsed *opentype.Font may be shared between goroutines, the faces built
// from it may not, so callers get a fresh FontSet per card.
type FontResolver struct {
	font   *opentype.Font
	source FontSource
	path   string
	reason error
}

// NewFontResolver tries the TrueType/OpenType file at path first. If path is
// empty or the file cannot be read or parsed, the embedded Go Regular font is
// used instead; FallbackReason reports why.
func NewFontResolver(path string) *FontResolver {
	r := &FontResolver{path: path}
	if path != "" {
		f, err := loadFontFile(path)
		if err == nil {
			r.font, r.source = f, SourceConfigured
			return r
		}
		r.reason = err
	} else {
		r.reason = fmt.Errorf("font: no font path configured")
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		r.source = SourceBasic
		r.reason = fmt.Errorf("font: parse embedded font: %w", err)
		return r
	}
	r.font, r.source = f, SourceEmbedded
	return r
}

func loadFontFile(path string) (*opentype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("font: read %s: %w", path, err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("font: parse %s: %w", path, err)
	}
	return f, nil
}

// Source reports which tier the resolver settled on.
func (r *FontResolver) Source() FontSource { return r.source }

// Path is the configured font path, whether or not it was usable.
func (r *FontResolver) Path() string { return r.path }

// FallbackReason is nil when the configured font is in use.
func (r *FontResolver) FallbackReason() error { return r.reason }

// FontSet is the pair of faces used on one card.
type FontSet struct {
	Title  font.Face
	Body   font.Face
	Source FontSource
}

// Close releases both faces.
func (fs FontSet) Close() error {
	err := fs.Title.Close()
	if berr := fs.Body.Close(); err == nil {
		err = berr
	}
	return err
}

// Faces returns title and body faces at the given pixel sizes. Any failure to
// build a sized face degrades both faces to basicfont.
func (r *FontResolver) Faces(titleSize, bodySize float64) FontSet {
	basic := FontSet{Title: basicfont.Face7x13, Body: basicfont.Face7x13, Source: SourceBasic}
	if r.font == nil {
		return basic
	}
	title, err := newFace(r.font, titleSize)
	if err != nil {
		return basic
	}
	body, err := newFace(r.font, bodySize)
	if err != nil {
		title.Close()
		return basic
	}
	return FontSet{Title: title, Body: body, Source: r.source}
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	if size <= 0 {
		return nil, fmt.Errorf("font: invalid size %v", size)
	}
	// 72 DPI makes Size a pixel size.
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// drawText draws s in black with its top-left corner at (x, y).
func drawText(dst draw.Image, face font.Face, x, y int, s string) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.Black,
		Face: face,
		Dot:  fixed.P(x, y+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(s)
}
