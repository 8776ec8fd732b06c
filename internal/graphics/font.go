package graphics

import (
	"fmt"
	"image"
	"image/draw"
	"math"

	"mini-render/internal/assets"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Glyph describes a single character's placement and metrics within the atlas
type Glyph struct {
	// Pixel coordinates of the glyph in the atlas texture (top-left origin)
	AtlasX, AtlasY int
	// Glyph bitmap size in pixels
	Width, Height int
	// Bearing (offset from the pen position to the bitmap's top-left) in pixels
	BearingX, BearingY int
	// Advance in pixels, rounded from 26.6
	Advance int
}

// FontAtlas is a baked ASCII glyph set. Texture is white RGBA with the glyph
// coverage in alpha, stored top row first.
type FontAtlas struct {
	Texture    *assets.Texture
	Glyphs     map[rune]Glyph
	LineHeight int
}

const (
	atlasWidth   = 256
	glyphPadding = 1
	firstRune    = rune(32)
	lastRune     = rune(126)
)

// BuildFontAtlas parses a TrueType/OpenType font and bakes printable ASCII at
// the given pixel size.
func BuildFontAtlas(name string, fontData []byte, pixels int) (*FontAtlas, error) {
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: float64(pixels), DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	defer func() { _ = face.Close() }()

	// First pass: measure the packed height
	rowH := 0
	for r := firstRune; r <= lastRune; r++ {
		dr, _, _, _, ok := face.Glyph(fixed.P(0, 0), r)
		if ok && dr.Dy() > rowH {
			rowH = dr.Dy()
		}
	}
	if rowH == 0 {
		rowH = pixels
	}
	rowH += glyphPadding

	x, rows := 0, 1
	for r := firstRune; r <= lastRune; r++ {
		dr, _, _, _, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok || dr.Dx() == 0 {
			continue
		}
		if x+dr.Dx()+glyphPadding > atlasWidth {
			x = 0
			rows++
		}
		x += dr.Dx() + glyphPadding
	}
	atlasHeight := nextPowerOfTwo(rows * rowH)

	// Second pass: render each glyph into the atlas and record metrics
	canvas := image.NewAlpha(image.Rect(0, 0, atlasWidth, atlasHeight))
	glyphs := make(map[rune]Glyph, int(lastRune-firstRune)+1)
	x, y := 0, 0
	for r := firstRune; r <= lastRune; r++ {
		dr, mask, maskp, advance, ok := face.Glyph(fixed.P(0, 0), r)
		if !ok {
			continue
		}
		g := Glyph{
			BearingX: dr.Min.X,
			BearingY: -dr.Min.Y,
			Advance:  int(math.Round(float64(advance) / 64.0)),
		}
		if dr.Dx() > 0 && dr.Dy() > 0 {
			if x+dr.Dx()+glyphPadding > atlasWidth {
				x = 0
				y += rowH
			}
			draw.Draw(canvas, image.Rect(x, y, x+dr.Dx(), y+dr.Dy()), mask, maskp, draw.Src)
			g.AtlasX, g.AtlasY = x, y
			g.Width, g.Height = dr.Dx(), dr.Dy()
			x += dr.Dx() + glyphPadding
		}
		glyphs[r] = g
	}

	pix := make([]byte, 4*atlasWidth*atlasHeight)
	for i, a := range canvas.Pix {
		pix[4*i], pix[4*i+1], pix[4*i+2], pix[4*i+3] = 0xff, 0xff, 0xff, a
	}

	return &FontAtlas{
		Texture:    &assets.Texture{Name: name, Width: atlasWidth, Height: atlasHeight, Pixels: pix},
		Glyphs:     glyphs,
		LineHeight: face.Metrics().Height.Round(),
	}, nil
}

func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// Measure returns the width and tallest glyph height of text in pixels.
func (a *FontAtlas) Measure(text string, scale float32) (float32, float32) {
	var width, maxH float32
	for _, r := range text {
		g, ok := a.Glyphs[r]
		if !ok {
			g = a.Glyphs[' ']
		}
		width += float32(g.Advance) * scale
		if h := float32(g.Height) * scale; h > maxH {
			maxH = h
		}
	}
	return width, maxH
}

// Layout builds one quad per visible glyph, lines stacked downwards from
// (x, y) where y is the first baseline. Coordinates are pixels with the
// origin at the top left.
func (a *FontAtlas) Layout(lines []string, x, y, scale float32) *assets.Mesh {
	m := &assets.Mesh{Name: "text"}
	aw, ah := float32(a.Texture.Width), float32(a.Texture.Height)
	step := float32(a.LineHeight) * scale

	for _, line := range lines {
		pen := x
		for _, r := range line {
			g, ok := a.Glyphs[r]
			if !ok {
				pen += float32(a.Glyphs[' '].Advance) * scale
				continue
			}
			if g.Width > 0 && g.Height > 0 {
				x0 := pen + float32(g.BearingX)*scale
				y0 := y - float32(g.BearingY)*scale
				x1 := x0 + float32(g.Width)*scale
				y1 := y0 + float32(g.Height)*scale
				u0, v0 := float32(g.AtlasX)/aw, float32(g.AtlasY)/ah
				u1, v1 := float32(g.AtlasX+g.Width)/aw, float32(g.AtlasY+g.Height)/ah

				base := uint32(m.VertexCount())
				m.Positions = append(m.Positions, x0, y0, 0, x1, y0, 0, x1, y1, 0, x0, y1, 0)
				m.Normals = append(m.Normals, 0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1)
				m.TexCoords = append(m.TexCoords, u0, v0, u1, v0, u1, v1, u0, v1)
				m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
			}
			pen += float32(g.Advance) * scale
		}
		y += step
	}
	return m
}
