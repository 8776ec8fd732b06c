package assets

import (
	"fmt"
	"image"
	"io"

	// Decoders for the formats textures may be authored in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	xdraw "golang.org/x/image/draw"
)

// Texture is decoded RGBA8 pixel data with the first row at the bottom,
// ready for upload.
type Texture struct {
	Name   string
	Width  int
	Height int
	Pixels []byte
}

// DecodeTexture decodes any registered image format and flips it vertically.
func DecodeTexture(name string, r io.Reader) (*Texture, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("assets: decode texture %s: %w", name, err)
	}

	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("assets: texture %s (%s) is empty", name, format)
	}
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(rgba, image.Point{}, img, b, xdraw.Src, nil)

	return &Texture{
		Name:   name,
		Width:  b.Dx(),
		Height: b.Dy(),
		Pixels: flipRows(rgba.Pix, rgba.Stride, b.Dy()),
	}, nil
}

// WhiteTexture is a 1x1 opaque white texture for untextured models.
func WhiteTexture(name string) *Texture {
	return &Texture{Name: name, Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}}
}

func flipRows(pix []byte, stride, rows int) []byte {
	out := make([]byte, len(pix))
	for y := 0; y < rows; y++ {
		copy(out[(rows-1-y)*stride:(rows-y)*stride], pix[y*stride:(y+1)*stride])
	}
	return out
}
