package graphics

import (
	"fmt"

	"mini-render/internal/assets"
	"mini-render/internal/gpu"
)

var modelTextureParams = gpu.TextureParams{
	MinFilter: gpu.LinearMipmapNearest,
	MagFilter: gpu.Linear,
	WrapS:     gpu.Repeat,
	WrapT:     gpu.Repeat,
}

var atlasTextureParams = gpu.TextureParams{
	MinFilter: gpu.Nearest,
	MagFilter: gpu.Nearest,
	WrapS:     gpu.ClampToEdge,
	WrapT:     gpu.ClampToEdge,
}

// UploadTexture copies decoded RGBA pixels into a new mipmapped texture.
func UploadTexture(dev gpu.Device, t *assets.Texture) (uint32, error) {
	return upload(dev, t, modelTextureParams, true)
}

// UploadAtlas uploads t unfiltered and without mipmaps, for pixel-exact
// lookups such as glyphs.
func UploadAtlas(dev gpu.Device, t *assets.Texture) (uint32, error) {
	return upload(dev, t, atlasTextureParams, false)
}

func upload(dev gpu.Device, t *assets.Texture, params gpu.TextureParams, mipmap bool) (uint32, error) {
	if t.Width <= 0 || t.Height <= 0 || len(t.Pixels) != t.Width*t.Height*4 {
		return 0, fmt.Errorf("texture %s: %dx%d does not match %d bytes of RGBA", t.Name, t.Width, t.Height, len(t.Pixels))
	}

	tex := dev.CreateTexture()
	dev.BindTexture(tex)
	dev.TexParameters(params)
	dev.TexImage2D(gpu.RGBA8, t.Width, t.Height, t.Pixels)
	if mipmap {
		dev.GenerateMipmap()
	}
	dev.BindTexture(0)
	return tex, nil
}
