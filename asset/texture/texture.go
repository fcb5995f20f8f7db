package texture

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"math"

	"github.com/achilleasa/emissive/asset"
	"github.com/achilleasa/emissive/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

type Format uint32

const (
	// 8-bit per channel sources; assumed to be sRGB encoded.
	Srgb8 Format = iota

	// 16-bit per channel sources; assumed to be linear.
	Linear16
)

// A decoded texture. Texels are stored as linear RGBA in row-major order.
type Texture struct {
	Format Format

	Width  uint32
	Height uint32

	Data []types.Vec4
}

// Create a new texture from a Resource. PNG, JPEG, BMP and TIFF encoded
// images are supported.
func New(res *asset.Resource) (*Texture, error) {
	img, _, err := image.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("texture: could not decode %s: %s", res.Path(), err.Error())
	}

	return FromImage(img), nil
}

// Create a texture from a decoded image.
func FromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	tex := &Texture{
		Format: formatOf(img.ColorModel()),
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
	}
	tex.Data = make([]types.Vec4, int(tex.Width)*int(tex.Height))

	offset := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			texel := types.XYZW(
				float32(c.R)/0xffff,
				float32(c.G)/0xffff,
				float32(c.B)/0xffff,
				float32(c.A)/0xffff,
			)
			if tex.Format == Srgb8 {
				texel[0] = srgbToLinear(texel[0])
				texel[1] = srgbToLinear(texel[1])
				texel[2] = srgbToLinear(texel[2])
			}
			tex.Data[offset] = texel
			offset++
		}
	}

	return tex
}

// Fetch a texel using wrap addressing.
func (t *Texture) Texel(x, y int) types.Vec4 {
	w, h := int(t.Width), int(t.Height)
	x %= w
	if x < 0 {
		x += w
	}
	y %= h
	if y < 0 {
		y += h
	}
	return t.Data[y*w+x]
}

func formatOf(model color.Model) Format {
	switch model {
	case color.RGBA64Model, color.NRGBA64Model, color.Gray16Model:
		return Linear16
	}
	return Srgb8
}

func srgbToLinear(v float32) float32 {
	if v <= 0.04045 {
		return v / 12.92
	}
	return float32(math.Pow(float64(v+0.055)/1.055, 2.4))
}
