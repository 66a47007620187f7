package asset

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Texture is an uncompressed RGBA8 image.
type Texture struct {
	Width  uint32
	Height uint32
	Pixels []byte
}

// White returns a 1x1 opaque white texture used to fill unset material slots.
func White() *Texture {
	return &Texture{Width: 1, Height: 1, Pixels: []byte{255, 255, 255, 255}}
}

// Checker generates a two-tone checkerboard texture with cells of cellSize pixels.
func Checker(size, cellSize uint32, a, b [4]byte) (*Texture, error) {
	if size == 0 || cellSize == 0 {
		return nil, fmt.Errorf("asset: invalid checker texture dimensions %d/%d", size, cellSize)
	}

	tex := &Texture{Width: size, Height: size, Pixels: make([]byte, 4*size*size)}
	for y := uint32(0); y < size; y++ {
		for x := uint32(0); x < size; x++ {
			c := a
			if (x/cellSize+y/cellSize)%2 == 1 {
				c = b
			}
			copy(tex.Pixels[4*(y*size+x):], c[:])
		}
	}
	return tex, nil
}

// LoadTexture decodes a png, jpeg, bmp, tiff or webp image from a local or
// remote location and converts it to RGBA8.
func LoadTexture(ctx context.Context, location string) (*Texture, error) {
	src, err := OpenSource(ctx, location)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	img, format, err := image.Decode(src)
	if err != nil {
		return nil, fmt.Errorf("asset: could not decode texture %s: %w", src.Location(), err)
	}

	tex := NewTexture(img)
	if tex.Width == 0 || tex.Height == 0 {
		return nil, fmt.Errorf("asset: texture %s (%s) has no pixels", src.Location(), format)
	}
	return tex, nil
}

// NewTexture converts an image to an RGBA8 texture.
func NewTexture(img image.Image) *Texture {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() || bounds.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &Texture{
		Width:  uint32(bounds.Dx()),
		Height: uint32(bounds.Dy()),
		Pixels: rgba.Pix,
	}
}
