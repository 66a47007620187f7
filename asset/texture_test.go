package asset

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func TestChecker(t *testing.T) {
	black := [4]byte{0, 0, 0, 255}
	white := [4]byte{255, 255, 255, 255}

	tex, err := Checker(4, 2, black, white)
	if err != nil {
		t.Fatal(err)
	}

	type spec struct {
		x, y uint32
		exp  [4]byte
	}
	specs := []spec{
		{0, 0, black},
		{1, 1, black},
		{2, 0, white},
		{0, 2, white},
		{3, 3, black},
	}
	for index, s := range specs {
		offset := 4 * (s.y*tex.Width + s.x)
		var got [4]byte
		copy(got[:], tex.Pixels[offset:offset+4])
		if got != s.exp {
			t.Fatalf("[spec %d] expected pixel (%d, %d) to be %v; got %v", index, s.x, s.y, s.exp, got)
		}
	}

	if _, err = Checker(0, 2, black, white); err == nil {
		t.Fatal("expected an error for a zero-sized checker texture")
	}
}

func TestLoadTexture(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	img.Set(1, 0, color.NRGBA{0, 0, 255, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "tex.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	tex, err := LoadTexture(context.Background(), path)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("expected tex dims to be 2x1; got %dx%d", tex.Width, tex.Height)
	}

	exp := []byte{255, 0, 0, 255, 0, 0, 255, 255}
	if !bytes.Equal(tex.Pixels, exp) {
		t.Fatalf("expected pixels %v; got %v", exp, tex.Pixels)
	}
}

func TestLoadTextureDecodeError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tex.png")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadTexture(context.Background(), path); err == nil {
		t.Fatal("expected a decode error")
	}
}
