package gloo

import (
	"fmt"
	"image"
	"image/draw"
	"log/slog"
)

// Texture2D is a 2D RGBA texture. It implements [Binder], so it can be
// set directly as the data of a sampler uniform: on program activation
// the texture is bound to the uniform's assigned texture unit.
type Texture2D struct {
	GLObject

	width  int
	height int
	pixels []byte
}

// NewTexture2D builds a texture from an image, converting to RGBA.
func NewTexture2D(img image.Image, opts ...Option) (*Texture2D, error) {
	if img == nil {
		return nil, fmt.Errorf("gloo: texture needs an image")
	}
	bounds := img.Bounds()
	if bounds.Empty() {
		return nil, fmt.Errorf("gloo: texture image is empty")
	}
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != 4*bounds.Dx() {
		converted := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(converted, converted.Bounds(), img, bounds.Min, draw.Src)
		rgba = converted
	}
	cfg := buildConfig(opts)
	t := &Texture2D{
		width:  bounds.Dx(),
		height: bounds.Dy(),
		pixels: rgba.Pix,
	}
	t.setDriver(cfg.driver)
	t.markDirty()
	return t, nil
}

// Width returns the texture width in pixels.
func (t *Texture2D) Width() int { return t.width }

// Height returns the texture height in pixels.
func (t *Texture2D) Height() int { return t.height }

// SetImage replaces the texture contents. Dimensions may change; the
// native texture re-uploads on next bind.
func (t *Texture2D) SetImage(img image.Image) error {
	next, err := NewTexture2D(img)
	if err != nil {
		return err
	}
	t.width, t.height, t.pixels = next.width, next.height, next.pixels
	t.markDirty()
	return nil
}

// Bind makes the texture current on the given unit, creating and
// uploading the native texture as needed. Implements [Binder].
func (t *Texture2D) Bind(unit int) error {
	drv := t.Driver()
	drv.ActiveTexture(unit)
	if err := t.ensureReady(t); err != nil {
		return err
	}
	drv.BindTexture(t.handle)
	return nil
}

// Delete releases the native texture. Idempotent.
func (t *Texture2D) Delete() {
	t.release(t)
}

func (t *Texture2D) create() error {
	logger().Debug("gpu: creating texture", slog.Int("width", t.width), slog.Int("height", t.height))
	h, err := t.Driver().CreateTexture()
	if err != nil {
		return fmt.Errorf("gloo: creating texture: %w", err)
	}
	t.handle = h
	return nil
}

func (t *Texture2D) update() error {
	drv := t.Driver()
	drv.BindTexture(t.handle)
	drv.TexImage2D(t.width, t.height, t.pixels)
	return nil
}

func (t *Texture2D) destroy() {
	t.Driver().DeleteTexture(t.handle)
}
