// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpupresent

import (
	"errors"
	"fmt"

	"github.com/gogpu/gpucontext"
)

// Rendering errors.
var (
	// ErrInvalidTexture is returned when the created texture does not
	// implement gpucontext.Texture.
	ErrInvalidTexture = errors.New("gpupresent: texture must implement gpucontext.Texture")

	// ErrInvalidRenderer is returned when the draw context has no
	// gpucontext.TextureCreator.
	ErrInvalidRenderer = errors.New("gpupresent: draw context has no TextureCreator")
)

// RenderTo uploads the frame if needed and draws it at (0, 0).
//
//	app.OnDraw(func(dc *gogpu.Context) {
//	    p.Compose(comp)
//	    p.RenderTo(dc.AsTextureDrawer())
//	})
func (p *Presenter) RenderTo(dc gpucontext.TextureDrawer) error {
	return p.RenderToPosition(dc, 0, 0)
}

// RenderToPosition is like RenderTo but draws the frame at (x, y).
func (p *Presenter) RenderToPosition(dc gpucontext.TextureDrawer, x, y float32) error {
	if p.closed {
		return ErrClosed
	}

	tex, err := p.Flush()
	if err != nil {
		return err
	}

	if pending, isPending := tex.(*pendingTexture); isPending {
		creator := dc.TextureCreator()
		if creator == nil {
			return ErrInvalidRenderer
		}

		// NewTextureFromRGBA waits for the GPU, so the old texture is no
		// longer in use once it returns.
		realTex, err := creator.NewTextureFromRGBA(pending.width, pending.height, pending.data)
		if err != nil {
			return fmt.Errorf("gpupresent: NewTextureFromRGBA failed: %w", err)
		}

		// Frame data is premultiplied alpha.
		if pt, ok := realTex.(interface{ SetPremultiplied(bool) }); ok {
			pt.SetPremultiplied(true)
		}

		p.texture = realTex
		tex = realTex

		destroy(p.oldTexture)
		p.oldTexture = nil
	}

	gpuTex, ok := tex.(gpucontext.Texture)
	if !ok {
		return ErrInvalidTexture
	}
	return dc.DrawTexture(gpuTex, x, y)
}
