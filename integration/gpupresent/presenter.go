// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpupresent

import (
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/layered"
)

// Common errors returned by Presenter operations.
var (
	// ErrClosed is returned when operations are attempted on a closed presenter.
	ErrClosed = errors.New("gpupresent: presenter is closed")

	// ErrInvalidDimensions is returned when width or height is invalid.
	ErrInvalidDimensions = errors.New("gpupresent: invalid dimensions")

	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("gpupresent: nil DeviceProvider")

	// ErrNilCompositor is returned when Compose is called without a compositor.
	ErrNilCompositor = errors.New("gpupresent: nil compositor")
)

// textureDestroyer matches the gogpu.Texture.Destroy signature.
type textureDestroyer interface {
	Destroy()
}

// Presenter owns the staging frame a compositor blits into and the GPU
// texture that frame is uploaded to.
type Presenter struct {
	provider    gpucontext.DeviceProvider
	frame       *image.RGBA
	texture     any  // Lazy-created texture
	oldTexture  any  // Previous texture awaiting deferred destruction
	dirty       bool // Needs GPU upload
	sizeChanged bool // Texture must be recreated at the new size
	closed      bool

	mu     sync.Mutex
	damage image.Rectangle
	redraw func()
}

// New creates a Presenter with a width x height staging frame.
// The provider should come from gogpu.App.GPUContextProvider().
func New(provider gpucontext.DeviceProvider, width, height int) (*Presenter, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}

	// Painters draw with gg; share the window's device with its accelerator
	// when one is registered. Failure only means gg keeps its own device.
	if err := gg.SetAcceleratorDeviceProvider(provider); err != nil {
		layered.Logger().Debug("gpupresent: accelerator device sharing unavailable", "err", err)
	}

	return &Presenter{
		provider: provider,
		frame:    image.NewRGBA(image.Rect(0, 0, width, height)),
		dirty:    true,
	}, nil
}

// MustNew is like New but panics on error.
func MustNew(provider gpucontext.DeviceProvider, width, height int) *Presenter {
	p, err := New(provider, width, height)
	if err != nil {
		panic(err)
	}
	return p
}

// OnRedraw sets the function called whenever the compositor requests a
// repaint, typically the window's RequestRedraw. fn may be called from any
// goroutine.
func (p *Presenter) OnRedraw(fn func()) {
	p.mu.Lock()
	p.redraw = fn
	p.mu.Unlock()
}

// RequestRepaint implements layered.Host. It adds r to the pending damage
// and asks the window to redraw.
func (p *Presenter) RequestRepaint(r image.Rectangle) {
	p.mu.Lock()
	p.damage = p.damage.Union(r)
	fn := p.redraw
	p.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// Damage returns the area requested for repaint since the last Compose.
func (p *Presenter) Damage() image.Rectangle {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.damage
}

// Compose runs a compositing pass of c into the staging frame, clipped to
// the accumulated damage (the whole frame when there is none), and marks
// the frame for upload.
func (p *Presenter) Compose(c *layered.Compositor) error {
	if p.closed {
		return ErrClosed
	}
	if c == nil {
		return ErrNilCompositor
	}

	p.mu.Lock()
	clip := p.damage
	p.damage = image.Rectangle{}
	p.mu.Unlock()

	c.OnNativePaint(p.frame, clip)
	p.dirty = true
	return nil
}

// Frame returns the staging frame. It is replaced by Resize.
func (p *Presenter) Frame() *image.RGBA {
	if p.closed {
		return nil
	}
	return p.frame
}

// Width returns the frame width in pixels.
func (p *Presenter) Width() int {
	return p.frame.Rect.Dx()
}

// Height returns the frame height in pixels.
func (p *Presenter) Height() int {
	return p.frame.Rect.Dy()
}

// Format returns the pixel format of the uploaded data: premultiplied
// RGBA, 8 bits per channel.
func (p *Presenter) Format() gputypes.TextureFormat {
	return gputypes.TextureFormatRGBA8Unorm
}

// SurfaceFormat returns the format of the window surface the texture is
// drawn to.
func (p *Presenter) SurfaceFormat() gputypes.TextureFormat {
	if p.closed {
		return gputypes.TextureFormatUndefined
	}
	return p.provider.SurfaceFormat()
}

// IsDirty reports whether the frame has changes not yet uploaded.
func (p *Presenter) IsDirty() bool {
	return p.dirty
}

// Resize replaces the staging frame. The compositor must be told about the
// new size separately through OnResize.
func (p *Presenter) Resize(width, height int) error {
	if p.closed {
		return ErrClosed
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, width, height)
	}
	if p.Width() == width && p.Height() == height {
		return nil
	}

	p.frame = image.NewRGBA(image.Rect(0, 0, width, height))
	p.sizeChanged = true
	p.dirty = true
	return nil
}

// Flush uploads the frame to the GPU texture if dirty and returns the
// texture. The texture is created lazily: until RenderTo has a texture
// creator, Flush returns a pending placeholder.
func (p *Presenter) Flush() (any, error) {
	if p.closed {
		return nil, ErrClosed
	}

	// The old texture may still be referenced by in-flight command buffers.
	// It is destroyed in RenderTo once the replacement has been written.
	if p.sizeChanged {
		if p.texture != nil {
			destroy(p.oldTexture)
			p.oldTexture = p.texture
			p.texture = nil
		}
		p.sizeChanged = false
	}

	if !p.dirty && p.texture != nil {
		return p.texture, nil
	}

	if p.texture == nil {
		p.texture = &pendingTexture{
			width:  p.Width(),
			height: p.Height(),
			data:   p.frame.Pix,
		}
		p.dirty = false
		return p.texture, nil
	}

	switch tex := p.texture.(type) {
	case *pendingTexture:
		tex.data = p.frame.Pix
	case gpucontext.TextureUpdater:
		if err := tex.UpdateData(p.frame.Pix); err != nil {
			return nil, fmt.Errorf("gpupresent: texture update failed: %w", err)
		}
	}

	p.dirty = false
	return p.texture, nil
}

// Texture returns the current texture without flushing, or nil.
func (p *Presenter) Texture() any {
	return p.texture
}

// Close destroys the textures and drops the staging frame.
// Close is idempotent.
func (p *Presenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	destroy(p.oldTexture)
	p.oldTexture = nil
	destroy(p.texture)
	p.texture = nil

	p.mu.Lock()
	p.redraw = nil
	p.mu.Unlock()
	p.provider = nil
	return nil
}

func destroy(tex any) {
	if d, ok := tex.(textureDestroyer); ok {
		d.Destroy()
	}
}

// pendingTexture holds what is needed to create the real texture once a
// texture creator is available.
type pendingTexture struct {
	width  int
	height int
	data   []byte
}
