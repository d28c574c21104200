package layered

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/gogpu/gg"
	xdraw "golang.org/x/image/draw"
)

// OnNativeBackgroundPaint is called by the host where it would normally
// erase its background. Instead of drawing to the screen, the host's
// BackgroundPainter is redirected into the background layer, and only when
// that layer is invalid. An empty clip means the whole client area.
func (c *Compositor) OnNativeBackgroundPaint(clip image.Rectangle) {
	if c.closed.Load() || c.painting {
		return
	}
	c.queue.Drain()
	c.paintBackground(c.clipRect(clip))
}

// OnNativePaint is called by the host when it paints. It applies queued
// invalidations, captures the background if the host skipped the erase
// step, runs the compositing pass over every layer, and copies the topmost
// layer with content into screen within clip. An empty clip means the
// whole client area. A nil screen runs the pass without blitting; the
// result is then available from Frame.
//
// The pass always runs to completion: painter errors and panics are
// recovered per layer, and invalidations arriving meanwhile wait for the
// next pass.
func (c *Compositor) OnNativePaint(screen draw.Image, clip image.Rectangle) {
	if c.closed.Load() {
		return
	}
	if c.painting {
		Logger().Debug("layered: nested paint ignored")
		return
	}
	c.queue.Drain()

	clip = c.clipRect(clip)
	if c.size.X == 0 || c.size.Y == 0 {
		c.frame = nil
		return
	}

	c.painting = true
	defer func() {
		c.painting = false
		c.bgChanged = false
		if c.closed.Load() {
			c.releaseAll()
		}
	}()

	c.paintBackground(clip)
	src := c.composite(clip)
	c.frame = src
	c.stats.passes.Add(1)

	if src == nil || screen == nil {
		return
	}
	xdraw.Copy(screen, clip.Min, src.surf.Image(), clip, xdraw.Src, nil)
	c.stats.blits.Add(1)
}

// clipRect clamps clip to the client area; an empty clip selects all of it.
func (c *Compositor) clipRect(clip image.Rectangle) image.Rectangle {
	client := image.Rectangle{Max: c.size}
	if clip.Empty() {
		return client
	}
	return clip.Intersect(client)
}

// paintBackground redirects the host's native background into the
// background layer if that layer needs it.
func (c *Compositor) paintBackground(clip image.Rectangle) {
	bg := c.layers[0]
	if c.bg == nil || c.size.X == 0 || c.size.Y == 0 {
		return
	}
	if !bg.beginPaint(c.size, false) {
		return
	}

	fresh := !bg.surf.Valid(c.size)
	dc, err := bg.surf.EnsureValid(c.size)
	if err != nil {
		c.stats.allocFailures.Add(1)
		Logger().Warn("layered: background surface allocation failed", "err", err)
		bg.endPaint(false)
		c.bgChanged = true
		return
	}
	if fresh {
		c.stats.allocations.Add(1)
	}
	bg.surf.Clear()
	dc.Identity()
	dc.ClearPath()

	c.stats.callbacks.Add(1)
	if err := c.call(BackgroundLayer, func() error { return c.bg.PaintBackground(dc, clip) }); err != nil {
		c.stats.callbackFailures.Add(1)
		Logger().Warn("layered: background paint failed", "err", err)
		bg.endPaint(false)
	} else {
		flushGPU(BackgroundLayer, dc)
		bg.endPaint(true)
	}
	c.bgChanged = true
}

// composite runs the bottom-up pass over the user layers and returns the
// topmost layer with content, or nil.
//
// A layer is repainted when it was invalidated, when its surface does not
// match the client size, or when the content below it changed in this
// pass. The nearest lower layer with content is its copy source. A layer
// whose painter does not draw is left contentless and does not become a
// source, so the content below flows through it.
//
// The content below a layer changes when a repainted layer gains content,
// and also when one that contributed in the last pass ends without it:
// layers above still hold copies of what it used to show.
func (c *Compositor) composite(clip image.Rectangle) *layer {
	changed := c.bgChanged
	var source *layer
	if bg := c.layers[0]; bg.hasContent {
		source = bg
	}

	for _, l := range c.layers[1:] {
		if l.beginPaint(c.size, changed) {
			c.paintLayer(l, source, clip)
			if l.hasContent || l.contributed {
				changed = true
			}
		} else {
			c.stats.skipped.Add(1)
		}
		l.contributed = l.hasContent
		if l.hasContent {
			source = l
		}
	}

	if source != nil {
		Logger().Debug("layered: pass complete", "source", source.id, "layers", len(c.layers))
	}
	return source
}

// paintLayer runs the painter of l, which is in the Painting state.
func (c *Compositor) paintLayer(l, source *layer, clip image.Rectangle) {
	p := c.painterFor(l.id)
	if p == nil {
		l.endPaint(false)
		return
	}

	req := &PaintRequest{
		c:        c,
		target:   l,
		source:   source,
		size:     c.size,
		dirty:    clip,
		userData: c.userData,
	}

	c.stats.callbacks.Add(1)
	err := c.call(l.id, func() error { return p.PaintLayer(req) })
	req.finish()

	if err != nil {
		c.stats.callbackFailures.Add(1)
		Logger().Warn("layered: layer paint failed", "layer", l.id, "err", err)
		l.endPaint(false)
		return
	}

	if req.used {
		flushGPU(l.id, req.dc)
	}
	l.endPaint(req.used)
}

// flushGPU makes shapes queued on a GPU accelerator land in the surface
// pixmap before it is copied or blitted. A failure is not fatal: the CPU
// fallback has already rendered into the pixmap.
func flushGPU(id LayerID, dc *gg.Context) {
	if err := dc.FlushGPU(); err != nil {
		Logger().Debug("layered: accelerator flush failed", "layer", id, "err", err)
	}
}

func (c *Compositor) painterFor(id LayerID) Painter {
	if p, ok := c.painters[id]; ok {
		return p
	}
	if c.onPaint != nil {
		fn := c.onPaint
		return PainterFunc(func(req *PaintRequest) error { return fn(id, req) })
	}
	return nil
}

// call runs fn, converting both an error and a panic into a *PaintError.
func (c *Compositor) call(id LayerID, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PaintError{Layer: id, Err: fmt.Errorf("%w: %v", ErrPainterPanic, r)}
		}
	}()
	if e := fn(); e != nil {
		return &PaintError{Layer: id, Err: e}
	}
	return nil
}
