package layered

import (
	"image"

	"github.com/gogpu/gg"
)

// Host is the window or control that owns a Compositor.
//
// The host forwards its paint, resize and theme notifications to the
// compositor (OnNativeBackgroundPaint, OnNativePaint, OnResize,
// OnThemeChanged, OnDPIChanged) and schedules native repaints on request.
type Host interface {
	// RequestRepaint schedules a native paint covering r.
	// It is called from whichever goroutine invalidated the compositor and
	// must therefore be safe for concurrent use.
	RequestRepaint(r image.Rectangle)
}

// BackgroundPainter is implemented by hosts that draw a themed or native
// background. The compositor calls PaintBackground with the background
// layer's drawing context instead of letting the host draw to the screen.
//
// Hosts that do not implement it leave the background layer empty.
type BackgroundPainter interface {
	PaintBackground(dc *gg.Context, clip image.Rectangle) error
}

// RepaintFunc adapts a function to the Host interface.
type RepaintFunc func(r image.Rectangle)

// RequestRepaint calls f(r).
func (f RepaintFunc) RequestRepaint(r image.Rectangle) {
	f(r)
}

// Painter draws the content of one layer.
//
// PaintLayer is called on the rendering goroutine during a compositing
// pass, only when the layer needs repainting. A painter that has nothing to
// draw simply returns without calling req.TryBeginDrawing; the layer then
// becomes transparent for this pass and the content below shows through.
type Painter interface {
	PaintLayer(req *PaintRequest) error
}

// PainterFunc adapts a function to the Painter interface.
type PainterFunc func(req *PaintRequest) error

// PaintLayer calls f(req).
func (f PainterFunc) PaintLayer(req *PaintRequest) error {
	return f(req)
}
