package layered

import (
	"fmt"
	"image"
	"sync/atomic"

	"github.com/gogpu/layered/internal/dispatch"
	"github.com/gogpu/layered/surface"
)

// Compositor composes an ordered stack of offscreen layers into the image
// shown by its host.
//
// Every method except Invalidate and Stats must be called on the host's
// rendering goroutine. Invalidate may be called from any goroutine:
// it queues the change, which is applied by the rendering goroutine before
// the next compositing pass, and asks the host for a repaint.
type Compositor struct {
	host  Host
	bg    BackgroundPainter // nil if the host draws no background
	alloc surface.Allocator
	queue dispatch.Queue

	layers   []*layer // layers[0] is the background layer
	byID     map[LayerID]*layer
	painters map[LayerID]Painter
	onPaint  func(LayerID, *PaintRequest) error

	size     image.Point
	bounds   atomic.Pointer[image.Rectangle] // client rect, read by Invalidate
	scale    float64
	userData any

	painting  bool
	bgChanged bool   // background repainted since the last pass
	frame     *layer // source layer of the last pass

	stats  counters
	closed atomic.Bool
}

// New creates a compositor for host. Only the background layer exists
// until ConfigureLayers is called.
func New(host Host, opts ...Option) (*Compositor, error) {
	if host == nil {
		return nil, ErrNilHost
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.size.X < 0 || o.size.Y < 0 {
		return nil, fmt.Errorf("%w: width=%d, height=%d", ErrInvalidDimensions, o.size.X, o.size.Y)
	}
	if o.alloc == nil {
		o.alloc = surface.Default()
	}

	c := &Compositor{
		host:     host,
		alloc:    o.alloc,
		painters: make(map[LayerID]Painter),
		scale:    o.scale,
	}
	if bp, ok := host.(BackgroundPainter); ok {
		c.bg = bp
	}
	c.setSize(o.size)

	bg := newLayer(BackgroundLayer, c.alloc)
	c.layers = []*layer{bg}
	c.byID = map[LayerID]*layer{BackgroundLayer: bg}
	return c, nil
}

// MustNew is like New but panics on error.
func MustNew(host Host, opts ...Option) *Compositor {
	c, err := New(host, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ConfigureLayers replaces the user layer set with ids, in draw order.
// The background layer stays first and keeps its content; every previous
// user layer is released, and the new ones start Fresh.
//
// Listing an id twice, or listing BackgroundLayer, is a programming error
// reported as ErrDuplicateLayer; the current layer set is then left as is.
func (c *Compositor) ConfigureLayers(ids ...LayerID) error {
	if c.closed.Load() {
		return ErrClosed
	}
	if c.painting {
		return ErrBusy
	}

	seen := make(map[LayerID]struct{}, len(ids))
	for _, id := range ids {
		if id == BackgroundLayer {
			return fmt.Errorf("%w: %d is reserved for the background", ErrDuplicateLayer, id)
		}
		if _, dup := seen[id]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateLayer, id)
		}
		seen[id] = struct{}{}
	}

	bg := c.layers[0]
	for _, l := range c.layers[1:] {
		l.release()
	}

	layers := make([]*layer, 0, len(ids)+1)
	layers = append(layers, bg)
	byID := make(map[LayerID]*layer, len(ids)+1)
	byID[BackgroundLayer] = bg
	for _, id := range ids {
		l := newLayer(id, c.alloc)
		layers = append(layers, l)
		byID[id] = l
	}
	c.layers = layers
	c.byID = byID
	c.frame = nil

	Logger().Info("layered: layers configured", "count", len(ids))
	c.requestRepaint()
	return nil
}

// SetPainter registers p as the painter of layer id, replacing any
// previous one. A nil p removes the registration.
func (c *Compositor) SetPainter(id LayerID, p Painter) {
	if p == nil {
		delete(c.painters, id)
		return
	}
	c.painters[id] = p
}

// OnPaintLayer sets the painter used for layers without a registered
// Painter.
func (c *Compositor) OnPaintLayer(fn func(id LayerID, req *PaintRequest) error) {
	c.onPaint = fn
}

// Invalidate marks layers as needing repaint. With no ids every layer,
// background included, is invalidated. userData is handed to painters in
// the next pass through PaintRequest.UserData; when several invalidations
// arrive before a pass, the last payload wins.
//
// Invalidate is safe for concurrent use. The change is applied on the
// rendering goroutine when the next pass starts (or on ProcessPending), so
// a pass already running is never affected.
func (c *Compositor) Invalidate(userData any, ids ...LayerID) {
	if c.closed.Load() {
		return
	}
	ids = append([]LayerID(nil), ids...)
	c.queue.Post(func() {
		c.applyInvalidate(userData, ids)
	})
	c.requestRepaint()
}

func (c *Compositor) applyInvalidate(userData any, ids []LayerID) {
	c.userData = userData
	if len(ids) == 0 {
		c.invalidateAll()
		return
	}
	for _, id := range ids {
		l, ok := c.byID[id]
		if !ok {
			Logger().Debug("layered: invalidate of unknown layer ignored", "layer", id)
			continue
		}
		l.invalidate()
	}
}

func (c *Compositor) invalidateAll() {
	for _, l := range c.layers {
		l.invalidate()
	}
}

// ProcessPending applies queued invalidations now and returns how many
// were applied. Passes do this themselves; hosts may call it from their
// event loop to keep the queue short between paints.
func (c *Compositor) ProcessPending() int {
	if c.painting {
		return 0
	}
	return c.queue.Drain()
}

// Pending returns the number of queued invalidations.
func (c *Compositor) Pending() int {
	return c.queue.Len()
}

// OnResize reports a new client size. Every layer is invalidated and every
// surface of the old size is released; surfaces are reallocated lazily by
// the next pass, only for layers that paint.
func (c *Compositor) OnResize(width, height int) {
	size := image.Pt(max(width, 0), max(height, 0))
	if size == c.size || c.closed.Load() {
		return
	}
	if c.painting {
		c.queue.Post(func() { c.OnResize(width, height) })
		return
	}
	c.setSize(size)
	for _, l := range c.layers {
		l.releaseStale(size)
	}
	c.frame = nil
	c.invalidateAll()
	c.requestRepaint()
}

// OnThemeChanged reports a theme change. Every layer is invalidated so the
// background is captured again with the new theme.
func (c *Compositor) OnThemeChanged() {
	if c.closed.Load() {
		return
	}
	if c.painting {
		c.queue.Post(c.OnThemeChanged)
		return
	}
	c.invalidateAll()
	c.requestRepaint()
}

// OnDPIChanged reports a new device scale factor. Every layer is
// invalidated. Non-positive scales are ignored.
func (c *Compositor) OnDPIChanged(scale float64) {
	if scale <= 0 || c.closed.Load() {
		return
	}
	if c.painting {
		c.queue.Post(func() { c.OnDPIChanged(scale) })
		return
	}
	c.scale = scale
	c.invalidateAll()
	c.requestRepaint()
}

// ClientSize returns the current client size.
func (c *Compositor) ClientSize() image.Point {
	return c.size
}

// DPIScale returns the current device scale factor.
func (c *Compositor) DPIScale() float64 {
	return c.scale
}

// Layers returns a snapshot of every layer in draw order, background first.
func (c *Compositor) Layers() []LayerInfo {
	infos := make([]LayerInfo, len(c.layers))
	for i, l := range c.layers {
		infos[i] = l.info()
	}
	return infos
}

// Layer returns a snapshot of layer id.
func (c *Compositor) Layer(id LayerID) (LayerInfo, bool) {
	l, ok := c.byID[id]
	if !ok {
		return LayerInfo{}, false
	}
	return l.info(), true
}

// Frame returns the composited image of the last pass, sharing memory
// with the topmost layer that had content, or nil if the scene was empty.
// It is overwritten by later passes.
func (c *Compositor) Frame() *image.RGBA {
	if c.frame == nil || !c.frame.hasContent {
		return nil
	}
	return c.frame.surf.Image()
}

// Stats returns a snapshot of the compositor counters.
// Stats is safe for concurrent use.
func (c *Compositor) Stats() Stats {
	return c.stats.snapshot()
}

// Close releases every layer surface and drops queued invalidations.
// After Close, the Compositor must not be used, except that Invalidate
// and Close become no-ops. Close is idempotent.
func (c *Compositor) Close() error {
	if c.closed.Swap(true) {
		return nil
	}
	c.queue.Reset()
	if c.painting {
		// The running pass releases the layers when it unwinds.
		return nil
	}
	c.releaseAll()
	return nil
}

func (c *Compositor) releaseAll() {
	for _, l := range c.layers {
		l.release()
	}
	c.frame = nil
}

func (c *Compositor) setSize(size image.Point) {
	c.size = size
	r := image.Rectangle{Max: size}
	c.bounds.Store(&r)
}

func (c *Compositor) requestRepaint() {
	c.host.RequestRepaint(*c.bounds.Load())
}
