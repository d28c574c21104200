package layered

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gg"
	"github.com/gogpu/layered/surface"
)

const (
	layerMain    LayerID = 1
	layerOverlay LayerID = 2
)

var (
	colorMain    = color.RGBA{R: 255, A: 255}
	colorOverlay = color.RGBA{G: 255, A: 255}
)

// mockHost counts repaint requests and optionally paints a blue background.
type mockHost struct {
	repaints atomic.Int64

	mu      sync.Mutex
	lastReq image.Rectangle
}

func (h *mockHost) RequestRepaint(r image.Rectangle) {
	h.repaints.Add(1)
	h.mu.Lock()
	h.lastReq = r
	h.mu.Unlock()
}

func (h *mockHost) last() image.Rectangle {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.lastReq
}

// mockBackgroundHost also implements BackgroundPainter.
type mockBackgroundHost struct {
	mockHost
	paints int
	fail   error
}

func (h *mockBackgroundHost) PaintBackground(dc *gg.Context, _ image.Rectangle) error {
	h.paints++
	if h.fail != nil {
		return h.fail
	}
	dc.SetRGB(0, 0, 1)
	dc.DrawRectangle(0, 0, float64(dc.Width()), float64(dc.Height()))
	_ = dc.Fill()
	return nil
}

// recorder collects the order in which painters run.
type recorder struct {
	calls []LayerID
}

// fill returns a painter that records the call and fills the whole layer
// with col.
func (r *recorder) fill(col color.Color) Painter {
	return PainterFunc(func(req *PaintRequest) error {
		r.calls = append(r.calls, req.Layer())
		if _, err := req.TryBeginDrawing(); err != nil {
			return err
		}
		draw.Draw(req.Target(), req.Target().Bounds(), image.NewUniform(col), image.Point{}, draw.Src)
		return nil
	})
}

// patch returns a painter that records the call and fills only rect,
// keeping the copied lower content elsewhere.
func (r *recorder) patch(rect image.Rectangle, col color.Color) Painter {
	return PainterFunc(func(req *PaintRequest) error {
		r.calls = append(r.calls, req.Layer())
		if _, err := req.TryBeginDrawing(); err != nil {
			return err
		}
		draw.Draw(req.Target(), rect, image.NewUniform(col), image.Point{}, draw.Src)
		return nil
	})
}

// skip returns a painter that records the call and draws nothing.
func (r *recorder) skip() Painter {
	return PainterFunc(func(req *PaintRequest) error {
		r.calls = append(r.calls, req.Layer())
		return nil
	})
}

func (r *recorder) reset() {
	r.calls = nil
}

// flakyAllocator fails the acquisitions whose 1-based ordinal is in fail.
type flakyAllocator struct {
	inner surface.Allocator
	n     int
	fail  map[int]bool
}

var errFlaky = errors.New("flaky allocator")

func (a *flakyAllocator) Acquire(size image.Point) (*gg.Pixmap, error) {
	a.n++
	if a.fail[a.n] {
		return nil, errFlaky
	}
	return a.inner.Acquire(size)
}

func (a *flakyAllocator) Release(pm *gg.Pixmap) {
	a.inner.Release(pm)
}

func newTestCompositor(t *testing.T, width, height int, opts ...Option) *Compositor {
	t.Helper()
	return newTestCompositorWithHost(t, &mockHost{}, width, height, opts...)
}

func newTestCompositorWithHost(t *testing.T, host Host, width, height int, opts ...Option) *Compositor {
	t.Helper()
	opts = append([]Option{
		WithAllocator(surface.NewPool(4, 0)),
		WithClientSize(width, height),
	}, opts...)
	c, err := New(host, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func mustConfigure(t *testing.T, c *Compositor, ids ...LayerID) {
	t.Helper()
	if err := c.ConfigureLayers(ids...); err != nil {
		t.Fatalf("ConfigureLayers(%v) error = %v", ids, err)
	}
}

func newScreen(c *Compositor) *image.RGBA {
	return image.NewRGBA(image.Rectangle{Max: c.ClientSize()})
}

func layerIDs(infos []LayerInfo) []LayerID {
	ids := make([]LayerID, len(infos))
	for i, info := range infos {
		ids[i] = info.ID
	}
	return ids
}
