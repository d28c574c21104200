// Command layerdemo demonstrates the layered compositor without a window.
//
// A headless host drives a compositor with three layers on top of a
// captured background: a static grid, a set of shapes, and a cursor that a
// second goroutine moves by invalidating only its layer. After the last
// frame the composited image is written as PNG together with the
// compositor statistics.
package main

import (
	"flag"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"time"

	"github.com/gogpu/gg"

	"github.com/gogpu/layered"
	"github.com/gogpu/layered/surface"
)

const (
	layerGrid layered.LayerID = iota + 1
	layerShapes
	layerCursor
)

func main() {
	var (
		width   = flag.Int("width", 800, "client width")
		height  = flag.Int("height", 600, "client height")
		frames  = flag.Int("frames", 30, "frames to composite")
		output  = flag.String("output", "layers.png", "output file")
		verbose = flag.Bool("v", false, "log compositor activity")
	)
	flag.Parse()

	if *verbose {
		layered.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	host := newHeadlessHost()
	pool := surface.NewPool(surface.DefaultMaxPerBucket, surface.DefaultMaxPixels)
	comp, err := layered.New(host,
		layered.WithAllocator(pool),
		layered.WithClientSize(*width, *height),
	)
	if err != nil {
		log.Fatalf("Failed to create compositor: %v", err)
	}
	defer comp.Close()

	if err := comp.ConfigureLayers(layerGrid, layerShapes, layerCursor); err != nil {
		log.Fatalf("Failed to configure layers: %v", err)
	}
	comp.SetPainter(layerGrid, layered.PainterFunc(paintGrid))
	comp.SetPainter(layerShapes, layered.PainterFunc(paintShapes))
	comp.SetPainter(layerCursor, layered.PainterFunc(paintCursor))

	done := make(chan struct{})
	go moveCursor(comp, *width, *height, *frames, done)

	screen := image.NewRGBA(image.Rect(0, 0, *width, *height))
	for i := 0; i < *frames; i++ {
		clip := <-host.repaint
		comp.OnNativePaint(screen, clip)
	}
	close(done)

	if err := savePNG(*output, screen); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}

	st := comp.Stats()
	ps := pool.Stats()
	log.Printf("Frames saved to %s (%dx%d)\n", *output, *width, *height)
	log.Printf("passes=%d callbacks=%d skipped=%d copies=%d allocations=%d\n",
		st.Passes, st.Callbacks, st.Skipped, st.Copies, st.Allocations)
	log.Printf("pool acquired=%d reused=%d\n", ps.Acquired, ps.Reused)
}

// headlessHost stands in for a window: repaint requests are coalesced into
// a single pending paint, and the background is a vertical gradient.
type headlessHost struct {
	repaint chan image.Rectangle
}

func newHeadlessHost() *headlessHost {
	return &headlessHost{repaint: make(chan image.Rectangle, 1)}
}

func (h *headlessHost) RequestRepaint(r image.Rectangle) {
	select {
	case h.repaint <- r:
	default:
	}
}

func (h *headlessHost) PaintBackground(dc *gg.Context, _ image.Rectangle) error {
	w, ht := float64(dc.Width()), float64(dc.Height())
	steps := 100
	for i := 0; i < steps; i++ {
		t := float64(i) / float64(steps)
		dc.SetColor(gg.RGB(0.1+t*0.4, 0.2+t*0.3, 0.4+t*0.2).Color())
		dc.DrawRectangle(0, ht*t, w, ht/float64(steps)+1)
		_ = dc.Fill()
	}
	return nil
}

func paintGrid(req *layered.PaintRequest) error {
	dc, err := req.TryBeginDrawing()
	if err != nil {
		return err
	}
	size := req.Size()
	step := 40 * req.Scale()

	dc.SetRGBA(1, 1, 1, 0.15)
	dc.SetLineWidth(1)
	for x := 0.0; x < float64(size.X); x += step {
		dc.DrawLine(x, 0, x, float64(size.Y))
	}
	for y := 0.0; y < float64(size.Y); y += step {
		dc.DrawLine(0, y, float64(size.X), y)
	}
	return dc.Stroke()
}

func paintShapes(req *layered.PaintRequest) error {
	dc, err := req.TryBeginDrawing()
	if err != nil {
		return err
	}

	dc.SetRGBA(1, 0.3, 0.3, 0.8)
	dc.DrawCircle(150, 150, 60)
	_ = dc.Fill()

	dc.SetRGBA(0.3, 1, 0.3, 0.8)
	dc.DrawCircle(200, 150, 60)
	_ = dc.Fill()

	dc.SetRGB(1, 0.8, 0)
	dc.DrawRoundedRectangle(350, 100, 120, 80, 15)
	return dc.Fill()
}

// paintCursor draws a crosshair at the position carried by the latest
// invalidation. Without a position the layer stays transparent.
func paintCursor(req *layered.PaintRequest) error {
	pos, ok := req.UserData().(image.Point)
	if !ok {
		return nil
	}
	dc, err := req.TryBeginDrawing()
	if err != nil {
		return err
	}

	x, y := float64(pos.X), float64(pos.Y)
	dc.SetRGB(1, 1, 1)
	dc.SetLineWidth(2)
	dc.DrawLine(x-12, y, x+12, y)
	dc.DrawLine(x, y-12, x, y+12)
	if err := dc.Stroke(); err != nil {
		return err
	}
	dc.DrawCircle(x, y, 6)
	return dc.Stroke()
}

// moveCursor plays the role of an input thread: it only ever talks to the
// compositor through Invalidate.
func moveCursor(comp *layered.Compositor, w, h, frames int, done <-chan struct{}) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		t := float64(i%frames) / float64(frames) * 2 * math.Pi
		pos := image.Pt(w/2+int(float64(w)/3*math.Cos(t)), h/2+int(float64(h)/3*math.Sin(t)))
		comp.Invalidate(pos, layerCursor)
	}
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
