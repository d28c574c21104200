// Package layered composes independently refreshable offscreen layers into
// the image a window or control shows, so that a change to one part of the
// scene does not force the whole scene to be redrawn.
//
// # Overview
//
// A [Compositor] owns an ordered stack of layers. The first one is always
// the background layer, which captures the host's own themed or native
// background through [BackgroundPainter]. The others are declared by the
// owner with [Compositor.ConfigureLayers] and are drawn by a [Painter]
// per layer, using the gg drawing API:
//
//	c, err := layered.New(host, layered.WithClientSize(800, 600))
//	if err != nil {
//	    return err
//	}
//	defer c.Close()
//
//	const (
//	    Grid layered.LayerID = iota + 1
//	    Selection
//	)
//	_ = c.ConfigureLayers(Grid, Selection)
//
//	c.SetPainter(Grid, layered.PainterFunc(func(req *layered.PaintRequest) error {
//	    dc, err := req.TryBeginDrawing()
//	    if err != nil {
//	        return err
//	    }
//	    dc.SetRGB(1, 1, 1)
//	    dc.DrawRectangle(0, 0, 800, 600)
//	    dc.Fill()
//	    return nil
//	}))
//
// The host forwards its notifications:
//
//	c.OnResize(w, h)              // size changed
//	c.OnThemeChanged()            // theme changed
//	c.OnNativePaint(screen, clip) // paint requested
//
// # Compositing pass
//
// Each native paint runs one pass, bottom-up. A layer is repainted only if
// it was invalidated, if its surface does not match the client size, or if
// a layer below it gained new content during the pass. Every other layer is
// left alone, which is what makes partial updates cheap.
//
// A painter starts drawing by calling [PaintRequest.TryBeginDrawing]. The
// first call copies the content of the nearest lower layer with content
// into the layer surface, so the painter draws over the correct base image.
// A painter that returns without calling it makes its layer transparent
// for the pass: no copy happens and the content below shows through.
//
// After the last layer, the topmost layer with content is copied onto the
// screen.
//
// # Concurrency
//
// All painting happens on the host's rendering goroutine. [Compositor.Invalidate]
// may be called from any goroutine; the change is queued and applied when
// the next pass starts, never in the middle of one.
//
// # Failures
//
// A surface that cannot be allocated, or a painter that returns an error
// or panics, leaves its layer contentless for that pass. The pass continues
// with the remaining layers and the failing layer is retried by the next
// pass. Failures are logged through [Logger].
package layered
