package layered

import (
	"image"

	"github.com/gogpu/gg"
)

// PaintRequest is handed to a Painter for one layer during one pass.
//
// The drawing context is not created up front. A painter that wants to
// draw calls TryBeginDrawing, which allocates the layer surface if needed
// and seeds it with the content of the nearest lower layer that has
// content, so drawing always starts from the correct base image. A painter
// that never calls it costs neither an allocation nor a copy, and the layer
// passes the lower content through unchanged.
//
// A PaintRequest is only valid until the painter returns.
type PaintRequest struct {
	c        *Compositor
	target   *layer
	source   *layer // nil when no lower layer has content
	size     image.Point
	dirty    image.Rectangle
	userData any

	dc   *gg.Context
	used bool
	done bool
}

// Layer returns the id of the layer being painted.
func (r *PaintRequest) Layer() LayerID {
	return r.target.id
}

// DirtyRect returns the area the host asked to repaint, in client coordinates.
func (r *PaintRequest) DirtyRect() image.Rectangle {
	return r.dirty
}

// Size returns the client size the layer is painted for.
func (r *PaintRequest) Size() image.Point {
	return r.size
}

// Scale returns the device scale factor of the host.
func (r *PaintRequest) Scale() float64 {
	return r.c.scale
}

// UserData returns the payload of the most recent invalidation.
func (r *PaintRequest) UserData() any {
	return r.userData
}

// Source returns the content of the nearest lower layer, or nil when no
// lower layer has content. The image must be treated as read-only.
func (r *PaintRequest) Source() image.Image {
	if r.source == nil {
		return nil
	}
	return r.source.surf.Image()
}

// SourceLayer returns the id of the copy source and whether there is one.
func (r *PaintRequest) SourceLayer() (LayerID, bool) {
	if r.source == nil {
		return 0, false
	}
	return r.source.id, true
}

// Used reports whether TryBeginDrawing has succeeded.
func (r *PaintRequest) Used() bool {
	return r.used
}

// Context returns the drawing context without side effects; it is nil
// until TryBeginDrawing has succeeded.
func (r *PaintRequest) Context() *gg.Context {
	return r.dc
}

// Target returns an *image.RGBA sharing memory with the layer surface, for
// painters that prefer image/draw over the gg API. It is nil until
// TryBeginDrawing has succeeded.
func (r *PaintRequest) Target() *image.RGBA {
	if !r.used {
		return nil
	}
	return r.target.surf.Image()
}

// TryBeginDrawing returns the layer's drawing context.
//
// The first call makes sure the surface matches the client size, then
// copies the source content into it (or clears it when there is no
// source) and marks the request used. Later calls return the same context
// without copying again.
//
// If the surface cannot be allocated the error is returned, the request
// stays unused, and the layer is treated as contentless for this pass.
func (r *PaintRequest) TryBeginDrawing() (*gg.Context, error) {
	if r.used {
		return r.dc, nil
	}
	if r.done {
		return nil, ErrRequestDone
	}

	surf := r.target.surf
	fresh := !surf.Valid(r.size)
	dc, err := surf.EnsureValid(r.size)
	if err != nil {
		r.c.stats.allocFailures.Add(1)
		Logger().Warn("layered: layer surface allocation failed",
			"layer", r.target.id, "width", r.size.X, "height", r.size.Y, "err", err)
		return nil, err
	}
	if fresh {
		r.c.stats.allocations.Add(1)
	}

	if r.source != nil {
		if err := surf.CopyFrom(r.source.surf); err != nil {
			Logger().Warn("layered: copy from lower layer failed",
				"layer", r.target.id, "source", r.source.id, "err", err)
			surf.Clear()
			r.c.stats.clears.Add(1)
		} else {
			r.c.stats.copies.Add(1)
		}
	} else {
		surf.Clear()
		r.c.stats.clears.Add(1)
	}

	dc.Identity()
	dc.ClearPath()

	r.dc = dc
	r.used = true
	return dc, nil
}

// finish closes the request once the painter has returned.
func (r *PaintRequest) finish() {
	r.done = true
}
