package layered

import (
	"fmt"
	"image"

	"github.com/gogpu/layered/surface"
)

// LayerID identifies a layer. Ids are chosen by the owner; the draw order
// is the order in which they were passed to ConfigureLayers.
type LayerID int

// BackgroundLayer is the reserved id of the layer holding the host's native
// background. It is always present and always composited first.
const BackgroundLayer LayerID = 0

// LayerState is the validity state of a layer.
type LayerState uint8

const (
	// StateFresh means the layer was just created or invalidated and holds
	// no content.
	StateFresh LayerState = iota

	// StatePainting means the layer's painter is running.
	StatePainting

	// StateValid means the layer holds content at the current client size.
	StateValid
)

// String returns the state name.
func (s LayerState) String() string {
	switch s {
	case StateFresh:
		return "Fresh"
	case StatePainting:
		return "Painting"
	case StateValid:
		return "Valid"
	default:
		return fmt.Sprintf("LayerState(%d)", uint8(s))
	}
}

// LayerInfo is a snapshot of one layer.
type LayerInfo struct {
	ID          LayerID
	State       LayerState
	HasContent  bool
	Invalidated bool
	Size        image.Point // Size of the surface buffer, zero when released
}

// layer is one offscreen surface plus its validity state.
//
// Invariant: hasContent implies the surface is allocated at the size the
// layer was last painted for.
type layer struct {
	id         LayerID
	surf       *surface.Surface
	state      LayerState
	hasContent bool

	// contributed is hasContent as of the end of the last pass. Layers
	// above were built from this layer's content while it is set.
	contributed bool
}

func newLayer(id LayerID, alloc surface.Allocator) *layer {
	return &layer{
		id:    id,
		surf:  surface.New(alloc),
		state: StateFresh,
	}
}

// invalidate moves the layer to Fresh from any state. Idempotent.
func (l *layer) invalidate() {
	l.state = StateFresh
	l.hasContent = false
}

func (l *layer) invalidated() bool {
	return l.state == StateFresh
}

// needsPaint reports whether the layer must be repainted for a pass at
// size, given whether a lower layer changed content during this pass.
func (l *layer) needsPaint(size image.Point, lowerChanged bool) bool {
	return lowerChanged || l.state != StateValid || !l.surf.Valid(size)
}

// beginPaint moves the layer to Painting if it needs repainting and
// reports whether it did. A layer that does not need repainting keeps its
// Valid state and content.
func (l *layer) beginPaint(size image.Point, lowerChanged bool) bool {
	if !l.needsPaint(size, lowerChanged) {
		return false
	}
	l.state = StatePainting
	l.hasContent = false
	return true
}

// endPaint completes a paint started by beginPaint. A layer that ends
// without content gives its buffer back.
func (l *layer) endPaint(written bool) {
	if written && l.surf.Allocated() {
		l.state = StateValid
		l.hasContent = true
		return
	}
	l.surf.Release()
	l.state = StateFresh
	l.hasContent = false
}

// releaseStale disposes the surface if it is not sized for size.
func (l *layer) releaseStale(size image.Point) {
	if l.surf.Allocated() && !l.surf.Valid(size) {
		l.surf.Release()
	}
}

// release disposes the surface and resets the layer to Fresh.
func (l *layer) release() {
	l.surf.Release()
	l.invalidate()
	l.contributed = false
}

func (l *layer) info() LayerInfo {
	return LayerInfo{
		ID:          l.id,
		State:       l.state,
		HasContent:  l.hasContent,
		Invalidated: l.invalidated(),
		Size:        l.surf.Size(),
	}
}
