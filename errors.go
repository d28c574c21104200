package layered

import (
	"errors"
	"fmt"
)

// Common errors returned by Compositor operations.
var (
	// ErrNilHost is returned when New is called without a host.
	ErrNilHost = errors.New("layered: nil host")

	// ErrInvalidDimensions is returned for a negative client size.
	ErrInvalidDimensions = errors.New("layered: invalid dimensions")

	// ErrDuplicateLayer is returned by ConfigureLayers when an id appears
	// twice or when the reserved background id is listed.
	ErrDuplicateLayer = errors.New("layered: duplicate layer id")

	// ErrClosed is returned when operations are attempted on a closed compositor.
	ErrClosed = errors.New("layered: compositor is closed")

	// ErrBusy is returned when the layer set is reconfigured from inside a
	// compositing pass.
	ErrBusy = errors.New("layered: compositing pass in progress")

	// ErrRequestDone is returned by PaintRequest.TryBeginDrawing after the
	// painter that received the request has returned.
	ErrRequestDone = errors.New("layered: paint request already completed")

	// ErrPainterPanic wraps a value recovered from a panicking painter.
	ErrPainterPanic = errors.New("layered: painter panicked")
)

// PaintError reports a painter failure for one layer. Painter failures are
// recovered and logged; the layer is treated as contentless for that pass.
type PaintError struct {
	Layer LayerID
	Err   error
}

func (e *PaintError) Error() string {
	return fmt.Sprintf("layered: paint layer %d: %v", e.Layer, e.Err)
}

func (e *PaintError) Unwrap() error {
	return e.Err
}
