package layered

import (
	"image"

	"github.com/gogpu/layered/surface"
)

// Option configures a Compositor during creation.
//
// Example:
//
//	pool := surface.NewPool(2, 4096*4096)
//	c, err := layered.New(host,
//	    layered.WithAllocator(pool),
//	    layered.WithClientSize(800, 600),
//	)
type Option func(*options)

// options holds optional configuration for Compositor creation.
type options struct {
	alloc surface.Allocator
	size  image.Point
	scale float64
}

func defaultOptions() options {
	return options{
		alloc: nil, // Will be set to surface.Default() if nil
		scale: 1,
	}
}

// WithAllocator sets the allocator that layer surfaces draw buffers from.
// By default all compositors share surface.Default().
func WithAllocator(a surface.Allocator) Option {
	return func(o *options) {
		o.alloc = a
	}
}

// WithClientSize sets the initial client size. Hosts usually follow up
// with OnResize whenever the size changes.
func WithClientSize(width, height int) Option {
	return func(o *options) {
		o.size = image.Pt(width, height)
	}
}

// WithDPIScale sets the initial device scale factor reported to painters.
// Non-positive values are ignored.
func WithDPIScale(scale float64) Option {
	return func(o *options) {
		if scale > 0 {
			o.scale = scale
		}
	}
}
