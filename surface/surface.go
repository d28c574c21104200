// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gg"
)

// ErrSizeMismatch is returned by CopyFrom when the surfaces differ in size.
var ErrSizeMismatch = errors.New("surface: size mismatch")

// Surface is an offscreen pixel buffer with a drawing context into it.
//
// The zero value is not usable; create surfaces with New.
type Surface struct {
	alloc  Allocator
	size   image.Point
	pixmap *gg.Pixmap
	dc     *gg.Context
}

// New creates a released surface backed by alloc.
// A nil alloc selects the process-wide Default pool.
func New(alloc Allocator) *Surface {
	if alloc == nil {
		alloc = Default()
	}
	return &Surface{alloc: alloc}
}

// EnsureValid makes sure the surface holds a buffer of exactly size and
// returns the drawing context into it.
//
// If the current buffer already has that size it is kept untouched,
// content included. Otherwise the old buffer is released and a new, zeroed
// one is acquired. If acquisition fails the surface is left released.
func (s *Surface) EnsureValid(size image.Point) (*gg.Context, error) {
	if s.pixmap != nil && s.size == size {
		return s.dc, nil
	}
	s.Release()

	pm, err := s.alloc.Acquire(size)
	if err != nil {
		return nil, fmt.Errorf("surface: allocate %dx%d: %w", size.X, size.Y, err)
	}

	s.pixmap = pm
	s.size = size
	s.dc = gg.NewContext(size.X, size.Y, gg.WithPixmap(pm))
	return s.dc, nil
}

// Release disposes the buffer. Safe to call on a released surface.
func (s *Surface) Release() {
	if s.pixmap == nil {
		return
	}
	if s.dc != nil {
		_ = s.dc.Close()
		s.dc = nil
	}
	s.alloc.Release(s.pixmap)
	s.pixmap = nil
	s.size = image.Point{}
}

// Valid reports whether the surface holds a buffer of exactly size.
func (s *Surface) Valid(size image.Point) bool {
	return s.pixmap != nil && s.size == size
}

// Allocated reports whether the surface holds a buffer.
func (s *Surface) Allocated() bool {
	return s.pixmap != nil
}

// Size returns the buffer size, or the zero point when released.
func (s *Surface) Size() image.Point {
	return s.size
}

// Context returns the drawing context, or nil when released.
func (s *Surface) Context() *gg.Context {
	return s.dc
}

// Pixmap returns the backing pixmap, or nil when released.
func (s *Surface) Pixmap() *gg.Pixmap {
	return s.pixmap
}

// Image returns an *image.RGBA sharing the buffer memory, or nil when
// released. Writes through the image are writes to the surface.
func (s *Surface) Image() *image.RGBA {
	if s.pixmap == nil {
		return nil
	}
	return &image.RGBA{
		Pix:    s.pixmap.Data(),
		Stride: s.size.X * 4,
		Rect:   image.Rect(0, 0, s.size.X, s.size.Y),
	}
}

// Clear zeroes every pixel.
func (s *Surface) Clear() {
	if s.pixmap != nil {
		clear(s.pixmap.Data())
	}
}

// CopyFrom replaces the content of s with the content of src.
// Both surfaces must be allocated at the same size.
func (s *Surface) CopyFrom(src *Surface) error {
	if src == nil || !src.Allocated() {
		return fmt.Errorf("%w: source not allocated", ErrSizeMismatch)
	}
	if s.pixmap == nil || src.size != s.size {
		return fmt.Errorf("%w: source %v, target %v", ErrSizeMismatch, src.size, s.size)
	}
	copy(s.pixmap.Data(), src.pixmap.Data())
	return nil
}
