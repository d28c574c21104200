// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package surface provides the offscreen drawing buffers used by layered
// compositing.
//
// A Surface pairs a [gg.Pixmap] with a [gg.Context] drawing into it. The
// pixmap is allocated lazily by [Surface.EnsureValid] and is always exactly
// the size last requested: asking for a different size releases the old
// buffer before acquiring a new one.
//
// Buffers come from an [Allocator]. [Pool] is the standard allocator; it
// buckets released pixmaps by size for reuse and enforces a maximum-pixel
// watermark so that a runaway size request fails instead of exhausting
// memory.
//
// # Usage
//
//	pool := surface.NewPool(4, 4096*4096)
//	s := surface.New(pool)
//	defer s.Release()
//
//	dc, err := s.EnsureValid(image.Pt(800, 600))
//	if err != nil {
//	    return err
//	}
//	dc.SetRGB(1, 0, 0)
//	dc.DrawRectangle(10, 10, 100, 100)
//	dc.Fill()
//
// Surfaces are NOT safe for concurrent use. A Pool is.
//
// [gg.Pixmap]: https://pkg.go.dev/github.com/gogpu/gg#Pixmap
// [gg.Context]: https://pkg.go.dev/github.com/gogpu/gg#Context
package surface
