// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package surface

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"sync/atomic"

	"github.com/gogpu/gg"
)

// Allocation errors.
var (
	// ErrInvalidSize is returned when a buffer with a non-positive dimension
	// is requested.
	ErrInvalidSize = errors.New("surface: invalid buffer size")

	// ErrTooLarge is returned when a request exceeds the pool watermark.
	ErrTooLarge = errors.New("surface: requested size exceeds pool watermark")
)

const (
	// DefaultMaxPerBucket is the number of released buffers of one size
	// retained by the default pool.
	DefaultMaxPerBucket = 4

	// DefaultMaxPixels is the watermark of the default pool (8K x 8K).
	DefaultMaxPixels = 8192 * 8192
)

// Allocator hands out pixel buffers for surfaces.
//
// Implementations must be safe for concurrent use, since one allocator is
// typically shared by every compositor in the process.
type Allocator interface {
	// Acquire returns a zeroed pixmap of exactly size.
	Acquire(size image.Point) (*gg.Pixmap, error)

	// Release hands a pixmap back. The caller must not use it afterwards.
	Release(pm *gg.Pixmap)
}

// PoolStats holds pool counters.
type PoolStats struct {
	Acquired  uint64 // Buffers handed out
	Reused    uint64 // Acquisitions served from a bucket
	Released  uint64 // Buffers returned
	Discarded uint64 // Returned buffers dropped because the bucket was full
}

// Pool is a thread-safe Allocator that reuses identically sized pixmaps.
type Pool struct {
	mu           sync.Mutex
	buckets      map[image.Point][]*gg.Pixmap
	maxPerBucket int // 0 or negative means unlimited
	maxPixels    int // 0 or negative means no watermark

	acquired  atomic.Uint64
	reused    atomic.Uint64
	released  atomic.Uint64
	discarded atomic.Uint64
}

// NewPool creates a pool retaining at most maxPerBucket released buffers per
// size and refusing any request larger than maxPixels pixels.
func NewPool(maxPerBucket, maxPixels int) *Pool {
	return &Pool{
		buckets:      make(map[image.Point][]*gg.Pixmap),
		maxPerBucket: maxPerBucket,
		maxPixels:    maxPixels,
	}
}

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// Default returns the process-wide pool.
func Default() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(DefaultMaxPerBucket, DefaultMaxPixels)
	})
	return defaultPool
}

// MaxPixels returns the pool watermark.
func (p *Pool) MaxPixels() int {
	return p.maxPixels
}

// Acquire implements Allocator.
func (p *Pool) Acquire(size image.Point) (*gg.Pixmap, error) {
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidSize, size.X, size.Y)
	}
	if p.maxPixels > 0 && size.X*size.Y > p.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d > %d pixels", ErrTooLarge, size.X, size.Y, p.maxPixels)
	}

	p.mu.Lock()
	bucket := p.buckets[size]
	if n := len(bucket); n > 0 {
		pm := bucket[n-1]
		bucket[n-1] = nil
		p.buckets[size] = bucket[:n-1]
		p.mu.Unlock()

		clear(pm.Data())
		p.acquired.Add(1)
		p.reused.Add(1)
		return pm, nil
	}
	p.mu.Unlock()

	p.acquired.Add(1)
	return gg.NewPixmap(size.X, size.Y), nil
}

// Release implements Allocator. Nil pixmaps are ignored.
func (p *Pool) Release(pm *gg.Pixmap) {
	if pm == nil {
		return
	}
	p.released.Add(1)

	key := image.Pt(pm.Width(), pm.Height())

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[key]
	if p.maxPerBucket > 0 && len(bucket) >= p.maxPerBucket {
		p.discarded.Add(1)
		return
	}
	p.buckets[key] = append(bucket, pm)
}

// Retained returns the number of idle buffers held by the pool.
func (p *Pool) Retained() int {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}

// Purge drops every idle buffer.
func (p *Pool) Purge() {
	p.mu.Lock()
	clear(p.buckets)
	p.mu.Unlock()
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Acquired:  p.acquired.Load(),
		Reused:    p.reused.Load(),
		Released:  p.released.Load(),
		Discarded: p.discarded.Load(),
	}
}

var _ Allocator = (*Pool)(nil)
