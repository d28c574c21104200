package layered

import "sync/atomic"

// Stats holds compositor counters. All counts are cumulative since New.
type Stats struct {
	Passes           uint64 // Compositing passes run
	Callbacks        uint64 // Painter invocations, background included
	Skipped          uint64 // Layers left untouched because they were valid
	Copies           uint64 // Source-to-target copies by TryBeginDrawing
	Clears           uint64 // Targets cleared because no source existed
	Allocations      uint64 // Surface buffers acquired
	AllocFailures    uint64 // Surface buffers that could not be acquired
	CallbackFailures uint64 // Painters that returned an error or panicked
	Blits            uint64 // Final blits to the screen
}

// counters are the atomic backing store of Stats, readable from any goroutine.
type counters struct {
	passes           atomic.Uint64
	callbacks        atomic.Uint64
	skipped          atomic.Uint64
	copies           atomic.Uint64
	clears           atomic.Uint64
	allocations      atomic.Uint64
	allocFailures    atomic.Uint64
	callbackFailures atomic.Uint64
	blits            atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Passes:           c.passes.Load(),
		Callbacks:        c.callbacks.Load(),
		Skipped:          c.skipped.Load(),
		Copies:           c.copies.Load(),
		Clears:           c.clears.Load(),
		Allocations:      c.allocations.Load(),
		AllocFailures:    c.allocFailures.Load(),
		CallbackFailures: c.callbackFailures.Load(),
		Blits:            c.blits.Load(),
	}
}
