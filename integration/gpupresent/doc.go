// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpupresent presents the frames of a layered.Compositor in a gogpu
// GPU-accelerated window.
//
// The compositor blits into a CPU staging frame owned by the Presenter; the
// Presenter uploads that frame to a GPU texture and draws it. The data flow is:
//
//	layers (gg.Context) -> staging frame (CPU) -> GPU Texture -> Window
//
// # Usage
//
//	p, err := gpupresent.New(app.GPUContextProvider(), 800, 600)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//	p.OnRedraw(app.RequestRedraw)
//
//	comp, err := layered.New(p, layered.WithClientSize(800, 600))
//	...
//	app.OnDraw(func(dc *gogpu.Context) {
//	    p.Compose(comp)
//	    p.RenderTo(dc.AsTextureDrawer())
//	})
//
// The Presenter implements layered.Host: repaint requests from the
// compositor are accumulated into a damage rectangle, which the next
// Compose hands to the compositor as its clip.
//
// # Thread Safety
//
// RequestRepaint and Damage are safe for concurrent use. Every other method
// must be called on the rendering goroutine.
//
// # Integration Without Circular Imports
//
// This package only depends on gpucontext interfaces:
//
//   - gpucontext.DeviceProvider for device access
//   - gpucontext.TextureDrawer and gpucontext.TextureCreator for drawing
package gpupresent
