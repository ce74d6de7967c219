// Package rendering owns the lifecycle of one topology view.
//
// A [Rendering] is attached to a container, accumulates a dataset, a node
// selection and an optional graph size, and on [Rendering.Render] builds
// the scene and starts the layout simulation. Afterwards every setter takes
// effect on the next frame.
//
// # Frames
//
// Frames are requested through a [FrameScheduler]. Requests coalesce: at
// most one frame is pending at a time, and a ticking simulation requests
// the next frame from inside the current one. [ManualFrames] lets tests and
// batch renders step frames explicitly; [Loop] fires them from a goroutine
// at a fixed rate.
//
//	r, _ := rendering.New(sizing.NewStaticContainer(500, 500))
//	defer r.Close()
//	r.SetDataset(ds)
//	r.Render()
//	r.Settle(400)
//	svg := r.SVG()
//
// # Containers
//
// A container can be held by one instance at a time. Attaching a second
// instance fails with errors.ErrCodeContainerBusy until the first is closed.
package rendering
