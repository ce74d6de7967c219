package sizing

import (
	"sync"

	"github.com/matzehuels/topoview/pkg/errors"
)

// StaticContainer is a container with fixed dimensions, used by batch
// renders such as the CLI. Containers are identified by pointer, so two
// StaticContainers with equal dimensions are still distinct.
type StaticContainer struct {
	Width, Height float64
}

// NewStaticContainer returns a container of the given size.
func NewStaticContainer(width, height float64) *StaticContainer {
	return &StaticContainer{Width: width, Height: height}
}

// Bounds returns the fixed dimensions.
func (c *StaticContainer) Bounds() (float64, float64, error) {
	return c.Width, c.Height, nil
}

// ResizableContainer is a container whose dimensions are reported by the
// host, for example a browser viewport over a WebSocket. It is unattached
// until the first Resize and safe for concurrent use.
type ResizableContainer struct {
	mu            sync.RWMutex
	attached      bool
	width, height float64
}

// NewResizableContainer returns an unattached container.
func NewResizableContainer() *ResizableContainer {
	return &ResizableContainer{}
}

// Resize records new dimensions and marks the container attached.
func (c *ResizableContainer) Resize(width, height float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.width, c.height = width, height
	c.attached = true
}

// Detach marks the container as no longer measurable.
func (c *ResizableContainer) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attached = false
}

// Bounds returns the last reported dimensions, or an error while detached.
func (c *ResizableContainer) Bounds() (float64, float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.attached {
		return 0, 0, errors.New(errors.ErrCodeNotFound, "container not attached")
	}
	return c.width, c.height, nil
}
