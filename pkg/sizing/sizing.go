// Package sizing computes the canvas dimensions of a rendering.
//
// Without an explicit override the canvas is as wide as the host container
// minus [Inset] and [DefaultHeight] tall, independent of the container's
// height. An explicit size set with [Controller.SetGraphSize] persists
// across container resizes until [Controller.Reset].
package sizing

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/topoview/pkg/errors"
)

const (
	// Inset is subtracted from the container width for surrounding chrome.
	Inset = 16.0

	// DefaultHeight is the canvas height until explicitly overridden.
	DefaultHeight = 700.0

	// FallbackWidth stands in for the container width when the container
	// is unavailable or has no width yet.
	FallbackWidth = 960.0
)

// Container is a host element with a bounding box.
type Container interface {
	// Bounds returns the current width and height of the container.
	// An error means the container is not attached yet.
	Bounds() (width, height float64, err error)
}

// Controller tracks the canvas size of one rendering instance.
type Controller struct {
	container Container
	override  *[2]float64
	logger    *log.Logger
}

// New creates a controller for c. A nil logger discards debug output.
func New(c Container, logger *log.Logger) *Controller {
	return &Controller{container: c, logger: logger}
}

// ContainerDimensions returns the container's current bounding box. When the
// container cannot be measured the fallback width and default height are
// reported instead.
func (c *Controller) ContainerDimensions() [2]float64 {
	if c.container == nil {
		c.debug("no container, using fallback dimensions")
		return [2]float64{FallbackWidth, DefaultHeight}
	}
	w, h, err := c.container.Bounds()
	if err != nil {
		c.debug("container bounds unavailable, using fallback dimensions", "error", err)
		return [2]float64{FallbackWidth, DefaultHeight}
	}
	if w <= 0 {
		c.debug("container has no width, using fallback width", "height", h)
		w = FallbackWidth
	}
	return [2]float64{w, h}
}

// GraphSize returns the explicit override if one is set, and otherwise the
// default policy applied to the current container.
func (c *Controller) GraphSize() [2]float64 {
	if c.override != nil {
		return *c.override
	}
	w := c.ContainerDimensions()[0] - Inset
	if w <= 0 {
		w = FallbackWidth - Inset
	}
	return [2]float64{w, DefaultHeight}
}

// SetGraphSize overrides the canvas size. Non-positive or non-finite sizes
// are rejected with errors.ErrCodeInvalidSize and leave the size unchanged.
func (c *Controller) SetGraphSize(size [2]float64) error {
	if err := errors.ValidateGraphSize(size[0], size[1]); err != nil {
		return err
	}
	c.override = &size
	return nil
}

// Overridden reports whether an explicit size is in effect.
func (c *Controller) Overridden() bool { return c.override != nil }

// Reset drops any explicit override so the default policy applies again.
func (c *Controller) Reset() { c.override = nil }

func (c *Controller) debug(msg string, kv ...any) {
	if c.logger != nil {
		c.logger.Debug(msg, kv...)
	}
}
