package resource

import (
	"context"
	"io"
)

// Writer throttles writes through a Controller.
type Writer struct {
	ctx context.Context
	w   io.Writer
	c   *Controller
}

// NewWriter wraps w. A nil controller passes writes straight through.
func NewWriter(ctx context.Context, w io.Writer, c *Controller) *Writer {
	return &Writer{ctx: ctx, w: w, c: c}
}

func (w *Writer) Write(p []byte) (int, error) {
	if err := w.c.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}
