package mask

import (
	"io"
)

// Writer filters everything written through it with a Hook before
// handing it to the underlying writer.
type Writer struct {
	out  io.Writer
	hook *Hook
}

// NewWriter wraps out with hook.
func NewWriter(out io.Writer, hook *Hook) *Writer {
	return &Writer{out: out, hook: hook}
}

func (w *Writer) Write(p []byte) (int, error) {
	masked := w.hook.Apply(string(p))
	if _, err := w.out.Write([]byte(masked)); err != nil {
		return 0, err
	}
	// Report the original length; the caller wrote p, not the masked form.
	return len(p), nil
}
