// Package report writes revision-aware grep matches out in a configurable
// format, one line per match, the way a grep tool's own output stage would.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rcowham/rcsgrep/rcs"
)

// Writer formats and emits Match records to an underlying io.Writer.
type Writer struct {
	filename string
	w        io.Writer
	format   string
}

// NewWriter wraps w, validating format up front so a bad format string
// fails before any output is produced. An empty format uses rcs.DefaultFormat.
func NewWriter(w io.Writer, format string) (*Writer, error) {
	if format == "" {
		format = rcs.DefaultFormat
	}
	if err := rcs.ValidateFormat(format); err != nil {
		return nil, err
	}
	return &Writer{w: w, format: format}, nil
}

// CreateFile opens filename for writing and returns a Writer over it.
func CreateFile(filename string, format string) (*Writer, error) {
	f, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create %v: %v", filename, err.Error())
	}
	rw, err := NewWriter(f, format)
	if err != nil {
		f.Close()
		return nil, err
	}
	rw.filename = filename
	return rw, nil
}

// SetWriter redirects subsequent output, e.g. to stdout for ad hoc use.
func (rw *Writer) SetWriter(w io.Writer) {
	rw.w = w
}

// Close closes the underlying writer if it implements io.Closer, whether it
// was opened by CreateFile or supplied through NewWriter or SetWriter.
func (rw *Writer) Close() error {
	if c, ok := rw.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteMatch formats one match according to the writer's format string and
// emits it as a single colon-separated line.
func (rw *Writer) WriteMatch(f *rcs.File, m rcs.Match) error {
	tuple, err := f.FormatMatch(m, rw.format)
	if err != nil {
		return err
	}
	fields := make([]string, len(tuple))
	for i, v := range tuple {
		if tags, ok := v.([]string); ok {
			fields[i] = strings.Join(tags, ",")
			continue
		}
		fields[i] = fmt.Sprint(v)
	}
	_, err = fmt.Fprintln(rw.w, strings.Join(fields, ":"))
	return err
}

// WriteAll writes every match in order, stopping at the first error.
func (rw *Writer) WriteAll(f *rcs.File, matches []rcs.Match) error {
	for _, m := range matches {
		if err := rw.WriteMatch(f, m); err != nil {
			return err
		}
	}
	return nil
}
