package backend

import (
	"bufio"
	"errors"
	"io"
)

// lineReader only hands out complete newline-terminated lines, so a CSV
// parser following a trace that is still being written never sees half a
// row. Bytes after the last newline are held back until their line is
// finished, and a line longer than the caller's buffer is spread across
// several reads. When not following, an unterminated final line is
// returned at EOF instead of being held back.
type lineReader struct {
	r      *bufio.Reader
	follow bool
	// partial is the unfinished line read so far.
	partial []byte
	// pending is the part of a finished line not yet returned.
	pending []byte
}

var _ io.Reader = (*lineReader)(nil)

func newLineReader(r io.Reader, follow bool) *lineReader {
	return &lineReader{
		r:      bufio.NewReader(r),
		follow: follow,
	}
}

func (l *lineReader) Read(b []byte) (int, error) {
	if len(l.pending) == 0 {
		data, err := l.r.ReadBytes('\n')
		l.partial = append(l.partial, data...)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return 0, err
			}
			if l.follow || len(l.partial) == 0 {
				return 0, io.EOF
			}
		}
		l.pending, l.partial = l.partial, nil
	}
	n := copy(b, l.pending)
	l.pending = l.pending[n:]
	return n, nil
}
