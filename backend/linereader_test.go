package backend

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func readString(t *testing.T, r io.Reader, size int) (string, error) {
	buf := make([]byte, size)
	n, err := r.Read(buf)
	return string(buf[:n]), err
}

func TestLineReaderHoldsPartialRows(t *testing.T) {
	trace := bytes.NewBufferString("timestamp (ns), main\n100, RUNNING\n")
	l := newLineReader(trace, true)
	for _, want := range []string{"timestamp (ns), main\n", "100, RUNNING\n"} {
		got, err := readString(t, l, 1024)
		if err != nil || got != want {
			t.Errorf("expected %q, got %q (%v)", want, got, err)
		}
	}
	// A row still being written must not be visible.
	trace.WriteString("200, SLEE")
	if got, err := readString(t, l, 1024); !errors.Is(err, io.EOF) || got != "" {
		t.Errorf("expected EOF with nothing read, got %q (%v)", got, err)
	}
	trace.WriteString("PING\n300")
	if got, err := readString(t, l, 1024); err != nil || got != "200, SLEEPING\n" {
		t.Errorf("expected the finished row, got %q (%v)", got, err)
	}
	if _, err := readString(t, l, 1024); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF before the last row is finished, got %v", err)
	}
}

func TestLineReaderSmallBuffer(t *testing.T) {
	row := "100, RUNNING, SLEEPING, -\n"
	l := newLineReader(bytes.NewBufferString(row + row), false)
	var got []byte
	for {
		chunk, err := readString(t, l, 4)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunk) > 4 {
			t.Fatalf("read %d bytes into a 4 byte buffer", len(chunk))
		}
		got = append(got, chunk...)
	}
	if string(got) != row+row {
		t.Errorf("expected %q, got %q", row+row, got)
	}
}

type failingReader struct{ err error }

func (f failingReader) Read([]byte) (int, error) {
	return 0, f.err
}

func TestLineReaderError(t *testing.T) {
	boom := errors.New("boom")
	l := newLineReader(failingReader{err: boom}, false)
	if _, err := readString(t, l, 16); !errors.Is(err, boom) {
		t.Errorf("expected the underlying error, got %v", err)
	}
}

func TestLineReaderFinalRow(t *testing.T) {
	l := newLineReader(bytes.NewBufferString("1, a\n2, b"), false)
	for _, want := range []string{"1, a\n", "2, b"} {
		got, err := readString(t, l, 1024)
		if err != nil || got != want {
			t.Errorf("expected %q, got %q (%v)", want, got, err)
		}
	}
	if _, err := readString(t, l, 1024); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF after the final row, got %v", err)
	}
}
