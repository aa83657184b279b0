package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestParsePID(t *testing.T) {
	for _, tc := range []struct {
		input   string
		pid     int
		wantErr bool
	}{
		{input: "42", pid: 42},
		{input: " 7 ", pid: 7},
		{input: "", wantErr: true},
		{input: "0", wantErr: true},
		{input: "-3", wantErr: true},
		{input: "12a", wantErr: true},
	} {
		pid, err := parsePID(tc.input)
		if tc.wantErr {
			if err == nil {
				t.Errorf("expected %q to be rejected, got pid %d", tc.input, pid)
			}
			continue
		}
		if err != nil || pid != tc.pid {
			t.Errorf("expected %q to parse as %d, got %d (%v)", tc.input, tc.pid, pid, err)
		}
	}
}

func TestOpenTraces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trace.csv")
	if err := os.WriteFile(path, []byte("timestamp (ns), a\n1, x\n"), 0o644); err != nil {
		t.Fatalf("failed writing trace: %v", err)
	}
	files, err := openTraces([]string{path, "-"})
	if err != nil {
		t.Fatalf("expected traces to open, got %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 streams, got %d", len(files))
	}
	if _, named := files[1].(interface{ Name() string }); named {
		t.Errorf("expected stdin to be opened without a file name")
	}
	for _, f := range files {
		f.Close()
	}
	if _, err := openTraces([]string{path, filepath.Join(dir, "missing.csv")}); err == nil {
		t.Errorf("expected a missing trace to fail")
	}
}
