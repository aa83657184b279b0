//go:build linux

package procfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"git.sr.ht/~whereswaldon/statechart/probe"
	"golang.org/x/sys/unix"
)

type taskFile struct {
	path string
	name string
	file *os.File
	gone bool
}

var _ probe.Probe = (*taskFile)(nil)

func (t *taskFile) Name() string {
	return t.name
}

func (t *taskFile) Read() (string, bool, error) {
	if t.gone {
		return "", false, nil
	}
	var buf [512]byte
	if _, err := t.file.Seek(0, io.SeekStart); err != nil {
		return "", false, fmt.Errorf("failed rewinding %s: %w", t.path, err)
	}
	n, err := t.file.Read(buf[:])
	if err != nil {
		if errors.Is(err, unix.ESRCH) || errors.Is(err, io.EOF) {
			// The thread exited.
			t.gone = true
			t.file.Close()
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed reading %s: %w", t.path, err)
	}
	_, state, err := parseStat(string(buf[:n]))
	if err != nil {
		return "", false, fmt.Errorf("failed parsing %s: %w", t.path, err)
	}
	return state, true, nil
}

// FindThreads returns a probe for every thread of the process pid, ordered
// by thread ID.
func FindThreads(pid int) ([]probe.Probe, error) {
	taskDir := filepath.Join("/proc", strconv.Itoa(pid), "task")
	entries, err := os.ReadDir(taskDir)
	if err != nil {
		return nil, fmt.Errorf("failed listing threads of %d: %w", pid, err)
	}
	sort.Slice(entries, func(i, j int) bool {
		a, _ := strconv.Atoi(entries[i].Name())
		b, _ := strconv.Atoi(entries[j].Name())
		return a < b
	})
	probes := make([]probe.Probe, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		t, err := openTask(filepath.Join(taskDir, entry.Name()), entry.Name())
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				// Exited between listing and opening.
				continue
			}
			return nil, err
		}
		probes = append(probes, t)
	}
	return probes, nil
}

func openTask(dir, tid string) (*taskFile, error) {
	path := filepath.Join(dir, "stat")
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed opening %q: %w", path, err)
	}
	name := tid
	var buf [512]byte
	if n, err := file.Read(buf[:]); err == nil {
		if comm, _, err := parseStat(string(buf[:n])); err == nil {
			name = comm + " (" + tid + ")"
		}
	}
	return &taskFile{path: path, name: name, file: file}, nil
}

// Alive reports whether the process pid still exists.
func Alive(pid int) bool {
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
