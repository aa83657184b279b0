//go:build !linux

package procfs

import (
	"fmt"
	"runtime"

	"git.sr.ht/~whereswaldon/statechart/probe"
)

func FindThreads(pid int) ([]probe.Probe, error) {
	return nil, fmt.Errorf("thread states are not available on %s", runtime.GOOS)
}

func Alive(pid int) bool {
	return false
}
