package procfs

import (
	"fmt"
	"strings"
)

// Thread states as reported by the state field of /proc/<pid>/task/<tid>/stat.
const (
	Running   = "RUNNING"
	Sleeping  = "SLEEPING"
	DiskSleep = "DISK_SLEEP"
	Stopped   = "STOPPED"
	Traced    = "TRACED"
	Zombie    = "ZOMBIE"
	Dead      = "DEAD"
	Idle      = "IDLE"
	Unknown   = "UNKNOWN"
)

func stateName(code byte) string {
	switch code {
	case 'R':
		return Running
	case 'S':
		return Sleeping
	case 'D':
		return DiskSleep
	case 'T':
		return Stopped
	case 't':
		return Traced
	case 'Z':
		return Zombie
	case 'X', 'x':
		return Dead
	case 'I':
		return Idle
	default:
		return Unknown
	}
}

// parseStat extracts the command name and state from the contents of a stat
// file. The command name is wrapped in parentheses and may itself contain
// spaces and parentheses, so the state is found after the last ')'.
func parseStat(stat string) (comm, state string, err error) {
	open := strings.IndexByte(stat, '(')
	end := strings.LastIndexByte(stat, ')')
	if open < 0 || end < open {
		return "", "", fmt.Errorf("malformed stat %q", stat)
	}
	rest := strings.TrimLeft(stat[end+1:], " ")
	if len(rest) < 1 {
		return "", "", fmt.Errorf("stat %q has no state field", stat)
	}
	return stat[open+1 : end], stateName(rest[0]), nil
}
