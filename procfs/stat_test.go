package procfs

import "testing"

func TestParseStat(t *testing.T) {
	for _, tc := range []struct {
		stat, comm, state string
		fail              bool
	}{
		{stat: "1234 (bash) S 1 1234 1234 0", comm: "bash", state: Sleeping},
		{stat: "99 (my (odd) name) R 1 2", comm: "my (odd) name", state: Running},
		{stat: "7 (kworker/0:1) I 2 0", comm: "kworker/0:1", state: Idle},
		{stat: "8 (io) D", comm: "io", state: DiskSleep},
		{stat: "9 (dbg) t 1", comm: "dbg", state: Traced},
		{stat: "10 (weird) q 1", comm: "weird", state: Unknown},
		{stat: "11 (trunc)", fail: true},
		{stat: "no parens here", fail: true},
	} {
		comm, state, err := parseStat(tc.stat)
		if tc.fail {
			if err == nil {
				t.Errorf("expected %q to fail to parse", tc.stat)
			}
			continue
		}
		if err != nil {
			t.Errorf("expected %q to parse, got %v", tc.stat, err)
			continue
		}
		if comm != tc.comm || state != tc.state {
			t.Errorf("expected (%q, %q) from %q, got (%q, %q)", tc.comm, tc.state, tc.stat, comm, state)
		}
	}
}
