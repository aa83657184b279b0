// Package probe defines the interface shared by sources of live state
// samples.
package probe

// Probe reports the current state of one observed entity.
type Probe interface {
	Name() string
	// Read returns the current state. present is false once the entity has
	// gone away.
	Read() (state string, present bool, err error)
}

// Absent is the state written to a trace for an entity with no state.
const Absent = "-"
