package tree

import (
	"fmt"
	"strings"
)

// Status is the solver-reported outcome of a search node. The numeric values
// are part of the search log protocol and must not change.
type Status uint8

const (
	Solved       Status = 0
	Failed       Status = 1
	Branch       Status = 2
	Undetermined Status = 3
	Stop         Status = 4
	Unstop       Status = 5
	Skipped      Status = 6
	Merging      Status = 7
)

var statusNames = [...]string{
	Solved:       "solved",
	Failed:       "failed",
	Branch:       "branch",
	Undetermined: "undetermined",
	Stop:         "stop",
	Unstop:       "unstop",
	Skipped:      "skipped",
	Merging:      "merging",
}

func (s Status) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// Valid reports whether s is one of the protocol values.
func (s Status) Valid() bool { return int(s) < len(statusNames) }

// ParseStatus converts a status name (case-insensitive) into a Status.
func ParseStatus(name string) (Status, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range statusNames {
		if n == name {
			return Status(i), nil
		}
	}
	return Undetermined, fmt.Errorf("unknown status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// CanTransition reports whether a node with status s may be changed to next.
// Setting the current status again is always allowed.
func (s Status) CanTransition(next Status) bool {
	if s == next {
		return true
	}
	switch s {
	case Undetermined:
		return next.Valid()
	case Skipped:
		return next == Failed || next == Branch
	case Branch:
		return next == Stop
	case Stop:
		return next == Unstop
	case Unstop:
		return next == Stop
	}
	return false
}

// IsBranching reports whether s is one of the statuses that carry children
// produced by the solver.
func (s Status) IsBranching() bool {
	return s == Branch || s == Stop || s == Unstop
}
