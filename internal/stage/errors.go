package stage

import "fmt"

// ConfigError reports an invalid engine configuration: duplicate entity
// identities, a missing background, footprint dimensions that do not match
// the board, and the like. Detected during registration or Start, and fatal.
type ConfigError struct {
	Char rune // offending entity identity, or 0 when not tied to one
	Msg  string
}

func (e *ConfigError) Error() string {
	if e.Char != 0 {
		return fmt.Sprintf("stage: entity %q: %s", e.Char, e.Msg)
	}
	return "stage: " + e.Msg
}

// StateError reports a call that violates the engine's state machine, such
// as stepping before Start or after the episode has terminated. Episodes
// are not resumable after one of these.
type StateError struct {
	Op  string
	Msg string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("stage: %s: %s", e.Op, e.Msg)
}

// ProtocolError reports a violation of an inter-entity communication
// convention, such as a second write to a single-writer Plot key within
// one step. It aborts the episode immediately.
type ProtocolError struct {
	Key string
	Msg string
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("stage: protocol key %q: %s", e.Key, e.Msg)
}
