// Package lifecycle drives one wake period of the device: capture, connect,
// config check, transmit, then sleep in place or power down.
package lifecycle

// State is the closed set of lifecycle states.
type State int

const (
	Init State = iota
	CreateMessage
	ConfigCheck
	Transmit
	Idle
	Halted
)

func (s State) String() string {
	switch s {
	case Init:
		return "INIT"
	case CreateMessage:
		return "CREATE_MESSAGE"
	case ConfigCheck:
		return "CONFIG_CHECK"
	case Transmit:
		return "TRANSMIT"
	case Idle:
		return "IDLE"
	case Halted:
		return "HALTED"
	default:
		return "UNKNOWN"
	}
}
