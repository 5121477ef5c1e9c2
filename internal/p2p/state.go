package p2p

// State is the position of a connection in the handshake state machine.
type State int32

const (
	StateDisconnected State = iota
	StateVersionSent
	StateVersionReceived
	StateReady
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "DISCONNECTED"
	case StateVersionSent:
		return "VERSION_SENT"
	case StateVersionReceived:
		return "VERSION_RECEIVED"
	case StateReady:
		return "READY"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}
