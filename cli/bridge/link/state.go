package link

// State is the link connection lifecycle. Transitions are driven only by
// I/O outcomes, never by data content.
type State int32

const (
	Disconnected State = iota
	Connecting
	Connected
	Degraded
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Degraded:
		return "degraded"
	}
	return "unknown"
}
