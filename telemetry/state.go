package telemetry

import "fmt"

// State is a step of the telemetry loop.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateSkipCycle
	StateThrottled
	StateSending
	StateDraining
	StateTerminated
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAcquiring:
		return "acquiring"
	case StateSkipCycle:
		return "skip_cycle"
	case StateThrottled:
		return "throttled"
	case StateSending:
		return "sending"
	case StateDraining:
		return "draining"
	case StateTerminated:
		return "terminated"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type stateHook func(State)

func (h stateHook) enter(s State) {
	if h != nil {
		h(s)
	}
}
