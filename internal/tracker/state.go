package tracker

import "github.com/julianstephens/khoshoo3/internal/models"

// State is whether khoshoo3 currently owns the device's DND
type State int

const (
	// Idle: DND is either off or was turned on by someone else
	Idle State = iota
	// WeOwnDND: DND is on because khoshoo3 turned it on
	WeOwnDND
)

func (s State) String() string {
	if s == WeOwnDND {
		return "owned"
	}
	return "idle"
}

// StateFromSettings reads the persisted ownership flag
func StateFromSettings(s models.Settings) State {
	if s.WeEnabledDND {
		return WeOwnDND
	}
	return Idle
}

// Action is the DND call a decision requires
type Action int

const (
	ActionNone Action = iota
	ActionEnable
	ActionDisable
)

func (a Action) String() string {
	switch a {
	case ActionEnable:
		return "enable"
	case ActionDisable:
		return "disable"
	default:
		return "none"
	}
}

// Decision is the outcome of one evaluation
type Decision struct {
	Action Action
	Next   State
}

// Evaluate decides what to do with DND given the ownership state, whether
// now is inside a prayer window and whether DND is currently on.
//
// A DND that is already on while Idle belongs to the user and is never
// claimed, so it is never turned off by khoshoo3 either.
func Evaluate(state State, inWindow, dndActive bool) Decision {
	switch {
	case inWindow && state == WeOwnDND:
		return Decision{Action: ActionEnable, Next: WeOwnDND}
	case inWindow && !dndActive:
		return Decision{Action: ActionEnable, Next: WeOwnDND}
	case inWindow:
		return Decision{Action: ActionNone, Next: Idle}
	case state == WeOwnDND:
		return Decision{Action: ActionDisable, Next: Idle}
	default:
		return Decision{Action: ActionNone, Next: Idle}
	}
}
