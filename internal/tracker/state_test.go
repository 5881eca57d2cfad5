package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		state     State
		inWindow  bool
		dndActive bool
		want      Decision
	}{
		{"window opens, dnd off", Idle, true, false, Decision{ActionEnable, WeOwnDND}},
		{"window opens, user dnd on", Idle, true, true, Decision{ActionNone, Idle}},
		{"inside window, owned", WeOwnDND, true, true, Decision{ActionEnable, WeOwnDND}},
		{"inside window, owned but user turned it off", WeOwnDND, true, false, Decision{ActionEnable, WeOwnDND}},
		{"window closed, owned", WeOwnDND, false, true, Decision{ActionDisable, Idle}},
		{"window closed, owned, already off", WeOwnDND, false, false, Decision{ActionDisable, Idle}},
		{"outside window, user dnd on", Idle, false, true, Decision{ActionNone, Idle}},
		{"outside window, dnd off", Idle, false, false, Decision{ActionNone, Idle}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Evaluate(tt.state, tt.inWindow, tt.dndActive))
		})
	}
}

// Disable is only ever decided from WeOwnDND
func TestEvaluateNeverDisablesUnownedDND(t *testing.T) {
	for _, inWindow := range []bool{true, false} {
		for _, active := range []bool{true, false} {
			d := Evaluate(Idle, inWindow, active)
			assert.NotEqual(t, ActionDisable, d.Action, "inWindow=%v active=%v", inWindow, active)
		}
	}
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "owned", WeOwnDND.String())
	assert.Equal(t, "enable", ActionEnable.String())
	assert.Equal(t, "disable", ActionDisable.String())
	assert.Equal(t, "none", ActionNone.String())
}
