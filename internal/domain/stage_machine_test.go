package domain

import (
	"testing"

	"github.com/felixgeelhaar/statekit"
	"github.com/stretchr/testify/assert"
)

func TestStageMachine_Tick(t *testing.T) {
	tests := []struct {
		name string
		at   Stage
		want Stage
		done bool
	}{
		{name: "confirmed to baking", at: StageConfirmed, want: StageBaking},
		{name: "baking to on route", at: StageBaking, want: StageOnRoute},
		{name: "on route to delivered", at: StageOnRoute, want: StageDelivered, done: true},
		{name: "delivered is final", at: StageDelivered, want: StageDelivered, done: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewStageMachine(tt.at)
			assert.Equal(t, tt.at, m.Stage())
			assert.Equal(t, tt.want, m.Tick())
			assert.Equal(t, tt.done, m.Done())
		})
	}
}

func TestStageMachine_NeverDecreases(t *testing.T) {
	m := NewStageMachine(StageConfirmed)
	prev := m.Stage()
	for i := 0; i < 10; i++ {
		cur := m.Tick()
		assert.GreaterOrEqual(t, int(cur), int(prev))
		prev = cur
	}
	assert.Equal(t, StageDelivered, prev)
	assert.True(t, m.Done())
	assert.True(t, prev.Terminal())
}

func TestStageMachine_InvalidStartIsConfirmed(t *testing.T) {
	for _, at := range []Stage{0, -1, 9} {
		m := NewStageMachine(at)
		assert.Equal(t, StageConfirmed, m.Stage())
		assert.False(t, m.Done())
		assert.True(t, m.ChangedAt().IsZero())
	}
}

func TestStageMachine_StampsTransitions(t *testing.T) {
	m := NewStageMachine(StageConfirmed)
	assert.True(t, m.ChangedAt().IsZero())
	m.Tick()
	assert.False(t, m.ChangedAt().IsZero())
}

func TestStageMachine_MachinesAreIndependent(t *testing.T) {
	a := NewStageMachine(StageConfirmed)
	b := NewStageMachine(StageConfirmed)
	a.Tick()
	a.Tick()
	assert.Equal(t, StageOnRoute, a.Stage())
	assert.Equal(t, StageConfirmed, b.Stage())
}

func TestStage_StateIDRoundTrip(t *testing.T) {
	for _, s := range Stages {
		assert.Equal(t, s, StageOf(s.StateID()))
	}
	assert.Equal(t, statekit.StateID("on_route"), StageOnRoute.StateID())
	assert.Equal(t, Stage(0), StageOf("cancelled"))
}
