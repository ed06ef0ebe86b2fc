package domain

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/statekit"
)

// EventTick moves an order one stage along its timeline.
const EventTick statekit.EventType = "TICK"

// ProgressMachine is the delivery timeline. Delivered is final, so ticks
// sent after it change nothing.
type ProgressMachine struct {
	statekit.MachineDef `id:"order_progress" initial:"confirmed"`

	Confirmed statekit.StateNode `on:"TICK->baking/stamp"`
	Baking    statekit.StateNode `on:"TICK->on_route/stamp"`
	OnRoute   statekit.StateNode `on:"TICK->delivered/stamp"`
	Delivered statekit.FinalNode
}

// ProgressContext is the machine's extended state.
type ProgressContext struct {
	ChangedAt time.Time
}

var stageStates = map[Stage]statekit.StateID{
	StageConfirmed: "confirmed",
	StageBaking:    "baking",
	StageOnRoute:   "on_route",
	StageDelivered: "delivered",
}

var progressConfig = mustProgressConfig()

func mustProgressConfig() *statekit.MachineConfig[ProgressContext] {
	registry := statekit.NewActionRegistry[ProgressContext]().
		WithAction("stamp", func(ctx *ProgressContext, _ statekit.Event) {
			ctx.ChangedAt = time.Now()
		})

	m, err := statekit.FromStruct[ProgressMachine, ProgressContext](registry)
	if err != nil {
		panic(fmt.Sprintf("order progress machine: %v", err))
	}
	return m
}

// StageMachine runs one order's timeline.
type StageMachine struct {
	interp *statekit.Interpreter[ProgressContext]
}

// NewStageMachine returns a started machine positioned at stage at. An invalid
// stage starts at Confirmed.
func NewStageMachine(at Stage) *StageMachine {
	m := &StageMachine{interp: statekit.NewInterpreter(progressConfig)}
	m.interp.Start()
	if !at.Valid() {
		return m
	}
	for s := StageConfirmed; s < at; s++ {
		m.interp.Send(statekit.Event{Type: EventTick})
	}
	return m
}

// Tick sends one TICK and returns the stage afterwards.
func (m *StageMachine) Tick() Stage {
	m.interp.Send(statekit.Event{Type: EventTick})
	return m.Stage()
}

func (m *StageMachine) Stage() Stage {
	return StageOf(m.interp.State().Value)
}

// Done reports whether the machine reached its final state.
func (m *StageMachine) Done() bool {
	return m.interp.Done()
}

// ChangedAt is when the last transition happened, zero before the first.
func (m *StageMachine) ChangedAt() time.Time {
	return m.interp.State().Context.ChangedAt
}

// StateID is the machine state for a stage.
func (s Stage) StateID() statekit.StateID {
	return stageStates[s]
}

// StageOf maps a machine state back to its stage, 0 when unknown.
func StageOf(id statekit.StateID) Stage {
	for s, sid := range stageStates {
		if sid == id {
			return s
		}
	}
	return 0
}
