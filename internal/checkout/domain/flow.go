package domain

import "fmt"

type FlowState string

const (
	StateIdle                FlowState = "idle"
	StateComposing           FlowState = "composing"
	StateDispatchedToChannel FlowState = "dispatched_to_channel"
	StatePersistAttempted    FlowState = "persist_attempted"
	StateCleared             FlowState = "cleared"
)

var nextState = map[FlowState]FlowState{
	StateIdle:                StateComposing,
	StateComposing:           StateDispatchedToChannel,
	StateDispatchedToChannel: StatePersistAttempted,
	StatePersistAttempted:    StateCleared,
}

// Flow tracks one checkout. PersistAttempted means the background save was
// started, not that it finished.
type Flow struct {
	OrderID string
	State   FlowState
}

func NewFlow(orderID string) *Flow {
	return &Flow{OrderID: orderID, State: StateIdle}
}

func (f *Flow) Advance(to FlowState) error {
	if nextState[f.State] != to {
		return fmt.Errorf("checkout %s: illegal transition %s -> %s", f.OrderID, f.State, to)
	}
	f.State = to
	return nil
}
