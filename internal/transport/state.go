package transport

import (
	"slices"
	"time"

	"github.com/sprava/spravaterm/internal/bus"
	"go.uber.org/zap"
)

// State is the connection lifecycle state of the push transport.
type State string

const (
	Idle       State = "IDLE"
	Connecting State = "CONNECTING"
	Open       State = "OPEN"
	Closed     State = "CLOSED"
)

// validTransitions defines allowed state transitions. Connecting->Connecting
// covers a failed attempt rolling into the next retry.
var validTransitions = map[State][]State{
	Idle:       {Connecting},
	Connecting: {Connecting, Open, Closed},
	Open:       {Connecting, Closed},
	Closed:     {Connecting},
}

// StateChange is the payload for transport.state_changed bus events.
type StateChange struct {
	From State
	To   State
}

// setState moves the machine to a new state and announces it on the bus.
// Callers must hold t.mu.
func (t *Transport) setState(to State) {
	from := t.state
	if from == to {
		return
	}
	if !slices.Contains(validTransitions[from], to) {
		t.logger.Warn("invalid transport state transition",
			zap.String("from", string(from)), zap.String("to", string(to)))
		return
	}
	t.state = to
	if t.bus != nil {
		t.bus.Publish(bus.Event{
			Kind:      bus.KindTransportState,
			Timestamp: time.Now(),
			Payload:   StateChange{From: from, To: to},
		})
	}
}
