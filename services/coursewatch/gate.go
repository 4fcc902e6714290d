package coursewatch

import "sync"

type gateState int

const (
	gateNoSeat gateState = iota
	gateOpenNotSent
	gateOpenSent
)

// notificationGate decides whether a fresh snapshot warrants an email right
// now. One gate per monitor; within one open episode (seats staying above
// zero across polls) at most one send ever succeeds. A course going back to
// zero seats re-arms the gate, so a later re-opening notifies again.
type notificationGate struct {
	mu    sync.Mutex
	state gateState
}

// Observe feeds the gate the latest seat count. It reports whether a send
// is due now: either the course just opened, or an earlier send for this
// episode failed and should be retried this cycle.
func (g *notificationGate) Observe(seats int) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if seats == 0 {
		g.state = gateNoSeat
		return false
	}
	if g.state == gateNoSeat {
		g.state = gateOpenNotSent
	}
	return g.state == gateOpenNotSent
}

// Sent records a successful delivery for the current open episode.
func (g *notificationGate) Sent() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = gateOpenSent
}

func (g *notificationGate) NotificationSent() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state == gateOpenSent
}
