package coursewatch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGateSendsOncePerOpenEpisode(t *testing.T) {
	gate := &notificationGate{}

	sends := 0
	for _, seats := range []int{0, 0, 3, 3, 0, 2} {
		if gate.Observe(seats) {
			sends++
			gate.Sent()
		}
	}
	require.Equal(t, 2, sends)
}

func TestGateNeverFiresWhileFull(t *testing.T) {
	gate := &notificationGate{}

	for _, seats := range []int{0, 0, 0} {
		require.False(t, gate.Observe(seats))
	}
	require.False(t, gate.NotificationSent())
}

func TestGateSuppressesAfterSend(t *testing.T) {
	gate := &notificationGate{}

	sends := 0
	for _, seats := range []int{5, 5, 5} {
		if gate.Observe(seats) {
			sends++
			gate.Sent()
		}
	}
	require.Equal(t, 1, sends)
	require.True(t, gate.NotificationSent())
}

func TestGateRetriesFailedSend(t *testing.T) {
	gate := &notificationGate{}

	// the first qualifying cycle fires but the send fails, so Sent()
	// is never called and the next cycle must fire again
	require.True(t, gate.Observe(4))
	require.True(t, gate.Observe(4))
	gate.Sent()
	require.False(t, gate.Observe(4))
}

func TestGateRearmsOnlyAfterClosing(t *testing.T) {
	gate := &notificationGate{}

	require.True(t, gate.Observe(1))
	gate.Sent()
	require.False(t, gate.Observe(2))
	require.False(t, gate.Observe(0))
	require.True(t, gate.Observe(1))
}
