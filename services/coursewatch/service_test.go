package coursewatch

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"coursewatch-backend/lib/mailer"
	"coursewatch-backend/lib/scrapers/banner"
	"coursewatch-backend/lib/snapstore/db"
	"coursewatch-backend/lib/testutil"

	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	mu        sync.Mutex
	seats     int
	session   banner.SessionStatus
	pollErr   error
	polls     int
	pollTimes []time.Time
}

func (c *fakeClient) set(seats int, session banner.SessionStatus, pollErr error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seats = seats
	c.session = session
	c.pollErr = pollErr
}

func (c *fakeClient) KeepAlive(ctx context.Context) banner.SessionStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

func (c *fakeClient) Poll(ctx context.Context, crn string) (banner.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	c.pollTimes = append(c.pollTimes, time.Now())
	if c.pollErr != nil {
		return banner.Snapshot{}, c.pollErr
	}
	return banner.Snapshot{
		CRN:            crn,
		CourseCode:     "COMP2659",
		Title:          "Computing Machinery I",
		SeatsAvailable: c.seats,
		Time:           time.Now(),
	}, nil
}

func (c *fakeClient) pollCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.polls
}

func (c *fakeClient) pollGaps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	var gaps []time.Duration
	for i := 1; i < len(c.pollTimes); i++ {
		gaps = append(gaps, c.pollTimes[i].Sub(c.pollTimes[i-1]))
	}
	return gaps
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	fail bool
}

func (m *fakeMailer) Send(ctx context.Context, email mailer.Email) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return fmt.Errorf("smtp is down")
	}
	m.sent = append(m.sent, email)
	return nil
}

func (m *fakeMailer) Ready() bool { return true }

func (m *fakeMailer) setFail(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail = fail
}

func (m *fakeMailer) sentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

func setupOptions(t *testing.T, client *fakeClient, mail *fakeMailer, options Options) (*Service, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "coursewatch",
		DbSchema: db.Schema,
	})

	options.NewClient = func(creds banner.Credentials) (CourseClient, error) {
		return client, nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	service, err := NewService(ctx, res.DB, mail, options)
	require.NoError(t, err)

	return service, func() {
		cancel()
		cleanup()
	}
}

func setup(t *testing.T, client *fakeClient, mail *fakeMailer) (*Service, func()) {
	return setupOptions(t, client, mail, Options{
		CheckInterval:  time.Millisecond * 5,
		KeepAlivePause: time.Millisecond,
	})
}

func start(t *testing.T, service *Service) string {
	id, err := service.StartMonitor(context.Background(), StartMonitorRequest{
		Name:        "Avery",
		Email:       "a@x.com",
		CRN:         "13254",
		Credentials: banner.Credentials{"JSESSIONID": "abc"},
	})
	require.NoError(t, err)
	return id
}

func TestStartMonitorValidatesInput(t *testing.T) {
	service, cleanup := setup(t, &fakeClient{}, &fakeMailer{})
	defer cleanup()

	_, err := service.StartMonitor(context.Background(), StartMonitorRequest{
		Name:  "Avery",
		Email: "a@x.com",
	})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestMonitorNotifiesWhenSeatOpens(t *testing.T) {
	client := &fakeClient{}
	mail := &fakeMailer{}
	service, cleanup := setup(t, client, mail)
	defer cleanup()

	id := start(t, service)

	require.Eventually(t, func() bool {
		return client.pollCount() >= 3
	}, time.Second*2, time.Millisecond)
	require.Equal(t, 0, mail.sentCount())

	client.set(2, banner.StatusAlive, nil)

	require.Eventually(t, func() bool {
		return mail.sentCount() == 1
	}, time.Second*2, time.Millisecond)

	monitors := service.ListMonitors(context.Background())
	require.Len(t, monitors, 1)
	require.Equal(t, id, monitors[0].Id)
	require.True(t, monitors[0].NotificationSent)
	require.Equal(t, 2, monitors[0].LastSeats)

	// the open episode already got its email, later cycles stay quiet
	before := client.pollCount()
	require.Eventually(t, func() bool {
		return client.pollCount() >= before+3
	}, time.Second*2, time.Millisecond)
	require.Equal(t, 1, mail.sentCount())

	require.Equal(t, "a@x.com", mail.sent[0].To)
	require.Contains(t, mail.sent[0].Subject, "Seat Available")
}

func TestMonitorRetriesFailedSend(t *testing.T) {
	client := &fakeClient{}
	mail := &fakeMailer{fail: true}
	service, cleanup := setup(t, client, mail)
	defer cleanup()

	start(t, service)
	client.set(1, banner.StatusAlive, nil)

	require.Eventually(t, func() bool {
		return client.pollCount() >= 3
	}, time.Second*2, time.Millisecond)
	require.Equal(t, 0, mail.sentCount())

	mail.setFail(false)
	require.Eventually(t, func() bool {
		return mail.sentCount() == 1
	}, time.Second*2, time.Millisecond)
}

func TestMonitorStoresSnapshots(t *testing.T) {
	client := &fakeClient{seats: 4}
	service, cleanup := setup(t, client, &fakeMailer{})
	defer cleanup()

	start(t, service)

	require.Eventually(t, func() bool {
		snapshot, err := service.GetLatestSnapshot(context.Background(), "13254")
		return err == nil && snapshot.SeatsAvailable == 4
	}, time.Second*2, time.Millisecond)
}

func TestSessionExpiryIsTerminal(t *testing.T) {
	client := &fakeClient{session: banner.StatusExpired}
	service, cleanup := setup(t, client, &fakeMailer{})
	defer cleanup()

	start(t, service)

	require.Eventually(t, func() bool {
		monitors := service.ListMonitors(context.Background())
		return len(monitors) == 1 && monitors[0].Status == StatusSessionExpired
	}, time.Second*2, time.Millisecond)

	// the monitor stays listed so operators can see why it died
	monitors := service.ListMonitors(context.Background())
	require.False(t, monitors[0].Active)

	snapshot, err := service.GetLatestSnapshot(context.Background(), "13254")
	require.NoError(t, err)
	require.NotEmpty(t, snapshot.Error)

	// no more polls once the session is gone
	count := client.pollCount()
	time.Sleep(time.Millisecond * 50)
	require.Equal(t, count, client.pollCount())
}

func TestStopMonitorRemovesIt(t *testing.T) {
	client := &fakeClient{}
	service, cleanup := setup(t, client, &fakeMailer{})
	defer cleanup()

	id := start(t, service)
	require.NoError(t, service.StopMonitor(context.Background(), id))
	require.Empty(t, service.ListMonitors(context.Background()))

	require.ErrorIs(t, service.StopMonitor(context.Background(), id), ErrNotFound)

	count := client.pollCount()
	time.Sleep(time.Millisecond * 50)
	require.LessOrEqual(t, client.pollCount(), count+1)
}

func TestMonitorBacksOffWhileUnreachable(t *testing.T) {
	base := time.Millisecond * 10
	client := &fakeClient{pollErr: banner.ErrUnreachable}
	service, cleanup := setupOptions(t, client, &fakeMailer{}, Options{
		CheckInterval:     base,
		BackoffMultiplier: 20,
		// keep heartbeats out of the way so every cycle polls
		KeepAliveEvery: 1000,
	})
	defer cleanup()

	start(t, service)

	// three straight failures degrade the cadence, so the gap after the
	// third poll must be well above the base interval
	require.Eventually(t, func() bool {
		return client.pollCount() >= 5
	}, time.Second*5, time.Millisecond)

	gaps := client.pollGaps()
	require.Greater(t, gaps[2], base*5)

	// the first success snaps the cadence back to the base interval
	client.set(0, banner.StatusAlive, nil)
	recovered := client.pollCount()
	require.Eventually(t, func() bool {
		return client.pollCount() >= recovered+3
	}, time.Second*5, time.Millisecond)

	gaps = client.pollGaps()
	require.Less(t, gaps[len(gaps)-1], base*10)
}

func TestUnreachableHeartbeatSkipsPoll(t *testing.T) {
	client := &fakeClient{session: banner.StatusUnreachable}
	service, cleanup := setupOptions(t, client, &fakeMailer{}, Options{
		CheckInterval:  time.Millisecond * 5,
		KeepAliveEvery: 1,
		KeepAlivePause: time.Millisecond,
	})
	defer cleanup()

	start(t, service)

	// every cycle heartbeats first and the portal is down, so no poll
	// ever goes out and the monitor stays alive for when it recovers
	time.Sleep(time.Millisecond * 50)
	require.Equal(t, 0, client.pollCount())

	monitors := service.ListMonitors(context.Background())
	require.Len(t, monitors, 1)
	require.True(t, monitors[0].Active)

	client.set(0, banner.StatusAlive, nil)
	require.Eventually(t, func() bool {
		return client.pollCount() > 0
	}, time.Second*5, time.Millisecond)
}

func TestHealthCheck(t *testing.T) {
	service, cleanup := setup(t, &fakeClient{}, &fakeMailer{})
	defer cleanup()

	start(t, service)

	health := service.HealthCheck(context.Background())
	require.True(t, health.EmailCapabilityReady)
	require.Equal(t, 1, health.ActiveMonitorCount)
	require.Greater(t, health.Uptime, time.Duration(0))
}
