package coursewatch

import (
	"context"
	"log/slog"
	"time"

	"coursewatch-backend/lib/mailer"
	"coursewatch-backend/lib/scrapers/banner"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// run drives one monitor until its context ends. Cycles are strictly
// sequential: the ticker paces them, a slow cycle simply delays the next
// one, cycles never overlap.
func (s *Service) run(ctx context.Context, monitor *Monitor) {
	slog.InfoContext(ctx, "monitor started",
		"id", monitor.Id,
		"crn", monitor.CRN,
		"interval", s.options.CheckInterval,
	)

	ticker := time.NewTicker(s.options.CheckInterval)
	defer ticker.Stop()

	cycle := 0
	failures := 0
	degraded := false

	for {
		cycle++
		terminal := s.cycle(ctx, monitor, cycle, &failures)
		if terminal {
			return
		}

		// the cadence degrades after a streak of failures and recovers
		// on the first success
		if failures >= s.options.BackoffAfter && !degraded {
			degraded = true
			interval := s.options.CheckInterval * time.Duration(s.options.BackoffMultiplier)
			ticker.Reset(interval)
			slog.WarnContext(ctx, "monitor backing off",
				"id", monitor.Id,
				"crn", monitor.CRN,
				"failures", failures,
				"interval", interval,
			)
		} else if failures == 0 && degraded {
			degraded = false
			ticker.Reset(s.options.CheckInterval)
			slog.InfoContext(ctx, "monitor recovered",
				"id", monitor.Id,
				"crn", monitor.CRN,
			)
		}

		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "monitor stopped", "id", monitor.Id, "crn", monitor.CRN)
			return
		case <-ticker.C:
		}
	}
}

// cycle performs one heartbeat-then-poll pass. It reports whether the
// monitor hit a terminal condition and must not be scheduled again.
func (s *Service) cycle(ctx context.Context, monitor *Monitor, cycle int, failures *int) bool {
	ctx, span := tracer.Start(ctx, "cycle", trace.WithAttributes(
		attribute.String("monitor.id", monitor.Id),
		attribute.String("crn", monitor.CRN),
		attribute.Int("cycle", cycle),
	))
	defer span.End()

	s.checkCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("crn", monitor.CRN)))

	if cycle%s.options.KeepAliveEvery == 0 {
		status := monitor.client.KeepAlive(ctx)
		switch status {
		case banner.StatusExpired:
			s.expire(ctx, monitor)
			span.SetStatus(codes.Error, "session expired")
			return true
		case banner.StatusUnreachable:
			// transient, skip the poll and let the next cycle retry
			*failures++
			span.SetStatus(codes.Error, "keep-alive unreachable")
			return false
		}

		// give the portal a moment to settle after the heartbeat
		select {
		case <-ctx.Done():
			return true
		case <-time.After(s.options.KeepAlivePause):
		}
	}

	snapshot, err := monitor.client.Poll(ctx, monitor.CRN)
	if err != nil {
		*failures++
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.WarnContext(ctx, "poll failed",
			"id", monitor.Id,
			"crn", monitor.CRN,
			"err", err,
		)
		return false
	}

	// a cancellation that raced the poll wins, the result is discarded
	if ctx.Err() != nil {
		return true
	}

	*failures = 0
	monitor.recordCheck(snapshot.SeatsAvailable)

	err = s.store.Put(ctx, snapshot)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to store snapshot",
			"crn", monitor.CRN,
			"err", err,
		)
	}

	if monitor.gate.Observe(snapshot.SeatsAvailable) {
		s.notify(ctx, monitor, snapshot)
	}

	return false
}

// expire marks the monitor terminal and leaves a tombstone snapshot so
// display tooling can tell "no data" apart from "session went stale".
func (s *Service) expire(ctx context.Context, monitor *Monitor) {
	slog.ErrorContext(ctx, "session expired, monitor is done",
		"id", monitor.Id,
		"crn", monitor.CRN,
	)
	err := s.store.Put(ctx, banner.Snapshot{
		CRN:   monitor.CRN,
		Error: "session expired, restart the monitor with fresh credentials",
		Time:  time.Now(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to store expiry snapshot",
			"crn", monitor.CRN,
			"err", err,
		)
	}

	monitor.setStatus(StatusSessionExpired)
}

// notify sends at most one email per open episode. A failed send leaves
// the gate armed so the next qualifying cycle tries again.
func (s *Service) notify(ctx context.Context, monitor *Monitor, snapshot banner.Snapshot) {
	ctx, span := tracer.Start(ctx, "notify")
	defer span.End()

	err := s.mailer.Send(ctx, mailer.SeatAvailable(monitor.Email, snapshot))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to send seat notification",
			"id", monitor.Id,
			"crn", monitor.CRN,
			"err", err,
		)
		return
	}

	monitor.gate.Sent()
	s.sentCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("crn", monitor.CRN)))
	slog.InfoContext(ctx, "seat notification sent",
		"id", monitor.Id,
		"crn", monitor.CRN,
		"email", monitor.Email,
		"seats", snapshot.SeatsAvailable,
	)
}
