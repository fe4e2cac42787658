package telemetry

import (
	"context"
	"io"
	"time"

	"sensor-bridge/arduino"
	"sensor-bridge/common"
)

// Reader produces a reading for the direct variant. ok is false when the
// cycle has to be skipped.
type Reader interface {
	Read(ctx context.Context) (reading common.Reading, ok bool)
}

// SerialLoop forwards readings received from the board. Lines may arrive
// faster than Interval; only lines that pass the throttle gate are sent.
type SerialLoop struct {
	Cycle     *Cycle
	Interval  time.Duration
	PollDelay time.Duration
	OnState   func(State)
}

// Run owns port until it returns: the port is closed exactly once, after the
// final counters are logged. Run only returns once ctx is cancelled.
func (l *SerialLoop) Run(ctx context.Context, port io.ReadCloser) common.Counters {
	hook := stateHook(l.OnState)
	defer func() {
		if err := port.Close(); err != nil {
			logger.Printf("Error closing serial port: %v", err)
		}
		hook.enter(StateTerminated)
	}()

	source := arduino.NewSource(port)
	var (
		counters common.Counters
		lastSend time.Time
	)

	for ctx.Err() == nil {
		hook.enter(StateAcquiring)
		reading, ok, err := source.Poll()
		if err != nil {
			logger.Printf("Serial read error: %v", err)
		}

		now := l.Cycle.now()
		switch {
		case !ok:
			hook.enter(StateSkipCycle)
		case !ShouldSend(now, lastSend, l.Interval):
			hook.enter(StateThrottled)
		default:
			hook.enter(StateSending)
			outcome, attempted := l.Cycle.Send(ctx, reading, now)
			if attempted {
				counters = counters.Record(outcome)
				if outcome == common.OutcomeSuccess {
					lastSend = now
				}
				logger.Printf("Stats: %s", counters)
				logger.Printf("Next send in %v...", l.Interval)
			}
		}

		hook.enter(StateIdle)
		if !sleep(ctx, l.PollDelay) {
			break
		}
	}

	drain(counters, hook)
	return counters
}

// DirectLoop reads the attached sensors once per Interval. Pacing comes
// from the sleep between cycles, so no throttle gate is applied.
type DirectLoop struct {
	Cycle    *Cycle
	Sensors  Reader
	Interval time.Duration
	OnState  func(State)
}

// Run loops until ctx is cancelled and returns the final counters.
func (l *DirectLoop) Run(ctx context.Context) common.Counters {
	hook := stateHook(l.OnState)
	defer hook.enter(StateTerminated)

	var counters common.Counters

	for ctx.Err() == nil {
		hook.enter(StateAcquiring)
		reading, ok := l.Sensors.Read(ctx)

		if !ok {
			hook.enter(StateSkipCycle)
			logger.Println("Skipping send - invalid sensor readings")
		} else {
			hook.enter(StateSending)
			outcome, attempted := l.Cycle.Send(ctx, reading, l.Cycle.now())
			if attempted {
				counters = counters.Record(outcome)
				logger.Printf("Stats: %s", counters)
			}
		}

		hook.enter(StateIdle)
		logger.Printf("Waiting %v...", l.Interval)
		if !sleep(ctx, l.Interval) {
			break
		}
	}

	drain(counters, hook)
	return counters
}
