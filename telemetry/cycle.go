package telemetry

import (
	"context"
	"errors"
	"log"
	"os"
	"time"

	"sensor-bridge/collector"
	"sensor-bridge/common"
)

var logger = log.New(os.Stdout, "[Telemetry] ", log.LstdFlags|log.Lshortfile)

// Sender delivers one payload to the collector.
type Sender interface {
	Send(ctx context.Context, payload common.Payload) (collector.Response, error)
}

// Publisher receives a copy of every payload that was sent.
type Publisher interface {
	Publish(payload common.Payload) error
}

// Cycle performs the send step shared by both loops.
type Cycle struct {
	DeviceID string
	Endpoint string
	Sender   Sender
	Mirror   Publisher // optional
	Now      func() time.Time
}

func (c *Cycle) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Send builds the payload stamped with now and sends it once. attempted is
// false when ctx was cancelled while the request was in flight; such an
// attempt is dropped and must not be counted.
func (c *Cycle) Send(ctx context.Context, reading common.Reading, now time.Time) (outcome common.Outcome, attempted bool) {
	payload := common.NewPayload(reading, c.DeviceID, now)

	logger.Printf("Sending data to %s", c.Endpoint)
	logger.Printf("  Soil Moisture: %v%%", reading.SoilMoisture)
	if reading.Temperature.Valid {
		logger.Printf("  Temperature: %v°C", reading.Temperature.Value)
	}
	if reading.Humidity.Valid {
		logger.Printf("  Humidity: %v%%", reading.Humidity.Value)
	}

	resp, err := c.Sender.Send(ctx, payload)
	if err != nil && ctx.Err() != nil {
		logger.Printf("Send interrupted: %v", err)
		return common.OutcomeUnexpected, false
	}

	outcome = collector.Classify(err)
	report(outcome, resp, err)

	if c.Mirror != nil {
		if err := c.Mirror.Publish(payload); err != nil {
			logger.Printf("Mirror publish failed: %v", err)
		}
	}

	return outcome, true
}

func report(outcome common.Outcome, resp collector.Response, err error) {
	switch outcome {
	case common.OutcomeSuccess:
		logger.Printf("Success: %s", resp.Message)
	case common.OutcomeServerError:
		var statusErr *collector.StatusError
		if errors.As(err, &statusErr) {
			logger.Printf("Error: Server returned status %d", statusErr.Code)
			logger.Printf("  Response: %s", statusErr.Body)
		} else {
			logger.Printf("Error: %v", err)
		}
	case common.OutcomeConnectionError:
		logger.Println("Connection Error: Cannot reach backend server")
		logger.Println("  Make sure your backend is running and URL is correct")
	case common.OutcomeTimeout:
		logger.Println("Timeout Error: Server took too long to respond")
	default:
		logger.Printf("Error sending data: %v", err)
	}
}

// sleep waits for d or until ctx is done. It returns false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

func drain(counters common.Counters, hook stateHook) {
	hook.enter(StateDraining)
	logger.Println("Stopping data collection...")
	logger.Printf("Final Stats: %s", counters)
}
