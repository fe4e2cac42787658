package common

import (
	"fmt"
	"time"
)

// TimestampLayout is the ISO-8601 layout used for the payload timestamp.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Measurement is a sensor value that may be unavailable for a cycle.
type Measurement struct {
	Value float64
	Valid bool
}

// Some wraps an available value.
func Some(v float64) Measurement {
	return Measurement{Value: v, Valid: true}
}

// None marks a value as unavailable.
func None() Measurement {
	return Measurement{}
}

// OrZero returns the value, or 0 when it is unavailable.
func (m Measurement) OrZero() float64 {
	if !m.Valid {
		return 0
	}
	return m.Value
}

// Reading is a single measurement tuple produced in one acquisition cycle.
type Reading struct {
	SoilMoisture float64
	Temperature  Measurement
	Humidity     Measurement
}

// Payload is the JSON body POSTed to the collector.
type Payload struct {
	SoilMoisture float64 `json:"soilMoisture"`
	Temperature  float64 `json:"temperature"`
	Humidity     float64 `json:"humidity"`
	DeviceID     string  `json:"deviceId"`
	Timestamp    string  `json:"timestamp"`
}

// NewPayload builds the payload for a reading. at must be the send-attempt time.
func NewPayload(r Reading, deviceID string, at time.Time) Payload {
	return Payload{
		SoilMoisture: r.SoilMoisture,
		Temperature:  r.Temperature.OrZero(),
		Humidity:     r.Humidity.OrZero(),
		DeviceID:     deviceID,
		Timestamp:    at.Format(TimestampLayout),
	}
}

// Outcome classifies the result of one send attempt.
type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeServerError
	OutcomeConnectionError
	OutcomeTimeout
	OutcomeUnexpected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeServerError:
		return "server_error"
	case OutcomeConnectionError:
		return "connection_error"
	case OutcomeTimeout:
		return "timeout"
	case OutcomeUnexpected:
		return "unexpected"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Counters accumulates send outcomes for the lifetime of the process.
type Counters struct {
	Success int
	Errors  int
}

// Record returns the counters updated with one outcome.
func (c Counters) Record(o Outcome) Counters {
	if o == OutcomeSuccess {
		c.Success++
	} else {
		c.Errors++
	}
	return c
}

func (c Counters) String() string {
	return fmt.Sprintf("%d successful, %d failed", c.Success, c.Errors)
}
