package sensors

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"

	"sensor-bridge/common"
)

var logger = log.New(os.Stdout, "[Sensors] ", log.LstdFlags|log.Lshortfile)

// ErrUnavailable is reported by probes that could not take a measurement.
var ErrUnavailable = errors.New("sensor unavailable")

// Probe takes one measurement.
type Probe func(ctx context.Context) (float64, error)

// Bank groups the three probes attached to the Pi. A nil probe is treated
// as an absent sensor.
type Bank struct {
	Moisture    Probe
	Temperature Probe
	Humidity    Probe
}

// Read samples every probe independently. A failing probe only makes its own
// field unavailable. ok is false when soil moisture could not be read, in
// which case the cycle must be skipped.
func (b Bank) Read(ctx context.Context) (reading common.Reading, ok bool) {
	moisture := sample(ctx, "soil moisture", b.Moisture)
	temperature := sample(ctx, "temperature", b.Temperature)
	humidity := sample(ctx, "humidity", b.Humidity)

	if !moisture.Valid {
		return common.Reading{}, false
	}

	return common.Reading{
		SoilMoisture: moisture.Value,
		Temperature:  temperature,
		Humidity:     humidity,
	}, true
}

func sample(ctx context.Context, name string, probe Probe) (m common.Measurement) {
	if probe == nil {
		return common.None()
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Printf("Error reading %s: %v", name, r)
			m = common.None()
		}
	}()

	v, err := probe(ctx)
	if err != nil {
		logger.Printf("Error reading %s: %v", name, err)
		return common.None()
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		logger.Printf("Error reading %s: %v", name, fmt.Errorf("%w: non-finite value", ErrUnavailable))
		return common.None()
	}
	return common.Some(v)
}

// Uniform returns a probe producing values in [lo, hi] rounded to two
// decimals. It stands in for a real ADC or DHT22 driver.
func Uniform(lo, hi float64) Probe {
	return func(ctx context.Context) (float64, error) {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return round2(lo + rand.Float64()*(hi-lo)), nil
	}
}

// Simulated returns the bank used when no hardware is attached.
func Simulated() Bank {
	return Bank{
		Moisture:    Uniform(20, 80),
		Temperature: Uniform(20, 35),
		Humidity:    Uniform(40, 80),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
