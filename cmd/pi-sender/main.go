// Command pi-sender reads the sensors attached to the Pi and forwards the
// readings to the collector.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"

	"sensor-bridge/collector"
	"sensor-bridge/config"
	"sensor-bridge/mqtt"
	"sensor-bridge/sensors"
	"sensor-bridge/telemetry"
)

var logger = log.New(os.Stdout, "[Pi-Sender] ", log.LstdFlags|log.Lshortfile)

func main() {
	cfg, err := config.Load(config.ProfileDirect)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	banner := strings.Repeat("=", 50)
	logger.Println(banner)
	logger.Println("Raspberry Pi Sensor Data Sender")
	logger.Println(banner)
	logger.Printf("Backend URL: %s", cfg.BackendURL)
	logger.Printf("Device ID: %s", cfg.DeviceID)
	logger.Printf("Send Interval: %v", cfg.SendInterval)
	logger.Println(banner)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := collector.NewClient(collector.Config{URL: cfg.BackendURL, Timeout: cfg.HTTPTimeout})
	cycle := &telemetry.Cycle{
		DeviceID: cfg.DeviceID,
		Endpoint: client.URL(),
		Sender:   client,
	}

	if cfg.MirrorEnabled() {
		mirror, err := mqtt.StartMirror(cfg.MQTT.Broker, cfg.MQTT.Topic, cfg.MQTT.QoS)
		if err != nil {
			logger.Printf("MQTT mirror disabled: %v", err)
		} else {
			defer mirror.Stop()
			cycle.Mirror = mirror
		}
	}

	// TODO: replace the simulated bank with ADS1115 and DHT22 probes once the
	// board wiring is fixed.
	loop := &telemetry.DirectLoop{
		Cycle:    cycle,
		Sensors:  sensors.Simulated(),
		Interval: cfg.SendInterval,
	}

	logger.Println("Starting sensor monitoring... Press Ctrl+C to stop")
	loop.Run(ctx)
	logger.Println("Goodbye!")
}
