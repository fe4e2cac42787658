// Command arduino-sender reads soil moisture lines from an Arduino on a
// serial port and forwards them to the collector.
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
	"sensor-bridge/serial"
	"sensor-bridge/telemetry"
)

var logger = log.New(os.Stdout, "[Arduino-Sender] ", log.LstdFlags|log.Lshortfile)

func main() {
	cfg, err := config.Load(config.ProfileArduino)
	if err != nil {
		logger.Fatalf("Failed to load config: %v", err)
	}

	banner := strings.Repeat("=", 60)
	logger.Println(banner)
	logger.Println("Raspberry Pi to Website Direct Sender")
	logger.Println(banner)
	logger.Printf("Backend URL: %s", cfg.BackendURL)
	logger.Printf("Device ID: %s", cfg.DeviceID)
	logger.Printf("Serial Port: %s", cfg.Serial.Port)
	logger.Printf("Send Interval: %v", cfg.SendInterval)
	logger.Println(banner)

	port, err := serial.Open(serial.Config{
		DevicePath:  cfg.Serial.Port,
		BaudRate:    cfg.Serial.BaudRate,
		ReadTimeout: cfg.Serial.ReadTimeout,
		Settle:      cfg.Serial.Settle,
	})
	if err != nil {
		logger.Fatalf("Error connecting to serial port: %v", err)
	}

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

	loop := &telemetry.SerialLoop{
		Cycle:     cycle,
		Interval:  cfg.SendInterval,
		PollDelay: cfg.Serial.PollDelay,
	}

	logger.Println("Starting data collection... Press Ctrl+C to stop")
	loop.Run(ctx, port)
	logger.Println("Goodbye!")
}
