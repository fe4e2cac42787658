package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

var logger = log.New(os.Stdout, "[Config] ", log.LstdFlags|log.Lshortfile)

// Build-time overrides, set with -ldflags "-X sensor-bridge/config.BackendURL=...".
// Empty values fall back to the profile defaults.
var (
	BackendURL   string
	DeviceID     string
	SerialPort   string
	BaudRate     string
	SendInterval string
	MQTTBroker   string
	MQTTTopic    string
)

// Profile selects one of the two sender programs.
type Profile string

const (
	ProfileArduino Profile = "arduino"
	ProfileDirect  Profile = "direct"
)

// Config holds the sender configuration.
type Config struct {
	BackendURL   string        `mapstructure:"backend_url"`
	DeviceID     string        `mapstructure:"device_id"`
	SendInterval time.Duration `mapstructure:"send_interval"`
	HTTPTimeout  time.Duration `mapstructure:"http_timeout"`

	Serial struct {
		Port        string        `mapstructure:"port"`
		BaudRate    int           `mapstructure:"baud_rate"`
		ReadTimeout time.Duration `mapstructure:"read_timeout"`
		Settle      time.Duration `mapstructure:"settle"`
		PollDelay   time.Duration `mapstructure:"poll_delay"`
	} `mapstructure:"serial"`

	MQTT struct {
		Broker string `mapstructure:"broker"`
		Topic  string `mapstructure:"topic"`
		QoS    byte   `mapstructure:"qos"`
	} `mapstructure:"mqtt"`
}

// MirrorEnabled reports whether payloads are also published over MQTT.
func (c Config) MirrorEnabled() bool {
	return c.MQTT.Broker != ""
}

func setDefaults(v *viper.Viper, p Profile) {
	v.SetDefault("send_interval", 15*time.Second)
	v.SetDefault("http_timeout", 10*time.Second)

	v.SetDefault("serial.port", "/dev/ttyUSB0")
	v.SetDefault("serial.baud_rate", 9600)
	v.SetDefault("serial.read_timeout", 1*time.Second)
	v.SetDefault("serial.settle", 2*time.Second)
	v.SetDefault("serial.poll_delay", 100*time.Millisecond)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.topic", "farm/sensors")
	v.SetDefault("mqtt.qos", 1)

	switch p {
	case ProfileArduino:
		v.SetDefault("backend_url", "http://192.168.1.100:3000/api/iot/sensor-data")
		v.SetDefault("device_id", "raspberry-pi-arduino-001")
	default:
		v.SetDefault("backend_url", "http://localhost:3000/api/iot/sensor-data")
		v.SetDefault("device_id", "raspberry-pi-001")
	}
}

func applyOverrides(v *viper.Viper) {
	overrides := map[string]string{
		"backend_url":      BackendURL,
		"device_id":        DeviceID,
		"serial.port":      SerialPort,
		"serial.baud_rate": BaudRate,
		"send_interval":    SendInterval,
		"mqtt.broker":      MQTTBroker,
		"mqtt.topic":       MQTTTopic,
	}
	for key, val := range overrides {
		if val != "" {
			v.Set(key, val)
		}
	}
}

// Load returns the compiled-in configuration for a profile.
func Load(p Profile) (Config, error) {
	if p != ProfileArduino && p != ProfileDirect {
		return Config{}, fmt.Errorf("unknown profile %q", p)
	}

	v := viper.New()
	setDefaults(v, p)
	applyOverrides(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if cfg.BackendURL == "" {
		return Config{}, fmt.Errorf("backend URL is empty")
	}
	if cfg.SendInterval <= 0 {
		return Config{}, fmt.Errorf("send interval must be positive, got %v", cfg.SendInterval)
	}
	if p == ProfileArduino && cfg.Serial.BaudRate <= 0 {
		return Config{}, fmt.Errorf("baud rate must be positive, got %d", cfg.Serial.BaudRate)
	}

	logger.Printf("Loaded %s profile (device %s)", p, cfg.DeviceID)
	return cfg, nil
}
