package mqtt

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	mqttLib "github.com/eclipse/paho.mqtt.golang"

	"sensor-bridge/common"
)

// ErrNotConnected is returned when publishing without a broker connection.
var ErrNotConnected = errors.New("MQTT client not connected")

// Config describes the broker the payloads are mirrored to.
type Config struct {
	Broker         string        // e.g. "tcp://localhost:1883"
	ClientID       string        // generated when empty
	Topic          string        // base topic, device ID is appended
	QoS            byte          // 0, 1 or 2
	KeepAlive      time.Duration // keep alive interval
	ConnectTimeout time.Duration // connect and publish wait bound
	AutoReconnect  bool
}

// generateClientID returns a random client ID.
func generateClientID() string {
	bytes := make([]byte, 4)
	rand.Read(bytes)
	return "sensor-bridge-" + hex.EncodeToString(bytes)
}

// DefaultConfig returns the mirror defaults.
func DefaultConfig() Config {
	return Config{
		Broker:         "tcp://localhost:1883",
		ClientID:       generateClientID(),
		Topic:          "farm/sensors",
		QoS:            1,
		KeepAlive:      60 * time.Second,
		ConnectTimeout: 10 * time.Second,
		AutoReconnect:  true,
	}
}

// Mirror publishes every payload sent to the collector on an MQTT topic.
// Failures are reported to the caller but never retried.
type Mirror struct {
	config     Config
	mqttClient mqttLib.Client
	logger     *log.Logger
}

// NewMirror creates a mirror for the given broker.
func NewMirror(config Config) *Mirror {
	if config.ClientID == "" {
		config.ClientID = generateClientID()
	}

	opts := mqttLib.NewClientOptions()
	opts.AddBroker(config.Broker)
	opts.SetClientID(config.ClientID)
	opts.SetKeepAlive(config.KeepAlive)
	opts.SetConnectTimeout(config.ConnectTimeout)
	opts.SetAutoReconnect(config.AutoReconnect)

	m := &Mirror{
		config: config,
		logger: log.New(os.Stdout, "[MQTT-Mirror] ", log.LstdFlags|log.Lshortfile),
	}
	opts.SetOnConnectHandler(func(mqttLib.Client) {
		m.logger.Printf("Connected to MQTT broker %s", config.Broker)
	})
	opts.SetConnectionLostHandler(func(_ mqttLib.Client, err error) {
		m.logger.Printf("Connection lost: %v", err)
	})

	m.mqttClient = mqttLib.NewClient(opts)
	return m
}

// newMirrorWithClient is used by tests to inject a client.
func newMirrorWithClient(config Config, client mqttLib.Client) *Mirror {
	return &Mirror{
		config:     config,
		mqttClient: client,
		logger:     log.New(os.Stdout, "[MQTT-Mirror] ", log.LstdFlags|log.Lshortfile),
	}
}

// Start connects to the broker.
func (m *Mirror) Start() error {
	m.logger.Printf("Starting MQTT mirror, broker: %s", m.config.Broker)

	token := m.mqttClient.Connect()
	if !token.WaitTimeout(m.config.ConnectTimeout) {
		return fmt.Errorf("timed out connecting to MQTT broker %s", m.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", err)
	}
	return nil
}

// Stop disconnects from the broker.
func (m *Mirror) Stop() {
	if m.mqttClient != nil && m.mqttClient.IsConnected() {
		m.mqttClient.Disconnect(250)
		m.logger.Println("MQTT mirror disconnected")
	}
}

// IsConnected returns true if the mirror is connected to the broker.
func (m *Mirror) IsConnected() bool {
	return m.mqttClient != nil && m.mqttClient.IsConnected()
}

// Topic returns the topic payloads of a device are published on.
func (m *Mirror) Topic(deviceID string) string {
	return fmt.Sprintf("%s/%s", m.config.Topic, deviceID)
}

// Publish sends the payload as JSON.
func (m *Mirror) Publish(payload common.Payload) error {
	if !m.IsConnected() {
		return ErrNotConnected
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	topic := m.Topic(payload.DeviceID)
	token := m.mqttClient.Publish(topic, m.config.QoS, false, body)
	if !token.WaitTimeout(m.config.ConnectTimeout) {
		return fmt.Errorf("timed out publishing to topic %s", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", topic, err)
	}

	m.logger.Printf("Mirrored payload to %s", topic)
	return nil
}

// StartMirror builds a mirror from the default settings for the given broker
// and topic and connects it.
func StartMirror(broker, topic string, qos byte) (*Mirror, error) {
	config := DefaultConfig()
	config.Broker = broker
	config.Topic = topic
	config.QoS = qos

	m := NewMirror(config)
	if err := m.Start(); err != nil {
		return nil, err
	}
	return m, nil
}
