package silence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/julianstephens/khoshoo3/internal/config"
	"github.com/julianstephens/khoshoo3/internal/constants"
	"github.com/julianstephens/khoshoo3/internal/keyring"
	"github.com/julianstephens/khoshoo3/internal/logger"
)

const (
	mqttPayloadOn      = "on"
	mqttPayloadOff     = "off"
	mqttPayloadGranted = "granted"

	mqttReconnectPoll = 50 * time.Millisecond
)

// MQTT drives DND on a phone or home-automation bridge subscribed to
// <prefix>/dnd/set. The bridge publishes retained messages on
// <prefix>/dnd/state ("on"/"off") and <prefix>/dnd/permission
// ("granted"/"denied").
type MQTT struct {
	cfg       config.MQTTConfig
	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu      sync.Mutex
	client  mqtt.Client
	active  *bool
	granted *bool
	updated chan struct{}
}

// NewMQTT creates a controller. The broker connection is opened on first use.
func NewMQTT(cfg *config.MQTTConfig) (*MQTT, error) {
	if cfg == nil || strings.TrimSpace(cfg.Broker) == "" {
		return nil, errors.New("mqtt backend requires dnd.mqtt.broker")
	}
	c := *cfg
	if c.TopicPrefix == "" {
		c.TopicPrefix = constants.AppName
	}
	if c.ClientID == "" {
		c.ClientID = constants.AppName
	}
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	return &MQTT{
		cfg:       c,
		newClient: mqtt.NewClient,
		updated:   make(chan struct{}, 1),
	}, nil
}

func (m *MQTT) Name() string { return string(constants.BackendMQTT) }

func (m *MQTT) topic(suffix string) string {
	return strings.TrimSuffix(m.cfg.TopicPrefix, "/") + "/dnd/" + suffix
}

func (m *MQTT) password() string {
	if m.cfg.Password != "" || m.cfg.Username == "" {
		return m.cfg.Password
	}
	pw, err := keyring.GetMQTTPassword()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read MQTT password from keyring", "error", err)
		}
		return ""
	}
	return pw
}

// connect returns the one client this controller owns, creating it on
// first use. While paho is re-establishing a lost connection on its own the
// client is waited for rather than replaced.
func (m *MQTT) connect() (mqtt.Client, error) {
	m.mu.Lock()
	if m.client == nil {
		m.client = m.newClient(m.clientOptions())
	}
	client := m.client

	switch {
	case client.IsConnectionOpen():
		m.mu.Unlock()
		return client, nil
	case client.IsConnected():
		// onMessage needs the lock while the retained state is redelivered
		m.mu.Unlock()
		if !m.awaitReconnect(client) {
			return nil, fmt.Errorf("MQTT broker %s unreachable, still reconnecting", m.cfg.Broker)
		}
		return client, nil
	}
	defer m.mu.Unlock()

	token := client.Connect()
	if !token.WaitTimeout(m.cfg.Timeout) {
		return nil, fmt.Errorf("timed out connecting to MQTT broker %s", m.cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", m.cfg.Broker, err)
	}
	return client, nil
}

func (m *MQTT) clientOptions() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(m.cfg.Broker).
		SetClientID(m.cfg.ClientID).
		SetConnectTimeout(m.cfg.Timeout).
		SetAutoReconnect(true).
		SetOnConnectHandler(func(c mqtt.Client) {
			logger.Debug("Connected to MQTT broker", "broker", m.cfg.Broker)
			// Resubscribe after reconnects; the bridge's retained state is redelivered
			for _, t := range []string{m.topic("state"), m.topic("permission")} {
				c.Subscribe(t, byte(m.cfg.QoS), m.onMessage)
			}
		}).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("MQTT connection lost", "broker", m.cfg.Broker, "error", err)
		})
	if m.cfg.Username != "" {
		opts.SetUsername(m.cfg.Username)
		opts.SetPassword(m.password())
	}
	return opts
}

// awaitReconnect polls until client's connection is open again or the
// timeout elapses
func (m *MQTT) awaitReconnect(client mqtt.Client) bool {
	deadline := time.Now().Add(m.cfg.Timeout)
	for time.Now().Before(deadline) {
		time.Sleep(mqttReconnectPoll)
		if client.IsConnectionOpen() {
			return true
		}
	}
	return false
}

func (m *MQTT) onMessage(_ mqtt.Client, msg mqtt.Message) {
	value := strings.ToLower(strings.TrimSpace(string(msg.Payload())))

	m.mu.Lock()
	switch msg.Topic() {
	case m.topic("state"):
		active := value == mqttPayloadOn
		m.active = &active
	case m.topic("permission"):
		granted := value == mqttPayloadGranted
		m.granted = &granted
	}
	m.mu.Unlock()

	select {
	case m.updated <- struct{}{}:
	default:
	}
}

// waitKnown blocks until the bridge has reported the value read by get or
// the timeout elapses
func (m *MQTT) waitKnown(ctx context.Context, get func() *bool) (bool, bool) {
	deadline := time.NewTimer(m.cfg.Timeout)
	defer deadline.Stop()

	for {
		m.mu.Lock()
		v := get()
		m.mu.Unlock()
		if v != nil {
			return *v, true
		}

		select {
		case <-ctx.Done():
			return false, false
		case <-deadline.C:
			return false, false
		case <-m.updated:
		}
	}
}

func (m *MQTT) PermissionGranted(ctx context.Context) (bool, error) {
	if _, err := m.connect(); err != nil {
		return false, err
	}
	granted, known := m.waitKnown(ctx, func() *bool { return m.granted })
	if !known {
		logger.Debug("MQTT bridge has not reported permission", "topic", m.topic("permission"))
		return false, nil
	}
	return granted, nil
}

func (m *MQTT) IsActive(ctx context.Context) (bool, error) {
	if _, err := m.connect(); err != nil {
		return false, err
	}
	active, known := m.waitKnown(ctx, func() *bool { return m.active })
	if !known {
		return false, fmt.Errorf("no DND state reported on %s", m.topic("state"))
	}
	return active, nil
}

func (m *MQTT) Enable(ctx context.Context) error {
	return m.publish(ctx, true)
}

func (m *MQTT) Disable(ctx context.Context) error {
	return m.publish(ctx, false)
}

func (m *MQTT) publish(ctx context.Context, active bool) error {
	granted, err := m.PermissionGranted(ctx)
	if err != nil {
		return err
	}
	if !granted {
		return ErrPermissionDenied
	}

	client, err := m.connect()
	if err != nil {
		return err
	}

	payload := mqttPayloadOff
	if active {
		payload = mqttPayloadOn
	}
	token := client.Publish(m.topic("set"), byte(m.cfg.QoS), false, payload)
	if !token.WaitTimeout(m.cfg.Timeout) {
		return fmt.Errorf("timed out publishing to %s", m.topic("set"))
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", m.topic("set"), err)
	}

	// The bridge confirms on the state topic; assume success until it does
	m.mu.Lock()
	m.active = &active
	m.mu.Unlock()
	return nil
}

// Close disconnects from the broker and stops any reconnect in progress
func (m *MQTT) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.client != nil {
		m.client.Disconnect(250)
		m.client = nil
	}
	return nil
}
