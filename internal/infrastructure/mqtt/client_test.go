package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/nerrad567/ths-gateway/internal/infrastructure/config"
)

// fakeToken is an already-completed paho token.
type fakeToken struct {
	err error
}

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type message struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

// fakePaho records publishes instead of talking to a broker.
type fakePaho struct {
	mu         sync.Mutex
	connected  bool
	publishErr error
	published  []message
	disconnect int
}

func (f *fakePaho) IsConnected() bool      { return f.connected }
func (f *fakePaho) IsConnectionOpen() bool { return f.connected }

func (f *fakePaho) Connect() pahomqtt.Token {
	return &fakeToken{}
}

func (f *fakePaho) Disconnect(uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.disconnect++
	f.connected = false
}

func (f *fakePaho) Publish(topic string, qos byte, retained bool, payload interface{}) pahomqtt.Token {
	f.mu.Lock()
	defer f.mu.Unlock()

	var b []byte
	switch p := payload.(type) {
	case []byte:
		b = p
	case string:
		b = []byte(p)
	}
	f.published = append(f.published, message{topic: topic, qos: qos, retained: retained, payload: b})
	return &fakeToken{err: f.publishErr}
}

func (f *fakePaho) Subscribe(string, byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return &fakeToken{}
}

func (f *fakePaho) SubscribeMultiple(map[string]byte, pahomqtt.MessageHandler) pahomqtt.Token {
	return &fakeToken{}
}

func (f *fakePaho) Unsubscribe(...string) pahomqtt.Token {
	return &fakeToken{}
}

func (f *fakePaho) AddRoute(string, pahomqtt.MessageHandler) {}

func (f *fakePaho) OptionsReader() pahomqtt.ClientOptionsReader {
	return pahomqtt.ClientOptionsReader{}
}

func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Enabled: true,
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "thsgateway-test",
		},
		QoS:         1,
		TopicPrefix: "thsgateway",
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

func newTestClient(connected bool) (*Client, *fakePaho) {
	fake := &fakePaho{connected: connected}
	cfg := testConfig()
	c := &Client{
		client:    fake,
		cfg:       cfg,
		topics:    Topics{Prefix: cfg.TopicPrefix},
		connected: connected,
	}
	return c, fake
}

func TestPublish(t *testing.T) {
	c, fake := newTestClient(true)

	if err := c.Publish("thsgateway/main/order", []byte(`{"ok":true}`), 1, false); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if len(fake.published) != 1 {
		t.Fatalf("published %d messages, want 1", len(fake.published))
	}
	m := fake.published[0]
	if m.topic != "thsgateway/main/order" || m.qos != 1 || m.retained || string(m.payload) != `{"ok":true}` {
		t.Errorf("published %+v", m)
	}
}

func TestPublish_Validation(t *testing.T) {
	tests := []struct {
		name      string
		connected bool
		topic     string
		payload   []byte
		qos       byte
		wantErr   error
	}{
		{"empty topic", true, "", nil, 0, ErrInvalidTopic},
		{"bad qos", true, "t", nil, 3, ErrInvalidQoS},
		{"too large", true, "t", make([]byte, maxPayloadSize+1), 0, ErrPublishFailed},
		{"disconnected", false, "t", nil, 0, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, fake := newTestClient(tt.connected)
			err := c.Publish(tt.topic, tt.payload, tt.qos, false)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
			if len(fake.published) != 0 {
				t.Error("nothing should reach the broker")
			}
		})
	}
}

func TestPublish_BrokerError(t *testing.T) {
	c, fake := newTestClient(true)
	fake.publishErr = errors.New("not authorised")

	err := c.Publish("t", nil, 0, false)
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("Publish() error = %v, want ErrPublishFailed", err)
	}
}

func TestPublishEventAndState(t *testing.T) {
	c, fake := newTestClient(true)

	if err := c.PublishEvent(c.Topics().Orders("main"), map[string]any{"side": "buy"}); err != nil {
		t.Fatalf("PublishEvent() error = %v", err)
	}
	if err := c.PublishState(c.Topics().Session("main"), map[string]any{"state": "logged_in"}); err != nil {
		t.Fatalf("PublishState() error = %v", err)
	}

	if len(fake.published) != 2 {
		t.Fatalf("published %d messages, want 2", len(fake.published))
	}
	event, state := fake.published[0], fake.published[1]
	if event.retained || !state.retained {
		t.Error("events must not be retained and state must be")
	}
	if event.qos != 1 {
		t.Errorf("qos = %d, want configured 1", event.qos)
	}

	var body map[string]string
	if err := json.Unmarshal(state.payload, &body); err != nil || body["state"] != "logged_in" {
		t.Errorf("state payload = %s (%v)", state.payload, err)
	}
}

func TestPublishEvent_Unmarshalable(t *testing.T) {
	c, _ := newTestClient(true)

	err := c.PublishEvent("t", make(chan int))
	if !errors.Is(err, ErrPublishFailed) {
		t.Errorf("PublishEvent() error = %v, want ErrPublishFailed", err)
	}
}

func TestClose(t *testing.T) {
	c, fake := newTestClient(true)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if fake.disconnect != 1 {
		t.Errorf("Disconnect called %d times, want 1", fake.disconnect)
	}
	if len(fake.published) != 1 || fake.published[0].topic != "thsgateway/status" || !fake.published[0].retained {
		t.Fatalf("expected retained offline status, got %+v", fake.published)
	}
	if !strings.Contains(string(fake.published[0].payload), "graceful_shutdown") {
		t.Errorf("offline payload = %s", fake.published[0].payload)
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after Close()")
	}
}

func TestCloseNil(t *testing.T) {
	var c *Client
	if err := c.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
	if c.IsConnected() {
		t.Error("nil client reports connected")
	}
}

func TestHealthCheck(t *testing.T) {
	c, _ := newTestClient(true)
	if err := c.HealthCheck(context.Background()); err != nil {
		t.Errorf("HealthCheck() error = %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v", err)
	}

	down, _ := newTestClient(false)
	if err := down.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck(disconnected) error = %v", err)
	}
}

func TestConnectionCallbacks(t *testing.T) {
	c, fake := newTestClient(false)
	fake.connected = true

	connected := make(chan struct{}, 1)
	lost := make(chan error, 1)
	c.SetOnConnect(func() { connected <- struct{}{} })
	c.SetOnDisconnect(func(err error) { lost <- err })

	c.handleConnect()
	select {
	case <-connected:
	default:
		t.Error("OnConnect not called")
	}
	if !c.IsConnected() {
		t.Error("IsConnected() = false after connect")
	}
	if len(fake.published) != 1 || !strings.Contains(string(fake.published[0].payload), `"online"`) {
		t.Errorf("expected online status, got %+v", fake.published)
	}

	c.handleDisconnect(errors.New("eof"))
	select {
	case err := <-lost:
		if err == nil || err.Error() != "eof" {
			t.Errorf("OnDisconnect error = %v", err)
		}
	default:
		t.Error("OnDisconnect not called")
	}
	if c.IsConnected() {
		t.Error("IsConnected() = true after disconnect")
	}
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Broker.TLS = true
	cfg.Auth.Username = "gateway"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)

	if len(opts.Servers) != 1 || opts.Servers[0].String() != "ssl://127.0.0.1:1883" {
		t.Errorf("Servers = %v", opts.Servers)
	}
	if opts.ClientID != "thsgateway-test" || opts.Username != "gateway" || opts.Password != "secret" {
		t.Errorf("identity = %q/%q", opts.ClientID, opts.Username)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS config not applied")
	}
	if !opts.AutoReconnect || !opts.CleanSession {
		t.Error("expected auto-reconnect and clean session")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, Topics{Prefix: "gw"}, "id-1")

	if !opts.WillEnabled || opts.WillTopic != "gw/status" || !opts.WillRetained {
		t.Errorf("will = %v %q %v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}

	var body map[string]string
	if err := json.Unmarshal(opts.WillPayload, &body); err != nil {
		t.Fatalf("will payload not JSON: %v", err)
	}
	if body["status"] != "offline" || body["client_id"] != "id-1" || body["reason"] != "unexpected_disconnect" {
		t.Errorf("will payload = %v", body)
	}
}
