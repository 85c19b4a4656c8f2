package comms

import (
	"errors"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

type fakeToken struct {
	err     error
	timeout bool
}

func (t *fakeToken) Wait() bool                       { return !t.timeout }
func (t *fakeToken) WaitTimeout(_ time.Duration) bool { return !t.timeout }
func (t *fakeToken) Error() error                     { return t.err }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 2 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 1 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

type published struct {
	topic   string
	qos     byte
	payload []byte
}

// fakeBroker hands out fakeConns and records what they do.
type fakeBroker struct {
	mu            sync.Mutex
	failConnects  int
	subscribeErr  error
	publishErr    error
	publishStall  bool
	dials         int
	published     []published
	handlers      map[string]mqtt.MessageHandler
	disconnects   int
	lastConnected *fakeConn
}

func (b *fakeBroker) newClient(_ *mqtt.ClientOptions) mqtt.Client {
	return &fakeConn{broker: b}
}

func (b *fakeBroker) deliver(topic string, payload []byte) {
	b.mu.Lock()
	h := b.handlers[topic]
	conn := b.lastConnected
	b.mu.Unlock()
	if h != nil {
		h(conn, &fakeMessage{topic: topic, payload: payload})
	}
}

type fakeConn struct {
	broker    *fakeBroker
	connected bool
}

func (c *fakeConn) IsConnected() bool      { return c.connected }
func (c *fakeConn) IsConnectionOpen() bool { return c.connected }

func (c *fakeConn) Connect() mqtt.Token {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	b.dials++
	if b.dials <= b.failConnects {
		return &fakeToken{err: errors.New("connection refused")}
	}
	c.connected = true
	b.lastConnected = c
	return &fakeToken{}
}

func (c *fakeConn) Disconnect(_ uint) {
	c.broker.mu.Lock()
	defer c.broker.mu.Unlock()
	c.connected = false
	c.broker.disconnects++
}

func (c *fakeConn) Publish(topic string, qos byte, _ bool, payload interface{}) mqtt.Token {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.publishStall {
		return &fakeToken{timeout: true}
	}
	if b.publishErr != nil {
		return &fakeToken{err: b.publishErr}
	}
	b.published = append(b.published, published{topic: topic, qos: qos, payload: payload.([]byte)})
	return &fakeToken{}
}

func (c *fakeConn) Subscribe(topic string, _ byte, cb mqtt.MessageHandler) mqtt.Token {
	b := c.broker
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subscribeErr != nil {
		return &fakeToken{err: b.subscribeErr}
	}
	if b.handlers == nil {
		b.handlers = map[string]mqtt.MessageHandler{}
	}
	b.handlers[topic] = cb
	return &fakeToken{}
}

func (c *fakeConn) SubscribeMultiple(_ map[string]byte, _ mqtt.MessageHandler) mqtt.Token {
	return &fakeToken{}
}
func (c *fakeConn) Unsubscribe(_ ...string) mqtt.Token       { return &fakeToken{} }
func (c *fakeConn) AddRoute(_ string, _ mqtt.MessageHandler) {}
func (c *fakeConn) OptionsReader() mqtt.ClientOptionsReader  { return mqtt.ClientOptionsReader{} }
