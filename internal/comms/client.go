// Package comms is the MQTT link of the device: connection with bounded
// retry, QoS publishing, and the config-topic subscription feeding the sync
// mailbox.
package comms

import (
	"context"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"sentinel_cam/internal/config"
	"sentinel_cam/internal/logger"
	"sentinel_cam/internal/models"
)

// Transport is what the lifecycle needs from the link.
type Transport interface {
	Connect(ctx context.Context) error
	Disconnect()
	IsConnected() bool
	Send(payload []byte, topic string) error
	Responses() *Mailbox
}

// disconnectQuiesce is how long paho may spend finishing in-flight work.
const disconnectQuiesce = 250 // ms

type Client struct {
	cfg     config.MQTTSettings
	log     *logger.Logger
	mailbox *Mailbox

	newClient func(*mqtt.ClientOptions) mqtt.Client

	mu   sync.Mutex
	conn mqtt.Client
}

var _ Transport = (*Client)(nil)

func NewClient(cfg config.MQTTSettings, log *logger.Logger) *Client {
	return &Client{
		cfg:       cfg,
		log:       log,
		mailbox:   NewMailbox(),
		newClient: mqtt.NewClient,
	}
}

// Responses returns the mailbox fed by the config topic.
func (c *Client) Responses() *Mailbox { return c.mailbox }

func (c *Client) options() *mqtt.ClientOptions {
	opts := mqtt.NewClientOptions().
		AddBroker(c.cfg.Broker).
		SetClientID(c.cfg.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(false).
		SetConnectRetry(false).
		SetConnectTimeout(c.cfg.PublishTimeout).
		SetOrderMatters(false)
	if c.cfg.Username != "" {
		opts.SetUsername(c.cfg.Username)
		opts.SetPassword(c.cfg.Password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		// the remote path is gone, so stay local
		c.log.Local().Errorw("mqtt connection lost", "broker", c.cfg.Broker, "err", err)
	})
	return opts
}

// Connect dials the broker up to ConnectAttempts times, ConnectRetryInterval
// apart, then subscribes to the config topic. Exhausting the attempts wraps
// models.ErrConnectivity.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn != nil && c.conn.IsConnected() {
		return nil
	}
	attempts := c.cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		conn := c.newClient(c.options())
		tok := conn.Connect()
		tok.Wait()
		if lastErr = tok.Error(); lastErr == nil {
			if err := c.subscribe(conn); err != nil {
				conn.Disconnect(disconnectQuiesce)
				return err
			}
			c.conn = conn
			c.log.Infow("mqtt connected", "broker", c.cfg.Broker, "attempt", i)
			return nil
		}
		c.log.Warnw("broker unavailable", "broker", c.cfg.Broker, "attempt", i, "of", attempts, "err", lastErr)
		if i == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("connect %s: %v: %w", c.cfg.Broker, ctx.Err(), models.ErrConnectivity)
		case <-time.After(c.cfg.ConnectRetryInterval):
		}
	}
	return fmt.Errorf("connect %s after %d attempts: %v: %w", c.cfg.Broker, attempts, lastErr, models.ErrConnectivity)
}

func (c *Client) subscribe(conn mqtt.Client) error {
	tok := conn.Subscribe(c.cfg.Topics.Config, c.cfg.QoS, func(_ mqtt.Client, msg mqtt.Message) {
		c.mailbox.Put(append([]byte(nil), msg.Payload()...))
	})
	if !tok.WaitTimeout(c.cfg.PublishTimeout) {
		return fmt.Errorf("subscribe %s: timed out: %w", c.cfg.Topics.Config, models.ErrConnectivity)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("subscribe %s: %v: %w", c.cfg.Topics.Config, err, models.ErrConnectivity)
	}
	return nil
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return
	}
	c.conn.Disconnect(disconnectQuiesce)
	c.conn = nil
	c.log.Local().Infow("mqtt disconnected", "broker", c.cfg.Broker)
}

func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn != nil && c.conn.IsConnected()
}

// Send publishes payload with the configured QoS and waits for the broker
// handshake. Every failure wraps models.ErrConnectivity. Send also serves
// as the remote log publisher, so it logs nothing itself.
func (c *Client) Send(payload []byte, topic string) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || !conn.IsConnected() {
		return fmt.Errorf("publish %s: not connected: %w", topic, models.ErrConnectivity)
	}
	tok := conn.Publish(topic, c.cfg.QoS, false, payload)
	if !tok.WaitTimeout(c.cfg.PublishTimeout) {
		return fmt.Errorf("publish %s: no handshake within %s: %w", topic, c.cfg.PublishTimeout, models.ErrConnectivity)
	}
	if err := tok.Error(); err != nil {
		return fmt.Errorf("publish %s: %v: %w", topic, err, models.ErrConnectivity)
	}
	return nil
}
