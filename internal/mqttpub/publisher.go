// Package mqttpub publishes pose samples as JSON to an MQTT topic.
package mqttpub

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gnss-base/internal/pose"
)

type Config struct {
	Broker   string
	ClientID string
	Topic    string
	QoS      byte
	Retain   bool

	// PublishTimeout bounds each publish; zero means 5s.
	PublishTimeout time.Duration
}

// client is the subset of mqtt.Client the publisher needs.
type client interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
	Disconnect(quiesce uint)
}

type Publisher struct {
	cfg    Config
	client client
}

// Connect dials the broker and returns a ready publisher.
func Connect(cfg Config) (*Publisher, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID)

	c := mqtt.NewClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt connect %s: %w", cfg.Broker, token.Error())
	}
	return newPublisher(cfg, c), nil
}

func newPublisher(cfg Config, c client) *Publisher {
	if cfg.PublishTimeout <= 0 {
		cfg.PublishTimeout = 5 * time.Second
	}
	return &Publisher{cfg: cfg, client: c}
}

// Emit publishes s and waits for the broker to accept it.
func (p *Publisher) Emit(_ context.Context, s pose.Sample) error {
	payload, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode pose: %w", err)
	}
	token := p.client.Publish(p.cfg.Topic, p.cfg.QoS, p.cfg.Retain, payload)
	if !token.WaitTimeout(p.cfg.PublishTimeout) {
		return fmt.Errorf("mqtt publish to %s timed out after %s", p.cfg.Topic, p.cfg.PublishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt publish to %s: %w", p.cfg.Topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.client != nil {
		p.client.Disconnect(250)
		p.client = nil
	}
	return nil
}
