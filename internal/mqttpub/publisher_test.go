package mqttpub

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gnss-base/internal/pose"
)

type fakeToken struct {
	done bool
	err  error
}

func (t *fakeToken) Wait() bool                     { return t.done }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return t.done }
func (t *fakeToken) Error() error                   { return t.err }

func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	if t.done {
		close(ch)
	}
	return ch
}

type publishCall struct {
	topic    string
	qos      byte
	retained bool
	payload  []byte
}

type fakeClient struct {
	calls        []publishCall
	token        *fakeToken
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.calls = append(c.calls, publishCall{topic: topic, qos: qos, retained: retained, payload: payload.([]byte)})
	return c.token
}

func (c *fakeClient) Disconnect(uint) { c.disconnected = true }

func TestPublisher_EmitPublishesJSON(t *testing.T) {
	fc := &fakeClient{token: &fakeToken{done: true}}
	p := newPublisher(Config{Topic: "gnss/pose", QoS: 1, Retain: true}, fc)

	s := pose.Sample{Time: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), Position: pose.Vec3{X: 3, Y: 4, Z: 5}}
	if err := p.Emit(context.Background(), s); err != nil {
		t.Fatalf("Emit() error: %v", err)
	}
	if len(fc.calls) != 1 {
		t.Fatalf("publish calls=%d want 1", len(fc.calls))
	}
	call := fc.calls[0]
	if call.topic != "gnss/pose" || call.qos != 1 || !call.retained {
		t.Fatalf("call=%+v", call)
	}
	var back pose.Sample
	if err := json.Unmarshal(call.payload, &back); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if back.Position != s.Position {
		t.Fatalf("position=%+v want %+v", back.Position, s.Position)
	}
}

func TestPublisher_EmitPropagatesError(t *testing.T) {
	boom := errors.New("not connected")
	fc := &fakeClient{token: &fakeToken{done: true, err: boom}}
	p := newPublisher(Config{Topic: "t"}, fc)
	err := p.Emit(context.Background(), pose.Sample{})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v want %v", err, boom)
	}
}

func TestPublisher_EmitTimeout(t *testing.T) {
	fc := &fakeClient{token: &fakeToken{done: false}}
	p := newPublisher(Config{Topic: "t", PublishTimeout: time.Millisecond}, fc)
	if err := p.Emit(context.Background(), pose.Sample{}); err == nil {
		t.Fatalf("expected timeout error")
	}
}

func TestPublisher_CloseDisconnectsOnce(t *testing.T) {
	fc := &fakeClient{token: &fakeToken{done: true}}
	p := newPublisher(Config{Topic: "t"}, fc)
	if err := p.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}
	if !fc.disconnected {
		t.Fatalf("expected disconnect")
	}
	if err := p.Close(); err != nil {
		t.Fatalf("second Close() error: %v", err)
	}
}
