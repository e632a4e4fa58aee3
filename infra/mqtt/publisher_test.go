package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/milkrun/core/model"
	"github.com/kilianp07/milkrun/core/simulator"
	"github.com/kilianp07/milkrun/infra/logger"
)

type fakeToken struct{ err error }

func (t fakeToken) Wait() bool                     { return true }
func (t fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t fakeToken) Error() error                   { return t.err }
func (t fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

type published struct {
	topic   string
	qos     byte
	retain  bool
	payload []byte
}

type fakeClient struct {
	mu        sync.Mutex
	connected bool
	msgs      []published
	failures  int
	connErr   error
}

func (c *fakeClient) IsConnected() bool { return c.connected }
func (c *fakeClient) Connect() paho.Token {
	c.connected = c.connErr == nil
	return fakeToken{err: c.connErr}
}
func (c *fakeClient) Disconnect(uint) { c.connected = false }
func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failures > 0 {
		c.failures--
		return fakeToken{err: errors.New("broker busy")}
	}
	c.msgs = append(c.msgs, published{topic: topic, qos: qos, retain: retained, payload: payload.([]byte)})
	return fakeToken{}
}

func withFakeClient(t *testing.T, fc *fakeClient) {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fc }
	t.Cleanup(func() { newMQTTClient = orig })
}

func testPlan(t *testing.T) simulator.Plan {
	t.Helper()
	p, err := simulator.NewPlanner(logger.NopLogger{}, nil, nil)
	require.NoError(t, err)
	cfg := model.DefaultConfig()
	cfg.VehicleNames = []string{"North/1", "South", "East"}
	plan, err := p.Plan(context.Background(), cfg)
	require.NoError(t, err)
	return plan
}

func TestPublishPlan(t *testing.T) {
	fc := &fakeClient{}
	withFakeClient(t, fc)
	pub, err := NewPublisher(Config{Broker: "tcp://localhost:1883", QoS: 1, Retain: true, PerVehicle: true})
	require.NoError(t, err)
	defer pub.Close()

	plan := testPlan(t)
	require.NoError(t, pub.PublishPlan(context.Background(), plan))

	require.Len(t, fc.msgs, 4)
	assert.Equal(t, "milkrun/plan", fc.msgs[0].topic)
	assert.Equal(t, byte(1), fc.msgs[0].qos)
	assert.True(t, fc.msgs[0].retain)

	var msg PlanMessage
	require.NoError(t, json.Unmarshal(fc.msgs[0].payload, &msg))
	assert.Equal(t, plan.RunID, msg.RunID)
	assert.Equal(t, 4, msg.Suggested)
	assert.Len(t, msg.Entries, plan.Schedule.Len())

	assert.Equal(t, "milkrun/plan/vehicle/North_1", fc.msgs[1].topic)
	var vm VehicleMessage
	require.NoError(t, json.Unmarshal(fc.msgs[1].payload, &vm))
	assert.Equal(t, "North/1", vm.Vehicle)
	for _, e := range vm.Entries {
		assert.Equal(t, 0, e.VehicleIndex)
	}
}

func TestPublishRetries(t *testing.T) {
	fc := &fakeClient{failures: 2}
	withFakeClient(t, fc)
	pub, err := NewPublisher(Config{Broker: "tcp://x:1883", MaxRetries: 2, BackoffMS: 1})
	require.NoError(t, err)
	require.NoError(t, pub.PublishPlan(context.Background(), testPlan(t)))
	assert.Len(t, fc.msgs, 1)

	fc.failures = 10
	err = pub.PublishPlan(context.Background(), testPlan(t))
	assert.EqualError(t, err, "broker busy")
}

func TestNewPublisherErrors(t *testing.T) {
	fc := &fakeClient{connErr: errors.New("refused")}
	withFakeClient(t, fc)
	_, err := NewPublisher(Config{Broker: "tcp://x:1883"})
	assert.ErrorContains(t, err, "refused")

	_, err = NewPublisher(Config{Broker: "tcp://x:1883", QoS: 3})
	assert.Error(t, err)

	_, err = NewPublisher(Config{Broker: "tcp://x:1883", UseTLS: true})
	assert.Error(t, err)
}

func TestConfigDefaults(t *testing.T) {
	var c Config
	assert.False(t, c.Enabled())
	assert.NoError(t, c.Validate())
	c.SetDefaults()
	assert.Equal(t, "milkrun/plan", c.Topic)
	assert.Equal(t, 3, c.MaxRetries)
	assert.Equal(t, "milkrun/plan/vehicle/Truck_7", VehicleTopic(c.Topic, "Truck 7"))
}
