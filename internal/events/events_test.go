package events

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory(t *testing.T) {
	m := &Memory{}
	ctx := context.Background()

	require.NoError(t, m.PublishEvent(ctx, TopicOrder, "1", map[string]any{"type": "order_created", "orderID": 1}))
	require.NoError(t, m.PublishEvent(ctx, TopicCart, "s", map[string]any{"type": "cart_cleared"}))

	orders := m.Events(TopicOrder)
	require.Len(t, orders, 1)
	assert.Equal(t, "order_created", orders[0].Payload["type"])
	assert.EqualValues(t, 1, orders[0].Payload["orderID"])
	assert.Len(t, m.Events(""), 2)
}

func TestMemory_RejectsUnencodable(t *testing.T) {
	m := &Memory{}
	require.Error(t, m.PublishEvent(context.Background(), TopicCart, "k", make(chan int)))
}

func TestNop(t *testing.T) {
	require.NoError(t, Nop{}.PublishEvent(context.Background(), TopicCart, "k", nil))
}

func TestProducer_Kafka(t *testing.T) {
	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		t.Skip("KAFKA_BROKER not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	topic := "storefront_test_events"
	p := NewProducer([]string{broker})
	defer p.Close()
	require.NoError(t, p.PublishEvent(ctx, topic, "k1", map[string]any{"type": "ping"}))

	r := kafka.NewReader(kafka.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       topic,
		StartOffset: kafka.LastOffset,
		MaxWait:     time.Second,
	})
	defer r.Close()
	require.NoError(t, r.SetOffset(kafka.FirstOffset))

	msg, err := r.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, topic, msg.Topic)
}
