package events

import (
	"context"
	"encoding/json"
	"sync"
)

type Event struct {
	Topic   string
	Key     string
	Payload map[string]any
}

// Memory records events in process; handy for tests and local runs.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func (m *Memory) PublishEvent(_ context.Context, topic, key string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return err
	}
	m.mu.Lock()
	m.events = append(m.events, Event{Topic: topic, Key: key, Payload: payload})
	m.mu.Unlock()
	return nil
}

func (m *Memory) Events(topic string) []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Event
	for _, e := range m.events {
		if topic == "" || e.Topic == topic {
			out = append(out, e)
		}
	}
	return out
}
