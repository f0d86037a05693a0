package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/bandar-cart/internal/events"
)

type captureStore struct {
	events []events.Event
	err    error
}

func (c *captureStore) Append(_ context.Context, event events.Event) error {
	if c.err != nil {
		return c.err
	}
	c.events = append(c.events, event)
	return nil
}

type captureNotifier struct {
	events []events.Event
	err    error
}

func (c *captureNotifier) Notify(_ context.Context, event events.Event) error {
	c.events = append(c.events, event)
	return c.err
}

func TestEmitPersistsEvent(t *testing.T) {
	store := &captureStore{}
	notifier := &captureNotifier{}
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	bus := events.Bus{Store: store, Notifiers: []events.Notifier{notifier}, Now: func() time.Time { return fixed }}

	event, err := bus.Emit(context.Background(), events.TopicCartItemAdded, "session-1", map[string]any{"itemId": "42"})
	require.NoError(t, err)
	require.Len(t, store.events, 1)
	require.Len(t, notifier.events, 1)
	require.Equal(t, event.ID, store.events[0].ID)
	require.Equal(t, fixed, event.OccurredAt)
	require.JSONEq(t, `{"itemId":"42"}`, string(event.Payload))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(event.Payload, &decoded))
	require.Equal(t, "42", decoded["itemId"])
}

func TestEmitValidation(t *testing.T) {
	bus := events.Bus{}
	_, err := bus.Emit(context.Background(), " ", "s", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicCartItemAdded, "", nil)
	require.Error(t, err)
	_, err = bus.Emit(context.Background(), events.TopicCartItemAdded, "s", "{not json")
	require.Error(t, err)

	event, err := bus.Emit(context.Background(), events.TopicCartItemAdded, "s", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{}`, string(event.Payload))
}

func TestEmitRestrictsTopics(t *testing.T) {
	store := &captureStore{}
	bus := events.Bus{Store: store, Topics: events.DefaultTopics()}

	_, err := bus.Emit(context.Background(), "cart.cleared", "s", nil)
	require.ErrorContains(t, err, "unknown topic")
	require.Empty(t, store.events)

	_, err = bus.Emit(context.Background(), events.TopicCheckoutHandoff, "s", nil)
	require.NoError(t, err)
	require.Len(t, store.events, 1)
}

func TestEmitStoreFailureStopsFanOut(t *testing.T) {
	notifier := &captureNotifier{}
	bus := events.Bus{Store: &captureStore{err: errors.New("down")}, Notifiers: []events.Notifier{notifier}}
	_, err := bus.Emit(context.Background(), events.TopicCartItemRemoved, "s", nil)
	require.Error(t, err)
	require.Empty(t, notifier.events)
}

func TestEmitJoinsNotifierErrors(t *testing.T) {
	first := &captureNotifier{err: errors.New("boom")}
	second := &captureNotifier{}
	bus := events.Bus{Notifiers: []events.Notifier{first, nil, second}}
	event, err := bus.Emit(context.Background(), events.TopicCartItemRemoved, "s", nil)
	require.Error(t, err)
	require.NotEmpty(t, event.ID)
	require.Len(t, second.events, 1)
}

func TestRedisLogAppend(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	bus := events.Bus{Store: events.RedisLog{Client: client, Stream: "test:events"}}
	_, err = bus.Emit(context.Background(), events.TopicCartItemAdded, "s1", map[string]int{"quantity": 2})
	require.NoError(t, err)

	entries, err := client.XRange(context.Background(), "test:events", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, events.TopicCartItemAdded, entries[0].Values["topic"])
	require.Equal(t, "s1", entries[0].Values["aggregate"])
}
