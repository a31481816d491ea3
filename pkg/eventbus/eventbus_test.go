package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type createdEvent struct {
	ID string
}

type removedEvent struct {
	ID string
}

func TestPublish_DeliversToMatchingSubscriber(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var got []string
	bus.Subscribe(func(e createdEvent) {
		got = append(got, e.ID)
	})

	bus.Publish(createdEvent{ID: "a"})
	bus.Publish(removedEvent{ID: "ignored"})
	bus.Publish(createdEvent{ID: "b"})

	require.Equal(t, []string{"a", "b"}, got)
}

func TestPublish_RecoversFromHandlerPanic(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	called := false
	bus.Subscribe(func(e createdEvent) { panic("boom") })
	bus.Subscribe(func(e createdEvent) { called = true })

	require.NotPanics(t, func() {
		bus.Publish(createdEvent{ID: "x"})
	})
	require.True(t, called)
}

func TestUnsubscribe(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	calls := 0
	handler := func(e createdEvent) { calls++ }

	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Publish(createdEvent{})
	bus.Unsubscribe(handler)
	bus.Publish(createdEvent{})

	require.Equal(t, 1, calls)
	require.Equal(t, 0, bus.SubscribersCount())
}

func TestSubscribe_RejectsNonFunction(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	require.Panics(t, func() { bus.Subscribe("not a function") })
}

func TestClear(t *testing.T) {
	bus := NewEventPublisher(logrus.New())
	bus.Subscribe(func(e createdEvent) {})
	bus.Clear()
	require.Equal(t, 0, bus.SubscribersCount())
}
