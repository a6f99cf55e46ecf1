package eventbus

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type pullCompleted struct {
	Created int
}

func TestEventBus_PublishMatchesSignature(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	var got *pullCompleted
	bus.Subscribe(func(ev *pullCompleted) {
		got = ev
	})

	bus.Publish(&pullCompleted{Created: 3})
	require.NotNil(t, got)
	require.Equal(t, 3, got.Created)
}

func TestEventBus_PublishIgnoresMismatchedArgs(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	called := false
	bus.Subscribe(func(ev *pullCompleted) { called = true })

	bus.Publish("not an event")
	require.False(t, called)
}

func TestEventBus_Unsubscribe(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	handler := func(ev *pullCompleted) {}
	bus.Subscribe(handler)
	require.Equal(t, 1, bus.SubscribersCount())

	bus.Clear()
	require.Equal(t, 0, bus.SubscribersCount())
}

func TestEventBus_RecoverFromPanickingHandler(t *testing.T) {
	bus := NewEventPublisher(logrus.New())

	bus.Subscribe(func(ev *pullCompleted) { panic("boom") })
	require.NotPanics(t, func() {
		bus.Publish(&pullCompleted{})
	})
}
