package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labelboard/backend/internal/shared/types"
)

func TestBusFanOutOrder(t *testing.T) {
	bus := NewBus()
	var order []int
	bus.Subscribe(func(Event) { order = append(order, 1) })
	bus.Subscribe(func(Event) { order = append(order, 2) })

	bus.Publish(TypeModeChanged, nil)
	assert.Equal(t, []int{1, 2}, order)
}

func TestSubscriptionClose(t *testing.T) {
	bus := NewBus()
	var got int
	sub := bus.Subscribe(func(Event) { got++ })

	bus.Publish(TypeNotification, nil)
	sub.Close()
	sub.Close() // idempotent
	bus.Publish(TypeNotification, nil)

	assert.Equal(t, 1, got)
	assert.Equal(t, 0, bus.Subscribers())
}

func TestNotifierStampsNotification(t *testing.T) {
	bus := NewBus()
	notifier := NewNotifier(bus)

	var got types.Notification
	bus.Subscribe(func(e Event) {
		got = e.Payload.(types.Notification)
	})

	notifier.Notify(types.Notification{Message: "boom", Severity: types.SeverityError})
	assert.NotEmpty(t, got.ID)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, "boom", got.Message)
}

func TestConfirmResolveAccepted(t *testing.T) {
	bus := NewBus()
	notifier := NewNotifier(bus)

	bus.Subscribe(func(e Event) {
		if e.Type == TypeConfirmRequested {
			req := e.Payload.(ConfirmRequest)
			// Answer from another goroutine, like a ws client would.
			go notifier.Resolve(req.ID, true)
		}
	})

	accepted := notifier.Confirm(context.Background(), types.Confirmation{Message: "configure labeling?"})
	assert.True(t, accepted)
}

func TestConfirmTimesOutDeclined(t *testing.T) {
	bus := NewBus()
	notifier := NewNotifier(bus).WithTimeout(20 * time.Millisecond)

	start := time.Now()
	accepted := notifier.Confirm(context.Background(), types.Confirmation{})
	require.False(t, accepted)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConfirmContextCancelDeclines(t *testing.T) {
	bus := NewBus()
	notifier := NewNotifier(bus)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, notifier.Confirm(ctx, types.Confirmation{}))
}

func TestResolveUnknownID(t *testing.T) {
	notifier := NewNotifier(NewBus())
	assert.False(t, notifier.Resolve("nope", true))
}
