package client

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eureka/pkg/realtime/wire"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatchInvokesEachSubscriberOnceWithSamePayload(t *testing.T) {
	bus := NewBus(discard())
	var got []json.RawMessage
	for i := 0; i < 3; i++ {
		bus.Subscribe(wire.EventNewPost, func(p json.RawMessage) { got = append(got, p) })
	}

	payload := json.RawMessage(`{"id":"p1"}`)
	bus.Dispatch(wire.EventNewPost, payload)

	require.Len(t, got, 3)
	for _, p := range got {
		assert.Same(t, &payload[0], &p[0], "subscribers share one payload")
	}
}

func TestDispatchOrderAndTypeIsolation(t *testing.T) {
	bus := NewBus(discard())
	var order []string
	bus.Subscribe(wire.EventNewComment, func(json.RawMessage) { order = append(order, "first") })
	bus.Subscribe(wire.EventNewPost, func(json.RawMessage) { order = append(order, "other type") })
	bus.Subscribe(wire.EventNewComment, func(json.RawMessage) { order = append(order, "second") })

	bus.Dispatch(wire.EventNewComment, json.RawMessage(`{}`))
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	bus := NewBus(discard())
	calls := 0
	sub := bus.Subscribe(wire.EventNewNotification, func(json.RawMessage) { calls++ })

	bus.Dispatch(wire.EventNewNotification, nil)
	sub.Unsubscribe()
	sub.Unsubscribe()
	bus.Unsubscribe(sub)
	bus.Dispatch(wire.EventNewNotification, nil)

	assert.Equal(t, 1, calls)
	assert.Zero(t, bus.Len(wire.EventNewNotification))
}

func TestDuplicateSubscriptionsFireIndependently(t *testing.T) {
	bus := NewBus(discard())
	calls := 0
	handler := func(json.RawMessage) { calls++ }
	first := bus.Subscribe(wire.EventNewPost, handler)
	bus.Subscribe(wire.EventNewPost, handler)

	bus.Dispatch(wire.EventNewPost, nil)
	assert.Equal(t, 2, calls, "the same function registered twice fires twice")

	first.Unsubscribe()
	bus.Dispatch(wire.EventNewPost, nil)
	assert.Equal(t, 3, calls, "releasing one handle leaves the other")
}

func TestDispatchWithoutSubscribersIsNoop(t *testing.T) {
	bus := NewBus(discard())
	assert.NotPanics(t, func() {
		bus.Dispatch(wire.EventNewComment, json.RawMessage(`{"postId":"p1"}`))
	})
	bus.Unsubscribe(nil)
}

func TestPanickingHandlerDoesNotStopSiblings(t *testing.T) {
	bus := NewBus(discard())
	ran := false
	bus.Subscribe(wire.EventNewPost, func(json.RawMessage) { panic("boom") })
	bus.Subscribe(wire.EventNewPost, func(json.RawMessage) { ran = true })

	assert.NotPanics(t, func() { bus.Dispatch(wire.EventNewPost, nil) })
	assert.True(t, ran)
}

func TestMutationDuringDispatch(t *testing.T) {
	bus := NewBus(discard())
	var calls []string
	var second *Subscription
	bus.Subscribe(wire.EventNewPost, func(json.RawMessage) {
		calls = append(calls, "first")
		second.Unsubscribe()
		bus.Subscribe(wire.EventNewPost, func(json.RawMessage) { calls = append(calls, "late") })
	})
	second = bus.Subscribe(wire.EventNewPost, func(json.RawMessage) { calls = append(calls, "second") })

	bus.Dispatch(wire.EventNewPost, nil)
	assert.Equal(t, []string{"first"}, calls, "released handles are skipped and new ones wait for the next dispatch")

	calls = nil
	bus.Dispatch(wire.EventNewPost, nil)
	assert.Equal(t, []string{"first", "late"}, calls)
}

func TestOnDecodesTypedPayload(t *testing.T) {
	bus := NewBus(discard())
	var got []wire.NewComment
	On(bus, wire.EventNewComment, func(c wire.NewComment) { got = append(got, c) }, discard())

	bus.Dispatch(wire.EventNewComment, json.RawMessage(`{"postId":"p1","comment":{"id":"c1"}}`))
	bus.Dispatch(wire.EventNewComment, json.RawMessage(`"not an object"`))

	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].PostID)
	assert.Equal(t, "c1", got[0].Comment.ID)
}

func TestScopeReleasesEverything(t *testing.T) {
	bus := NewBus(discard())
	scope := bus.NewScope()
	calls := 0
	scope.Subscribe(wire.EventNewPost, func(json.RawMessage) { calls++ })
	On(scope, wire.EventNewComment, func(wire.NewComment) { calls++ }, discard())
	require.Equal(t, 1, bus.Len(wire.EventNewPost))

	scope.Close()
	scope.Close()
	bus.Dispatch(wire.EventNewPost, nil)
	bus.Dispatch(wire.EventNewComment, json.RawMessage(`{}`))
	assert.Zero(t, calls)
	assert.Zero(t, bus.Len(wire.EventNewPost))
	assert.Zero(t, bus.Len(wire.EventNewComment))

	late := scope.Subscribe(wire.EventNewPost, func(json.RawMessage) { calls++ })
	bus.Dispatch(wire.EventNewPost, nil)
	assert.Zero(t, calls, "a closed scope hands out released subscriptions")
	assert.Equal(t, wire.EventNewPost, late.EventType())
}
