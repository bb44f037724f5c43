package progress

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Bt1QDL/model"
)

func progressEvent(sessionID string, pct int) model.ProgressEvent {
	return model.ProgressEvent{
		SessionID: sessionID,
		Type:      model.EventProgress,
		Message:   "Downloading",
		Progress:  pct,
		Stage:     "downloading",
	}
}

func TestPublishWithoutSubscriberIsDropped(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	assert.NotPanics(t, func() {
		b.Publish(progressEvent("nobody", 10))
	})
}

func TestRegisterAndReceive(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	ch, _ := b.Register("s1")

	b.Publish(progressEvent("s1", 25))
	b.Publish(progressEvent("s1", 50))

	ev := <-ch
	assert.Equal(t, 25, ev.Progress)
	ev = <-ch
	assert.Equal(t, 50, ev.Progress)
}

func TestRegisterAfterBindCancel(t *testing.T) {
	b := NewBroadcaster(time.Minute)

	// The orchestrator binds its cancel before any subscriber attaches;
	// the session entry then exists without a channel.
	cancelled := false
	b.BindCancel("s1", func() { cancelled = true })

	var ch <-chan model.ProgressEvent
	require.NotPanics(t, func() { ch, _ = b.Register("s1") })

	b.Publish(progressEvent("s1", 30))
	ev := <-ch
	assert.Equal(t, 30, ev.Progress)

	assert.True(t, b.RequestCancel("s1"))
	assert.True(t, cancelled)
}

func TestPublishDropsWhenBufferFull(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	ch, _ := b.Register("s1")

	for i := 0; i <= subscriberBuffer+5; i++ {
		b.Publish(progressEvent("s1", i))
	}

	// The subscriber sees exactly the buffered prefix; the overflow is gone.
	received := 0
	for {
		select {
		case <-ch:
			received++
		default:
			assert.Equal(t, subscriberBuffer, received)
			return
		}
	}
}

func TestTerminalEventClosesAfterGrace(t *testing.T) {
	b := NewBroadcaster(20 * time.Millisecond)
	ch, _ := b.Register("s1")

	b.Publish(model.ProgressEvent{
		SessionID: "s1",
		Type:      model.EventComplete,
		Progress:  100,
		Stage:     "complete",
	})

	ev, open := <-ch
	require.True(t, open)
	assert.Equal(t, model.EventComplete, ev.Type)

	select {
	case _, open := <-ch:
		assert.False(t, open, "channel must close after the grace period")
	case <-time.After(time.Second):
		t.Fatal("channel not closed after grace period")
	}
}

func TestTerminalCleanupDropsCancelBinding(t *testing.T) {
	b := NewBroadcaster(10 * time.Millisecond)
	b.BindCancel("s1", func() {})

	b.Publish(model.ProgressEvent{SessionID: "s1", Type: model.EventComplete})

	require.Eventually(t, func() bool {
		return !b.RequestCancel("s1")
	}, time.Second, 5*time.Millisecond, "terminated session must be forgotten entirely")
}

func TestUnsubscribeKeepsSessionCancellable(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	ch, unsubscribe := b.Register("s1")

	cancelled := false
	b.BindCancel("s1", func() { cancelled = true })

	// Client disconnects while the session is still running.
	unsubscribe()
	_, open := <-ch
	assert.False(t, open)
	assert.NotPanics(t, unsubscribe)

	assert.True(t, b.RequestCancel("s1"), "a running session stays cancellable without a subscriber")
	assert.True(t, cancelled)

	// Publishing into the detached session is a no-op.
	assert.NotPanics(t, func() { b.Publish(progressEvent("s1", 10)) })
}

func TestStaleUnsubscribeLeavesFreshSubscriber(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	old, oldUnsub := b.Register("s1")
	fresh, _ := b.Register("s1")

	// The replaced handler wakes on its closed channel and unsubscribes on
	// the way out; the reconnected subscriber must survive that.
	_, open := <-old
	assert.False(t, open, "replaced subscriber channel must be closed")
	oldUnsub()

	b.Publish(progressEvent("s1", 42))
	select {
	case ev, open := <-fresh:
		require.True(t, open, "fresh subscriber torn down by stale unsubscribe")
		assert.Equal(t, 42, ev.Progress)
	default:
		t.Fatal("fresh subscriber received nothing")
	}
}

func TestUnregisterIsIdempotent(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	ch, _ := b.Register("s1")

	b.Unregister("s1")
	assert.NotPanics(t, func() { b.Unregister("s1") })

	_, open := <-ch
	assert.False(t, open)

	assert.NotPanics(t, func() { b.Publish(progressEvent("s1", 10)) })
}

func TestRequestCancel(t *testing.T) {
	b := NewBroadcaster(time.Minute)

	assert.False(t, b.RequestCancel("unknown"))

	cancelled := false
	b.BindCancel("s1", func() { cancelled = true })
	assert.True(t, b.RequestCancel("s1"))
	assert.True(t, cancelled)
}

func TestBindCancelSurvivesReRegister(t *testing.T) {
	b := NewBroadcaster(time.Minute)
	b.Register("s1")

	cancelled := false
	b.BindCancel("s1", func() { cancelled = true })
	b.Register("s1")

	assert.True(t, b.RequestCancel("s1"))
	assert.True(t, cancelled)
}
