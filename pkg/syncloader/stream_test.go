package syncloader_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/illmade-knight/go-syncloader/pkg/syncloader"
)

func TestValueStream_ReplaysLatestToNewSubscribers(t *testing.T) {
	// Arrange
	stream := syncloader.NewValueStream("initial")
	stream.Publish("updated")

	// Act
	var received []string
	stream.Subscribe(func(snap syncloader.Snapshot[string]) {
		received = append(received, snap.Value)
	})

	// Assert: the subscriber immediately sees the latest value.
	require.Len(t, received, 1)
	assert.Equal(t, "updated", received[0])
}

func TestValueStream_BroadcastsInOrder(t *testing.T) {
	stream := syncloader.NewValueStream(0)
	var received []int
	stream.Subscribe(func(snap syncloader.Snapshot[int]) {
		received = append(received, snap.Value)
	})

	stream.Publish(1)
	stream.Publish(2)
	stream.Publish(3)

	assert.Equal(t, []int{0, 1, 2, 3}, received)
}

func TestValueStream_ReentrantPublishDeliversInOrder(t *testing.T) {
	// Arrange: the first subscriber publishes again from inside its callback.
	stream := syncloader.NewValueStream("initial")
	var first []string
	stream.Subscribe(func(snap syncloader.Snapshot[string]) {
		first = append(first, snap.Value)
		if snap.Value == "a" {
			stream.Publish("b")
		}
	})
	var second []string
	stream.Subscribe(func(snap syncloader.Snapshot[string]) {
		second = append(second, snap.Value)
	})

	// Act
	stream.Publish("a")

	// Assert: every subscriber sees "a" before "b"; the nested publish never
	// overtakes the one still being delivered.
	want := []string{"initial", "a", "b"}
	assert.Equal(t, want, first)
	assert.Equal(t, want, second)
}

func TestValueStream_ErrorStateRetainsLastValue(t *testing.T) {
	// Arrange
	stream := syncloader.NewValueStream("data")
	streamErr := errors.New("remote failed")

	// Act
	stream.PublishError(streamErr)

	// Assert
	snap := stream.CurrentSnapshot()
	assert.ErrorIs(t, snap.Err, streamErr)
	assert.Equal(t, "data", snap.Value)

	// A subsequent publish clears the error state.
	stream.Publish("fresh")
	assert.NoError(t, stream.CurrentSnapshot().Err)
	assert.Equal(t, "fresh", stream.Current())
}

func TestValueStream_UnsubscribeStopsDelivery(t *testing.T) {
	stream := syncloader.NewValueStream(0)
	calls := 0
	unsubscribe := stream.Subscribe(func(syncloader.Snapshot[int]) {
		calls++
	})

	stream.Publish(1)
	unsubscribe()
	stream.Publish(2)

	assert.Equal(t, 2, calls, "replay plus one publish, nothing after unsubscribe")
}
