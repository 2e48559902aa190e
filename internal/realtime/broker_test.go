package realtime

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func setupRedisBroker(t *testing.T, hub *Hub) *RedisBroker {
	t.Helper()
	s := miniredis.RunT(t)

	broker, err := NewRedisBroker("redis://"+s.Addr(), hub)
	require.NoError(t, err)
	t.Cleanup(func() { broker.Close() })
	return broker
}

func TestNewRedisBroker_InvalidURL(t *testing.T) {
	_, err := NewRedisBroker("not-a-url", NewHub())
	require.Error(t, err)
}

func TestRedisBroker_RelaysToLocalHub(t *testing.T) {
	hub := NewHub()
	broker := setupRedisBroker(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, broker.Start(ctx))

	member := NewClient(1, 4)
	other := NewClient(2, 4)
	hub.Join(42, member)
	hub.Join(43, other)

	require.NoError(t, broker.Publish(ctx, 42, []byte(`{"type":"newMessage"}`)))

	require.JSONEq(t, `{"type":"newMessage"}`, string(receive(t, member)))
	requireNoMessage(t, other)
}

func TestRedisBroker_PreservesPublishOrder(t *testing.T) {
	hub := NewHub()
	broker := setupRedisBroker(t, hub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, broker.Start(ctx))

	c := NewClient(1, 16)
	hub.Join(7, c)

	for _, m := range []string{"a", "b", "c", "d"} {
		require.NoError(t, broker.Publish(ctx, 7, []byte(m)))
	}

	for _, want := range []string{"a", "b", "c", "d"} {
		require.Equal(t, want, string(receive(t, c)))
	}
}

func TestRedisBroker_RoomFromChannel(t *testing.T) {
	b := &RedisBroker{prefix: roomChannelPrefix}

	room, err := b.roomFromChannel(b.channel(99))
	require.NoError(t, err)
	require.EqualValues(t, 99, room)

	_, err = b.roomFromChannel("goalchat:room:abc")
	require.Error(t, err)
}
