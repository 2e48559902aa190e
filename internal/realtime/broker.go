package realtime

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yukikurage/goal-community-api/internal/logger"
)

// Broker delivers an encoded event to every connection subscribed to a room.
type Broker interface {
	Publish(ctx context.Context, room uint64, payload []byte) error
}

// LocalBroker delivers straight into the in-process hub.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(hub *Hub) *LocalBroker {
	return &LocalBroker{hub: hub}
}

func (b *LocalBroker) Publish(_ context.Context, room uint64, payload []byte) error {
	b.hub.Broadcast(room, payload)
	return nil
}

const roomChannelPrefix = "goalchat:room:"

// RedisBroker fans events out through Redis pub/sub so that every API
// instance relays them to its own hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	prefix string
}

// NewRedisBroker connects to redisURL and verifies the connection.
func NewRedisBroker(redisURL string, hub *Hub) (*RedisBroker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisBrokerWithClient(client, hub), nil
}

// NewRedisBrokerWithClient creates a broker from an existing client.
func NewRedisBrokerWithClient(client *redis.Client, hub *Hub) *RedisBroker {
	return &RedisBroker{
		client: client,
		hub:    hub,
		prefix: roomChannelPrefix,
	}
}

func (b *RedisBroker) channel(room uint64) string {
	return b.prefix + strconv.FormatUint(room, 10)
}

func (b *RedisBroker) roomFromChannel(channel string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(channel, b.prefix), 10, 64)
}

// Publish sends the payload to the room's channel.
func (b *RedisBroker) Publish(ctx context.Context, room uint64, payload []byte) error {
	if err := b.client.Publish(ctx, b.channel(room), payload).Err(); err != nil {
		return fmt.Errorf("publish chat event: %w", err)
	}
	return nil
}

// Start subscribes to every room channel and relays messages into the hub
// until ctx is cancelled. It returns once the subscription is confirmed.
func (b *RedisBroker) Start(ctx context.Context) error {
	pubsub := b.client.PSubscribe(ctx, b.prefix+"*")
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return fmt.Errorf("subscribe to chat channels: %w", err)
	}

	go func() {
		defer pubsub.Close()
		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				room, err := b.roomFromChannel(msg.Channel)
				if err != nil {
					logger.Warn().Str("channel", msg.Channel).Msg("ignoring message on unknown chat channel")
					continue
				}
				b.hub.Broadcast(room, []byte(msg.Payload))
			}
		}
	}()

	return nil
}

// Close closes the Redis connection
func (b *RedisBroker) Close() error {
	return b.client.Close()
}
