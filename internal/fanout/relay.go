package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"automarket/chat/internal/hub"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
)

const channelPrefix = "room."

// RedisRelay fans events out across server instances through Redis pub/sub.
// Every instance publishes to room.{id} and delivers what it receives on
// room.* to its own hub, so a sender's instance needs no knowledge of where
// the other members are connected.
type RedisRelay struct {
	client   *redis.Client
	hub      *hub.Hub
	instance string
}

// NewRedisRelay connects to redisURL and verifies the connection.
func NewRedisRelay(redisURL string, h *hub.Hub) (*RedisRelay, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: parse url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return &RedisRelay{client: c, hub: h, instance: uuid.NewString()}, nil
}

// Ensure interface compliance at compile time
var _ Sink = (*RedisRelay)(nil)

// Deliver publishes the envelope on the room channel.
func (r *RedisRelay) Deliver(ctx context.Context, env Envelope) error {
	payload, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, ChannelName(env.RoomID), payload).Err()
}

// Run consumes room.* until ctx is cancelled.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.client.PSubscribe(ctx, channelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("redis: subscribe: %w", err)
	}
	slog.Info("fanout: relay subscribed", "instance", r.instance)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env Envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				slog.Warn("fanout: dropping malformed relay payload", "channel", msg.Channel, "error", err)
				continue
			}
			if roomID, ok := ParseChannel(msg.Channel); !ok || roomID != env.RoomID {
				slog.Warn("fanout: relay channel mismatch", "channel", msg.Channel, "room_id", env.RoomID)
				continue
			}
			DeliverLocal(r.hub, env)
		}
	}
}

// Close releases the Redis client.
func (r *RedisRelay) Close() error {
	return r.client.Close()
}

// ChannelName returns the push channel of a room.
func ChannelName(roomID uint) string {
	return channelPrefix + strconv.FormatUint(uint64(roomID), 10)
}

// ParseChannel extracts the room id from a channel name.
func ParseChannel(channel string) (uint, bool) {
	rest, ok := strings.CutPrefix(channel, channelPrefix)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseUint(rest, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
