package realtime

import (
	"context"
	"encoding/json"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// EventsChannel is the redis channel shared by all instances.
const EventsChannel = "carefront:events"

type envelope struct {
	Room  string          `json:"room,omitempty"`
	Frame json.RawMessage `json:"frame"`
}

// RedisFanout relays hub events between instances over redis pub/sub.
type RedisFanout struct {
	client  *redis.Client
	channel string
	log     *zap.Logger

	subscribed atomic.Bool
}

func NewRedisFanout(client *redis.Client, log *zap.Logger) *RedisFanout {
	return &RedisFanout{client: client, channel: EventsChannel, log: log}
}

// Subscribed reports whether Run is currently consuming the events channel.
func (f *RedisFanout) Subscribed() bool {
	return f.subscribed.Load()
}

func (f *RedisFanout) Publish(ctx context.Context, room string, frame []byte) error {
	data, err := json.Marshal(envelope{Room: room, Frame: frame})
	if err != nil {
		return err
	}
	return errors.Wrap(f.client.Publish(ctx, f.channel, data).Err(), "publishing realtime event")
}

// Run subscribes to the events channel and hands every envelope to deliver
// until ctx is cancelled.
func (f *RedisFanout) Run(ctx context.Context, deliver func(room string, frame []byte)) error {
	pubsub := f.client.Subscribe(ctx, f.channel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return errors.Wrapf(err, "subscribing to %s", f.channel)
	}
	f.subscribed.Store(true)
	defer f.subscribed.Store(false)
	f.log.Info("subscribed to realtime fan-out", zap.String("channel", f.channel))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				f.log.Warn("bad fan-out payload", zap.Error(err))
				continue
			}
			deliver(env.Room, env.Frame)
		}
	}
}
