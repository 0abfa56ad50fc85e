package gateway

import (
	"context"
	"encoding/json"
	"log"

	"github.com/redis/go-redis/v9"
)

const defaultChannel = "grevocab:sync"

// RedisBus broadcasts sync events over a Redis pub/sub channel. It is the
// service-world equivalent of a browser BroadcastChannel: at-most-once-ish
// delivery, no ordering, every subscriber sees every event including its
// publisher's own (consumers filter by origin ID).
type RedisBus struct {
	client  *redis.Client
	channel string
}

func NewRedisBus(redisURL string) (*RedisBus, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return &RedisBus{client: client, channel: defaultChannel}, nil
}

func (b *RedisBus) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, b.channel, payload).Err()
}

// Subscribe delivers events to fn on a background goroutine until the
// returned cancel function runs or ctx is done.
func (b *RedisBus) Subscribe(ctx context.Context, fn func(Event)) (func(), error) {
	sub := b.client.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}

	go func() {
		for msg := range sub.Channel() {
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[bus] dropping malformed event: %v", err)
				continue
			}
			fn(ev)
		}
	}()

	return func() { sub.Close() }, nil
}

func (b *RedisBus) Close() error {
	return b.client.Close()
}
