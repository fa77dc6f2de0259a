package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Redis is a Broker over Redis pub/sub, shared by every trainfit process
// connected to the same server.
type Redis struct {
	rdb     *redis.Client
	channel string
	log     zerolog.Logger
}

// NewRedis connects to the server at url (redis://...) and publishes on
// channel.
func NewRedis(url, channel string, log zerolog.Logger) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	return &Redis{rdb: redis.NewClient(opt), channel: channel, log: log}, nil
}

// Ping checks the connection to the server.
func (b *Redis) Ping(ctx context.Context) error {
	return b.rdb.Ping(ctx).Err()
}

func (b *Redis) Publish(ctx context.Context, evt Event) error {
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encoding event %s: %w", evt.ID, err)
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publishing event %s: %w", evt.ID, err)
	}
	return nil
}

func (b *Redis) Subscribe(ctx context.Context) (<-chan Event, func()) {
	ps := b.rdb.Subscribe(ctx, b.channel)
	ch := make(chan Event, subscriberBuffer)
	stop := make(chan struct{})

	go func() {
		defer close(ch)
		defer ps.Close()
		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var evt Event
				if err := json.Unmarshal([]byte(msg.Payload), &evt); err != nil {
					b.log.Warn().Err(err).Str("channel", msg.Channel).Msg("dropping undecodable event")
					continue
				}
				select {
				case ch <- evt:
				default:
				}
			}
		}
	}()

	var once sync.Once
	return ch, func() { once.Do(func() { close(stop) }) }
}

func (b *Redis) Close() error {
	return b.rdb.Close()
}
