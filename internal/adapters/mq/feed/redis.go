package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
	"github.com/go-redis/redis/v8"
)

// RedisFeed shares changes between server instances over Redis pub/sub.
// One Redis subscription per process feeds the local hub.
type RedisFeed struct {
	settings
	client redis.UniversalClient
	pubsub *redis.PubSub
	hub    *hub
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

var _ Feed = (*RedisFeed)(nil)

// NewRedisFeed pings client, subscribes to every collection channel and
// starts forwarding.
func NewRedisFeed(ctx context.Context, client redis.UniversalClient, opts ...Option) (*RedisFeed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis feed: nil client")
	}
	s := newSettings(opts)

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis feed: ping: %w", err)
	}

	runCtx, cancel := context.WithCancel(context.Background())
	f := &RedisFeed{
		settings: s,
		client:   client,
		hub:      newHub(s.bufferSize),
		cancel:   cancel,
	}

	channels := make([]string, 0, 2)
	for _, c := range Collections() {
		channels = append(channels, f.channel(c))
	}
	f.pubsub = client.Subscribe(runCtx, channels...)
	// Wait for the subscription so publishes right after construction are seen.
	for range channels {
		if _, err := f.pubsub.Receive(pingCtx); err != nil {
			cancel()
			_ = f.pubsub.Close()
			return nil, fmt.Errorf("redis feed: subscribe: %w", err)
		}
	}

	f.logger.Info(ctx, "redis feed subscribed", logger.Any("channels", channels))

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.forward(runCtx)
	}()
	return f, nil
}

func (f *RedisFeed) channel(collection string) string {
	return f.channelPrefix + collection
}

func (f *RedisFeed) forward(ctx context.Context) {
	ch := f.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var c Change
			if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
				f.logger.Warn(ctx, "redis feed: dropping malformed payload",
					logger.String("channel", msg.Channel), logger.Error(err))
				continue
			}
			c.Collection = strings.TrimPrefix(msg.Channel, f.channelPrefix)
			if validCollection(c.Collection) != nil {
				continue
			}
			f.hub.deliver(c)
		}
	}
}

func (f *RedisFeed) Publish(ctx context.Context, c Change) error {
	if err := validCollection(c.Collection); err != nil {
		return err
	}
	if c.At.IsZero() {
		c.At = f.now().UTC()
	}
	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("redis feed: encode: %w", err)
	}
	if err := f.client.Publish(ctx, f.channel(c.Collection), data).Err(); err != nil {
		return fmt.Errorf("redis feed: publish to %s: %w", f.channel(c.Collection), err)
	}
	metrics.RecordFeedPublished(c.Collection)
	return nil
}

func (f *RedisFeed) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	return f.hub.subscribe(ctx, collection)
}

// Close stops forwarding and ends every local subscription. The client is
// owned by the caller.
func (f *RedisFeed) Close() error {
	var err error
	f.once.Do(func() {
		f.cancel()
		err = f.pubsub.Close()
		f.wg.Wait()
		f.hub.close()
	})
	return err
}
