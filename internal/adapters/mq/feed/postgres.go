package feed

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/metrics"
	"github.com/lib/pq"
)

// notifier is the part of *pq.Listener the feed uses.
type notifier interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// PostgresFeed turns LISTEN/NOTIFY from the store triggers into changes.
type PostgresFeed struct {
	settings
	db       *sql.DB
	listener notifier
	hub      *hub
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	once     sync.Once
}

var _ Feed = (*PostgresFeed)(nil)

// NewPostgresFeed opens a pq.Listener on dsn and listens on every
// collection channel. db is used by Publish.
func NewPostgresFeed(dsn string, db *sql.DB, opts ...Option) (*PostgresFeed, error) {
	s := newSettings(opts)
	l := pq.NewListener(dsn, 10*time.Second, time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				s.logger.Error(context.Background(), "postgres listener event",
					logger.Int("event", int(ev)), logger.Error(err))
			}
		})
	for _, c := range Collections() {
		if err := l.Listen(c); err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("postgres feed: listen %s: %w", c, err)
		}
	}
	s.logger.Info(context.Background(), "postgres feed listening", logger.Any("channels", Collections()))
	return newPostgresFeed(db, l, s), nil
}

func newPostgresFeed(db *sql.DB, l notifier, s settings) *PostgresFeed {
	ctx, cancel := context.WithCancel(context.Background())
	f := &PostgresFeed{
		settings: s,
		db:       db,
		listener: l,
		hub:      newHub(s.bufferSize),
		cancel:   cancel,
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		f.run(ctx)
	}()
	return f
}

func (f *PostgresFeed) run(ctx context.Context) {
	ping := time.NewTicker(f.pingInterval)
	defer ping.Stop()

	notes := f.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-notes:
			if !ok {
				return
			}
			if n == nil {
				// The connection was re-established; anything sent in
				// between is lost, so ask every subscriber to refetch.
				f.logger.Warn(ctx, "postgres feed reconnected, requesting resync")
				for _, c := range Collections() {
					f.hub.deliver(Change{Collection: c, Op: OpResync, At: f.now().UTC()})
				}
				continue
			}
			c, err := decodeNotification(n.Channel, n.Extra)
			if err != nil {
				f.logger.Warn(ctx, "postgres feed: dropping malformed notification",
					logger.String("channel", n.Channel), logger.Error(err))
				continue
			}
			c.At = f.now().UTC()
			f.hub.deliver(c)
		case <-ping.C:
			if err := f.listener.Ping(); err != nil {
				f.logger.Error(ctx, "postgres feed ping failed", logger.Error(err))
			}
		}
	}
}

// decodeNotification reads the trigger payload {"op","id","event_id"}.
func decodeNotification(channel, payload string) (Change, error) {
	if err := validCollection(channel); err != nil {
		return Change{}, err
	}
	var c Change
	if err := json.Unmarshal([]byte(payload), &c); err != nil {
		return Change{}, fmt.Errorf("decode payload: %w", err)
	}
	c.Collection = channel
	return c, nil
}

// Publish sends a notification through Postgres. The store triggers already
// notify on every write, so callers only need this for synthetic changes.
func (f *PostgresFeed) Publish(ctx context.Context, c Change) error {
	if err := validCollection(c.Collection); err != nil {
		return err
	}
	payload, err := json.Marshal(struct {
		Op      string `json:"op"`
		ID      string `json:"id"`
		EventID string `json:"event_id"`
	}{c.Op, c.ID, c.EventID})
	if err != nil {
		return fmt.Errorf("postgres feed: encode: %w", err)
	}
	if _, err := f.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, c.Collection, string(payload)); err != nil {
		return fmt.Errorf("postgres feed: notify %s: %w", c.Collection, err)
	}
	metrics.RecordFeedPublished(c.Collection)
	return nil
}

func (f *PostgresFeed) Subscribe(ctx context.Context, collection string) (*Subscription, error) {
	return f.hub.subscribe(ctx, collection)
}

// Close stops the listener and ends every local subscription.
func (f *PostgresFeed) Close() error {
	var err error
	f.once.Do(func() {
		f.cancel()
		f.wg.Wait()
		err = f.listener.Close()
		f.hub.close()
	})
	return err
}
