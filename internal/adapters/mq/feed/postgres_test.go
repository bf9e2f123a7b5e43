package feed

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeNotifier struct {
	ch     chan *pq.Notification
	closed bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{ch: make(chan *pq.Notification, 8)}
}

func (n *fakeNotifier) NotificationChannel() <-chan *pq.Notification { return n.ch }
func (n *fakeNotifier) Ping() error                                   { return nil }
func (n *fakeNotifier) Close() error {
	n.closed = true
	return nil
}

func TestDecodeNotification(t *testing.T) {
	Convey("Given trigger payloads", t, func() {
		Convey("When the payload is well formed", func() {
			c, err := decodeNotification("results", `{"op":"delete","id":"r1","event_id":"e1"}`)

			Convey("Then the change carries the channel as collection", func() {
				So(err, ShouldBeNil)
				So(c, ShouldResemble, Change{Collection: CollectionResults, Op: OpDelete, ID: "r1", EventID: "e1"})
			})
		})

		Convey("When the channel is not a collection", func() {
			_, err := decodeNotification("other", `{}`)
			So(errors.Is(err, ErrUnknownCollection), ShouldBeTrue)
		})

		Convey("When the payload is not JSON", func() {
			_, err := decodeNotification("events", `nope`)
			So(err, ShouldNotBeNil)
		})
	})
}

func TestPostgresFeed(t *testing.T) {
	Convey("Given a postgres feed on a fake listener", t, func() {
		db, mock, err := sqlmock.New()
		So(err, ShouldBeNil)
		defer db.Close()

		n := newFakeNotifier()
		fixed := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
		f := newPostgresFeed(db, n, newSettings([]Option{WithClock(func() time.Time { return fixed })}))
		defer f.Close()
		ctx := context.Background()

		Convey("When the trigger notifies", func() {
			sub, err := f.Subscribe(ctx, CollectionEvents)
			So(err, ShouldBeNil)
			n.ch <- &pq.Notification{Channel: "events", Extra: `{"op":"update","id":"e1","event_id":"e1"}`}

			Convey("Then subscribers receive a stamped change", func() {
				c, ok := receive(t, sub)
				So(ok, ShouldBeTrue)
				So(c.Op, ShouldEqual, OpUpdate)
				So(c.At, ShouldEqual, fixed)
			})
		})

		Convey("When the listener reconnects", func() {
			sub, err := f.Subscribe(ctx, CollectionResults)
			So(err, ShouldBeNil)
			n.ch <- nil

			Convey("Then a resync is delivered", func() {
				c, ok := receive(t, sub)
				So(ok, ShouldBeTrue)
				So(c.Op, ShouldEqual, OpResync)
			})
		})

		Convey("When publishing", func() {
			mock.ExpectExec(`SELECT pg_notify\(\$1, \$2\)`).
				WithArgs("results", `{"op":"insert","id":"r1","event_id":"e1"}`).
				WillReturnResult(sqlmock.NewResult(0, 1))

			err := f.Publish(ctx, Change{Collection: CollectionResults, Op: OpInsert, ID: "r1", EventID: "e1"})

			Convey("Then pg_notify is called with the trigger payload shape", func() {
				So(err, ShouldBeNil)
				So(mock.ExpectationsWereMet(), ShouldBeNil)
			})
		})

		Convey("When closed", func() {
			So(f.Close(), ShouldBeNil)

			Convey("Then the listener is closed", func() {
				So(n.closed, ShouldBeTrue)
			})
		})
	})
}
