package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestInMemoryDeduper(t *testing.T) {
	ctx := context.Background()

	Convey("Given a new InMemoryDeduper", t, func() {
		d := dedupe.NewInMemoryDeduper[string]()

		Convey("When a key is recorded for the first time", func() {
			seen := d.SeenAndRecord(ctx, "key-1")

			Convey("Then it is not reported as seen", func() {
				So(seen, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 1)
			})

			Convey("And a replay is reported as seen", func() {
				So(d.SeenAndRecord(ctx, "key-1"), ShouldBeTrue)
				So(d.Size(), ShouldEqual, 1)
			})
		})

		Convey("When the first submission is still in flight", func() {
			d.SeenAndRecord(ctx, "key-1")
			_, ok := d.Lookup(ctx, "key-1")

			Convey("Then lookup has no outcome yet", func() {
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When a submission completes", func() {
			d.SeenAndRecord(ctx, "key-1")
			d.Complete(ctx, "key-1", "result-9")
			v, ok := d.Lookup(ctx, "key-1")

			Convey("Then replays can read the outcome", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, "result-9")
			})
		})

		Convey("When completing a key that was never recorded", func() {
			d.Complete(ctx, "ghost", "x")

			Convey("Then nothing is stored", func() {
				_, ok := d.Lookup(ctx, "ghost")
				So(ok, ShouldBeFalse)
				So(d.Size(), ShouldEqual, 0)
			})
		})

		Convey("When a key is unrecorded", func() {
			d.SeenAndRecord(ctx, "key-1")
			d.Unrecord(ctx, "key-1")
			d.Unrecord(ctx, "missing")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "key-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given a bounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper[int](dedupe.WithMaxSize(3))
		for i := 1; i <= 3; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i)), ShouldBeFalse)
		}

		Convey("When one more key is recorded", func() {
			So(d.SeenAndRecord(ctx, "key-4"), ShouldBeFalse)

			Convey("Then the oldest key is evicted", func() {
				So(d.Size(), ShouldEqual, 3)
				So(d.SeenAndRecord(ctx, "key-4"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "key-3"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "key-1"), ShouldBeFalse)
			})
		})
	})

	Convey("Given an unbounded deduper", t, func() {
		d := dedupe.NewInMemoryDeduper[int](dedupe.WithMaxSize(-1))

		Convey("When many keys are recorded", func() {
			const n = 1000
			for i := 0; i < n; i++ {
				d.SeenAndRecord(ctx, fmt.Sprintf("key-%d", i))
			}

			Convey("Then none are evicted", func() {
				So(d.Size(), ShouldEqual, int64(n))
				So(d.SeenAndRecord(ctx, "key-0"), ShouldBeTrue)
			})
		})
	})
}

func TestDedupeConcurrency(t *testing.T) {
	Convey("Given a deduper shared by goroutines", t, func() {
		d := dedupe.NewInMemoryDeduper[string](dedupe.WithMaxSize(1000))
		const workers = 10

		Convey("When every goroutine submits the same key", func() {
			var (
				wg    sync.WaitGroup
				mu    sync.Mutex
				fresh int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if !d.SeenAndRecord(context.Background(), "same") {
						mu.Lock()
						fresh++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			Convey("Then exactly one wins", func() {
				So(fresh, ShouldEqual, 1)
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}
