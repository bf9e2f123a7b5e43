package simulate

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/http/api"
	service "github.com/William-Laverty/CGS-CrossCountry/internal/app"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/leaderboard"
	"github.com/William-Laverty/CGS-CrossCountry/internal/domain/model"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

func newServer(ctx context.Context) (*httptest.Server, *service.Service) {
	svc := service.New(service.WithLogger(logger.NewNop()))
	So(svc.Start(ctx), ShouldBeNil)
	mux := http.NewServeMux()
	api.NewServer(svc, svc, api.WithLogger(logger.NewNop())).Register(ctx, mux)
	return httptest.NewServer(mux), svc
}

func TestGenerateFinishes(t *testing.T) {
	Convey("Given a seed", t, func() {
		a := generateFinishes(50, "3km", 7)
		b := generateFinishes(50, "3km", 7)

		Convey("Then the field is reproducible and valid", func() {
			So(a, ShouldResemble, b)
			for _, f := range a {
				_, err := model.NewFinishTime(f.Minutes, f.Seconds, f.Hundredths)
				So(err, ShouldBeNil)
				So(model.House(f.House).Valid(), ShouldBeTrue)
				d := f.Time().Duration()
				So(d.Seconds(), ShouldBeBetweenOrEqual, 3*210.0, 3*390.0)
			}
		})

		Convey("Then a different seed changes the field", func() {
			So(generateFinishes(50, "3km", 8), ShouldNotResemble, a)
		})
	})
}

func TestVerifyBoard(t *testing.T) {
	Convey("Given accepted finishes and their board", t, func() {
		ev := model.Event{ID: "ev", Name: "Boys 14 Years 3km", Active: true}
		finishes := generateFinishes(12, "3km", 3)
		results := make([]model.Result, 0, len(finishes))
		for i, f := range finishes {
			results = append(results, model.Result{
				ID: string(rune('a' + i)), EventID: ev.ID, RunnerName: f.RunnerName,
				House: model.House(f.House), Time: f.Time().String(),
			})
		}
		board := leaderboard.BuildBoard(leaderboard.ViewLeaderboard, &ev, results, 10, time.Now())

		Convey("Then the board verifies", func() {
			So(verifyBoard(ev.ID, finishes, board, 10), ShouldBeNil)
		})

		Convey("Then a missing finish is detected", func() {
			err := verifyBoard(ev.ID, finishes[1:], board, 10)
			So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		})

		Convey("Then another event is detected", func() {
			err := verifyBoard("other", finishes, board, 10)
			So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a running results service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		srv, svc := newServer(ctx)
		defer srv.Close()
		defer svc.Stop()

		cfg := &Config{
			BaseURL:  srv.URL,
			Division: "Girls",
			Distance: "2km",
			AgeGroup: "Open",
			Runners:  30,
			Workers:  4,
			Timeout:  5 * time.Second,
			Top:      10,
			Seed:     42,
			EndEvent: true,
		}

		Convey("When a race is simulated", func() {
			stats, err := Run(ctx, cfg, logger.NewNop())

			Convey("Then every finish is recorded and verified", func() {
				So(err, ShouldBeNil)
				So(stats.EventName, ShouldEqual, "Girls Open 2km")
				So(stats.Successful, ShouldEqual, 30)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.BoardRows, ShouldEqual, 10)
				So(stats.BoardTotal, ShouldEqual, 30)
			})

			Convey("Then the event was ended", func() {
				_, ok, err := svc.ActiveEvent(ctx)
				So(err, ShouldBeNil)
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the event options are invalid", func() {
			cfg.Distance = "42km"
			_, err := Run(ctx, cfg, logger.NewNop())

			Convey("Then the service error is reported", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "validation_failed")
			})
		})
	})

	Convey("Given no service", t, func() {
		cfg := &Config{BaseURL: "http://127.0.0.1:1", Timeout: 200 * time.Millisecond, Runners: 1, Workers: 1, Top: 1}
		_, err := Run(context.Background(), cfg, logger.NewNop())
		So(err, ShouldNotBeNil)
	})
}
