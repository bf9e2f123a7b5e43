package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/smartystreets/goconvey/convey"

	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/mq/feed"
	"github.com/William-Laverty/CGS-CrossCountry/internal/adapters/repository"
	app "github.com/William-Laverty/CGS-CrossCountry/internal/app"
	"github.com/William-Laverty/CGS-CrossCountry/internal/config"
	"github.com/William-Laverty/CGS-CrossCountry/pkg/logger"
)

func TestConfigFromEnvironment(t *testing.T) {
	convey.Convey("Given XC_ environment variables", t, func() {
		t.Setenv("XC_ENV_FILE", "does-not-exist.env")
		t.Setenv("XC_ADDR", ":9090")
		t.Setenv("XC_LEADERBOARD_SIZE", "5")
		t.Setenv("XC_CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

		convey.Convey("Then configuration picks them up", func() {
			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.LeaderboardSize, convey.ShouldEqual, 5)
			convey.So(cfg.CORSAllowedOrigins, convey.ShouldResemble, []string{"https://a.example", "https://b.example"})
		})
	})
}

func TestOpenBackends(t *testing.T) {
	ctx := context.Background()

	convey.Convey("Given the default configuration", t, func() {
		cfg := config.New()

		convey.Convey("Then memory backends are opened", func() {
			b, err := openBackends(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			defer b.close()

			_, isMem := b.store.(*repository.MemoryStore)
			convey.So(isMem, convey.ShouldBeTrue)
			_, isMemFeed := b.feed.(*feed.MemoryFeed)
			convey.So(isMemFeed, convey.ShouldBeTrue)
			convey.So(b.publishOnWrite, convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given the redis feed driver", t, func() {
		mr := miniredis.RunT(t)
		cfg := config.New()
		cfg.FeedDriver = config.DriverRedis
		cfg.RedisAddr = mr.Addr()

		convey.Convey("Then a redis feed is opened", func() {
			b, err := openBackends(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldBeNil)
			defer b.close()
			defer b.feed.Close()

			_, isRedis := b.feed.(*feed.RedisFeed)
			convey.So(isRedis, convey.ShouldBeTrue)
		})
	})

	convey.Convey("Given an unreachable redis", t, func() {
		cfg := config.New()
		cfg.FeedDriver = config.DriverRedis
		cfg.RedisAddr = "127.0.0.1:1"

		convey.Convey("Then opening fails", func() {
			_, err := openBackends(ctx, cfg, logger.NewNop())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewHandler(t *testing.T) {
	convey.Convey("Given a handler over an in-memory service", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		cfg := config.New()
		svc := app.New(app.WithLogger(logger.NewNop()))
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		h := newHandler(ctx, cfg, svc, logger.NewNop())

		get := func(path string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
			return w
		}

		convey.Convey("Then pages, docs and API share one mux", func() {
			convey.So(get("/").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/leaderboard").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/api-docs").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)

			w := get("/api/leaderboard")
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			convey.So(w.Body.String(), convey.ShouldContainSubstring, "No active event")
		})

		convey.Convey("Then the system metrics refresh without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			w := get("/metrics")
			convey.So(strings.Contains(w.Body.String(), "xc_results_system_goroutines"), convey.ShouldBeTrue)
		})
	})
}

func TestMain(m *testing.M) {
	_ = logger.Init(logger.WithOutput(os.Stderr))
	os.Exit(m.Run())
}
