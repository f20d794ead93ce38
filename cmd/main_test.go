package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/rinkshot/internal/adapters/nhl"
	"github.com/okian/rinkshot/internal/config"
	"github.com/okian/rinkshot/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	cfg.StorePath = filepath.Join(t.TempDir(), "shots.db")
	cfg.WorkerCount = 2
	cfg.QueueSize = 16
	return cfg
}

func TestNewSource(t *testing.T) {
	convey.Convey("Given a configuration", t, func() {
		cfg := testConfig(t)

		convey.Convey("When fixtures_dir is set", func() {
			cfg.FixturesDir = t.TempDir()

			convey.Convey("Then saved documents are replayed", func() {
				_, ok := newSource(cfg, logger.Get()).(*nhl.FileSource)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})

		convey.Convey("When fixtures_dir is empty", func() {
			convey.Convey("Then the NHL client is used", func() {
				_, ok := newSource(cfg, logger.Get()).(*nhl.Client)
				convey.So(ok, convey.ShouldBeTrue)
			})
		})
	})
}

func TestBuildService(t *testing.T) {
	convey.Convey("Given a valid configuration", t, func() {
		cfg := testConfig(t)
		cfg.FixturesDir = t.TempDir()

		convey.Convey("When building and starting the service", func() {
			svc, err := buildService(cfg, logger.Get())
			convey.So(err, convey.ShouldBeNil)
			convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
			defer svc.Stop()

			convey.Convey("Then it runs with the configured workers", func() {
				stats := svc.GetStats()
				convey.So(stats["started"], convey.ShouldEqual, true)
				convey.So(stats["workerCount"], convey.ShouldEqual, 2)
				convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
			})

			convey.Convey("Then the HTTP routes are served", func() {
				srv := newHTTPServer(context.Background(), ":0", svc)
				w := httptest.NewRecorder()
				srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/games", nil))
				convey.So(srv.ReadHeaderTimeout, convey.ShouldEqual, readHeaderTimeout)
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

				docs := httptest.NewRecorder()
				srv.Handler.ServeHTTP(docs, httptest.NewRequest(http.MethodGet, "/openapi.yaml", nil))
				convey.So(docs.Code, convey.ShouldEqual, http.StatusOK)
			})

			convey.Convey("Then collect_on_start without seasons is a no-op", func() {
				cfg.CollectOnStart = true
				convey.So(func() { startCollection(context.Background(), cfg, svc, logger.Get()) }, convey.ShouldNotPanic)
				convey.So(svc.LastRun(), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given an unknown zone fallback", t, func() {
		cfg := testConfig(t)
		cfg.ZoneFallback = "sideways"

		convey.Convey("Then building the service fails", func() {
			_, err := buildService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestStartServiceMetricsUpdater(t *testing.T) {
	convey.Convey("Given a service and a short-lived context", t, func() {
		svc, err := buildService(testConfig(t), logger.Get())
		convey.So(err, convey.ShouldBeNil)
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		convey.Convey("Then the updater returns when the context ends", func() {
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}
