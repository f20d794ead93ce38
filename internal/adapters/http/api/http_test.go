package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/rinkshot/internal/adapters/http/api"
	"github.com/okian/rinkshot/internal/adapters/repository"
	service "github.com/okian/rinkshot/internal/app"
	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockDependencies struct {
	shots      []model.ShotEvent
	games      []model.GameSummary
	shotsErr   error
	gamesErr   error
	collectErr error

	lastQuery   repository.Query
	lastSeason  int
	lastSeasons map[int]int
}

func (m *mockDependencies) CollectAsync(_ context.Context, seasons map[int]int) (types.RunAccepted, error) {
	m.lastSeasons = seasons
	if m.collectErr != nil {
		return types.RunAccepted{}, m.collectErr
	}
	total := 0
	for _, n := range seasons {
		total += n
	}
	return types.RunAccepted{RunID: "run-1", Games: total}, nil
}

func (m *mockDependencies) Shots(_ context.Context, q repository.Query) ([]model.ShotEvent, error) {
	m.lastQuery = q
	if m.shotsErr != nil {
		return nil, m.shotsErr
	}
	return m.shots, nil
}

func (m *mockDependencies) Games(_ context.Context, season int) ([]model.GameSummary, error) {
	m.lastSeason = season
	if m.gamesErr != nil {
		return nil, m.gamesErr
	}
	return m.games, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func sampleShot() model.ShotEvent {
	return model.ShotEvent{
		GameID:      2021020123,
		EventID:     52,
		Arena:       "TD Garden",
		Date:        "November 03, 2021",
		Matchup:     "Boston Bruins (5-3-1-11) v. New York Rangers (6-2-2-14)",
		Period:      3,
		TimeLeft:    "0:04",
		PlayType:    model.PlayGoal,
		ShotType:    "Wrist",
		Description: "GOAL by Patrice Bergeron. Goals To Date: 7",
		Distance:    12.5,
		Score:       "2 - 1",
		ReportURL:   "https://www.nhl.com/scores/htmlreports/20212022/PL020123.HTM",
		Season:      2021,
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{}
		statsProvider := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		server := api.NewServer(deps, statsProvider)
		mux := http.NewServeMux()
		server.Register(context.Background(), mux)

		Convey("When calling each read endpoint", func() {
			for _, path := range []string{"/healthz", "/stats", "/shots", "/games", "/metrics"} {
				req := httptest.NewRequest(http.MethodGet, path, nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)

				Convey("Then "+path+" answers 200", func() {
					So(w.Code, ShouldEqual, http.StatusOK)
				})
			}
		})

		Convey("When scraping metrics after a request", func() {
			mux.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			Convey("Then the HTTP counters are exposed", func() {
				So(w.Body.String(), ShouldContainSubstring, "rinkshot_collector_http_requests_total")
			})
		})

		Convey("When posting a collection run", func() {
			req := httptest.NewRequest(http.MethodPost, "/collect", strings.NewReader(`{"seasons":{"2021":3}}`))
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			Convey("Then it is accepted", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When requesting health", func() {
			w := httptest.NewRecorder()
			handler.HandleHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			Convey("Then it reports ok as JSON", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				var body map[string]string
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body["status"], ShouldEqual, "ok")
			})
		})

		Convey("When using the wrong method", func() {
			w := httptest.NewRecorder()
			handler.HandleHealth(w, httptest.NewRequest(http.MethodPost, "/healthz", nil))

			Convey("Then it returns 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		provider := &mockStatsProvider{stats: map[string]interface{}{"started": true, "workerCount": 4}}
		handler := api.NewStatsHandler(provider)

		Convey("When requesting stats", func() {
			w := httptest.NewRecorder()
			handler.HandleStats(w, httptest.NewRequest(http.MethodGet, "/stats", nil))

			Convey("Then it returns the provider's stats", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body["started"], ShouldEqual, true)
				So(body["workerCount"], ShouldEqual, 4)
			})
		})
	})
}

func TestShotsHandler_HandleGetShots(t *testing.T) {
	Convey("Given a shots handler", t, func() {
		deps := &mockDependencies{shots: []model.ShotEvent{sampleShot()}}
		handler := api.NewShotsHandler(deps, 100)

		Convey("When filtering by every parameter", func() {
			w := httptest.NewRecorder()
			handler.HandleGetShots(w, httptest.NewRequest(http.MethodGet, "/shots?season=2021&game=2021020123&type=goal&limit=10&offset=5", nil))

			Convey("Then the query reaches the service", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldResemble, repository.Query{
					Season:   2021,
					GameID:   2021020123,
					PlayType: model.PlayGoal,
					Limit:    10,
					Offset:   5,
				})
			})

			Convey("Then shots come back with formatted fields", func() {
				var body []map[string]interface{}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body, ShouldHaveLength, 1)
				So(body[0]["play_type"], ShouldEqual, "GOAL")
				So(body[0]["distance"], ShouldEqual, "12.50 feet")
				So(body[0]["distance_feet"], ShouldEqual, 12.5)
				So(body[0]["event_id"], ShouldEqual, 52)
			})
		})

		Convey("When the parameters are invalid", func() {
			for _, target := range []string{
				"/shots?season=abc",
				"/shots?game=-1",
				"/shots?type=hit",
				"/shots?limit=101",
			} {
				w := httptest.NewRecorder()
				handler.HandleGetShots(w, httptest.NewRequest(http.MethodGet, target, nil))

				Convey("Then "+target+" returns 400", func() {
					So(w.Code, ShouldEqual, http.StatusBadRequest)
				})
			}
		})

		Convey("When the service is not running", func() {
			deps.shotsErr = fmt.Errorf("read: %w", service.ErrNotStarted)
			w := httptest.NewRecorder()
			handler.HandleGetShots(w, httptest.NewRequest(http.MethodGet, "/shots", nil))

			Convey("Then it returns 503", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			})
		})

		Convey("When the store fails", func() {
			deps.shotsErr = errors.New("disk I/O error")
			w := httptest.NewRecorder()
			handler.HandleGetShots(w, httptest.NewRequest(http.MethodGet, "/shots", nil))

			Convey("Then it returns 500 with the op tag", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
				So(w.Body.String(), ShouldContainSubstring, "api.get_shots")
			})
		})
	})
}

func TestGamesHandler_HandleGetGames(t *testing.T) {
	Convey("Given a games handler", t, func() {
		deps := &mockDependencies{games: []model.GameSummary{{GameID: 2021020123, Season: 2021, HomeTeam: "Boston Bruins"}}}
		handler := api.NewGamesHandler(deps)

		Convey("When listing a season", func() {
			w := httptest.NewRecorder()
			handler.HandleGetGames(w, httptest.NewRequest(http.MethodGet, "/games?season=2021", nil))

			Convey("Then the games come back", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastSeason, ShouldEqual, 2021)
				var body []model.GameSummary
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body, ShouldHaveLength, 1)
				So(body[0].HomeTeam, ShouldEqual, "Boston Bruins")
			})
		})

		Convey("When the season is not a number", func() {
			w := httptest.NewRecorder()
			handler.HandleGetGames(w, httptest.NewRequest(http.MethodGet, "/games?season=last", nil))

			Convey("Then it returns 400", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestCollectHandler_HandlePostCollect(t *testing.T) {
	Convey("Given a collect handler", t, func() {
		deps := &mockDependencies{}
		handler := api.NewCollectHandler(deps)
		post := func(body string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			handler.HandlePostCollect(w, httptest.NewRequest(http.MethodPost, "/collect", strings.NewReader(body)))
			return w
		}

		Convey("When posting two seasons", func() {
			w := post(`{"seasons":{"2021":1312,"2022":20}}`)

			Convey("Then the run is accepted with its id", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				So(deps.lastSeasons, ShouldResemble, map[int]int{2021: 1312, 2022: 20})
				var body types.RunAccepted
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body.RunID, ShouldEqual, "run-1")
				So(body.Games, ShouldEqual, 1332)
			})
		})

		Convey("When the body is malformed", func() {
			So(post(`{"seasons":`).Code, ShouldEqual, http.StatusBadRequest)
			So(post(`{}`).Code, ShouldEqual, http.StatusBadRequest)
			So(post(`{"seasons":{"twenty":1}}`).Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the service rejects the season", func() {
			deps.collectErr = fmt.Errorf("%w: season 21", service.ErrInvalidSeason)

			Convey("Then it returns 400", func() {
				So(post(`{"seasons":{"21":1}}`).Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When using GET", func() {
			w := httptest.NewRecorder()
			handler.HandlePostCollect(w, httptest.NewRequest(http.MethodGet, "/collect", nil))

			Convey("Then it returns 404", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestError(t *testing.T) {
	Convey("Given op-tagged errors", t, func() {
		cause := errors.New("boom")
		err := api.WrapKind("api.op", api.ErrBadRequest, cause)

		Convey("Then both kind and cause match", func() {
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: boom")
			So(api.NewKind("api.op", api.ErrUnavailable).Error(), ShouldEqual, "api.op: service unavailable")
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
