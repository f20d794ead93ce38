// Package nhl fetches play-by-play, landing and standings documents from the
// NHL web API and converts them into domain game feeds.
package nhl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/okian/rinkshot/internal/domain/model"
	"github.com/okian/rinkshot/internal/domain/standings"
	"github.com/okian/rinkshot/pkg/logger"
	"github.com/okian/rinkshot/pkg/metrics"
	"github.com/sony/gobreaker"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Default client configuration.
const (
	DefaultBaseURL           = "https://api-web.nhle.com/v1"
	defaultTimeout           = 10 * time.Second
	defaultRequestsPerSecond = 5
	breakerMinRequests       = 3
	breakerFailureRatio      = 0.6
	breakerOpenTimeout       = 30 * time.Second
	standingsFetchTimeout    = 30 * time.Second
	standingsDateLayout      = "2006-01-02"
)

// Endpoint labels used for metrics and logs.
const (
	endpointPlayByPlay = "play-by-play"
	endpointLanding    = "landing"
	endpointStandings  = "standings"
)

// Client talks to the NHL web API. It is safe for concurrent use; all
// workers share one rate limiter, one circuit breaker and one standings cache.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     logger.Logger

	sf        singleflight.Group
	mu        sync.RWMutex
	standings map[string][]model.StandingsEntry
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API root.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		if u != "" {
			c.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithRateLimit caps requests per second across the client.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond > 0 {
			burst := int(perSecond)
			if burst < 1 {
				burst = 1
			}
			c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
		}
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) ClientOption {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(defaultRequestsPerSecond), defaultRequestsPerSecond),
		logger:     logger.Nop(),
		standings:  make(map[string][]model.StandingsEntry),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "nhl-api",
		Timeout: breakerOpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= breakerMinRequests && failureRatio >= breakerFailureRatio
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.UpdateBreakerState(int(to))
			c.logger.Warn(context.Background(), "circuit breaker state changed",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		},
	})
	return c
}

// PlayByPlay fetches the play-by-play document. A nil result with a nil
// error means the upstream had no JSON document for the game.
func (c *Client) PlayByPlay(ctx context.Context, gameID int64) (*PlayByPlay, error) {
	var out PlayByPlay
	ok, err := c.getJSON(ctx, endpointPlayByPlay, playByPlayPath(gameID), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// Landing fetches the landing document, with the same no-data convention
// as PlayByPlay.
func (c *Client) Landing(ctx context.Context, gameID int64) (*Landing, error) {
	var out Landing
	ok, err := c.getJSON(ctx, endpointLanding, landingPath(gameID), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// Standings returns the league standings as of date. Snapshots are cached
// per date and concurrent requests for one date share a single call.
func (c *Client) Standings(ctx context.Context, date time.Time) ([]model.StandingsEntry, error) {
	key := date.Format(standingsDateLayout)

	c.mu.RLock()
	cached, ok := c.standings[key]
	c.mu.RUnlock()
	if ok {
		metrics.RecordStandingsCacheHit()
		return cached, nil
	}

	// The shared fetch outlives any single caller; each caller still honors
	// its own ctx while waiting.
	ch := c.sf.DoChan(key, func() (any, error) {
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), standingsFetchTimeout)
		defer cancel()

		var resp StandingsResponse
		ok, err := c.getJSON(fctx, endpointStandings, standingsPath(key), &resp)
		if err != nil || !ok {
			return []model.StandingsEntry(nil), err
		}
		entries := convertStandings(&resp)
		if len(entries) > 0 {
			c.mu.Lock()
			c.standings[key] = entries
			c.mu.Unlock()
		}
		return entries, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]model.StandingsEntry), nil
	}
}

// Game assembles everything needed to aggregate one game. Play-by-play and
// landing are fetched concurrently; standings follow once the game date is
// known. The returned feed is never nil and may be partial.
func (c *Client) Game(ctx context.Context, gameID int64, season int) (*model.GameFeed, error) {
	var (
		pbp     *PlayByPlay
		landing *Landing
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		pbp, err = c.PlayByPlay(gctx, gameID)
		return err
	})
	g.Go(func() error {
		var err error
		landing, err = c.Landing(gctx, gameID)
		return err
	})
	if err := g.Wait(); err != nil {
		return &model.GameFeed{}, err
	}

	feed, err := assemble(gameID, season, pbp, landing)
	if err != nil {
		return feed, err
	}
	if feed.Context == nil || feed.Events == nil || feed.Landing == nil {
		return feed, nil
	}

	entries, err := c.Standings(ctx, standings.SnapshotDate(feed.Context.GameDate))
	if err != nil {
		return feed, err
	}
	feed.Standings = entries
	return feed, nil
}

// getJSON reports false when the response was not a JSON document.
func (c *Client) getJSON(ctx context.Context, endpoint, path string, out any) (bool, error) {
	body, err := c.fetch(ctx, endpoint, path)
	if err != nil || body == nil {
		return false, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		metrics.RecordFetchError(endpoint)
		return false, fmt.Errorf("%w: %s: %w", ErrDecode, path, err)
	}
	return true, nil
}

// fetch returns a nil body when the upstream had no JSON document.
func (c *Client) fetch(ctx context.Context, endpoint, path string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	v, err := c.breaker.Execute(func() (any, error) {
		return c.doRequest(ctx, path)
	})
	metrics.RecordFetchLatency(endpoint, float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.RecordFetchError(endpoint)
		return nil, fmt.Errorf("%s %s: %w", endpoint, path, err)
	}

	body, _ := v.([]byte)
	if body == nil {
		c.logger.Debug(ctx, "non-JSON response, treating as no data", logger.String("path", path))
	}
	return body, nil
}

// RawPlayByPlay returns the undecoded play-by-play document, nil if absent.
func (c *Client) RawPlayByPlay(ctx context.Context, gameID int64) ([]byte, error) {
	return c.fetch(ctx, endpointPlayByPlay, playByPlayPath(gameID))
}

// RawLanding returns the undecoded landing document, nil if absent.
func (c *Client) RawLanding(ctx context.Context, gameID int64) ([]byte, error) {
	return c.fetch(ctx, endpointLanding, landingPath(gameID))
}

// RawStandings returns the undecoded standings document for date, nil if absent.
func (c *Client) RawStandings(ctx context.Context, date time.Time) ([]byte, error) {
	return c.fetch(ctx, endpointStandings, standingsPath(date.Format(standingsDateLayout)))
}

func playByPlayPath(gameID int64) string { return fmt.Sprintf("/gamecenter/%d/play-by-play", gameID) }
func landingPath(gameID int64) string    { return fmt.Sprintf("/gamecenter/%d/landing", gameID) }
func standingsPath(date string) string   { return "/standings/" + date }

// doRequest returns a nil body for non-JSON and not-found responses.
func (c *Client) doRequest(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
			Body:       body,
		}
	}
	if !strings.Contains(resp.Header.Get("Content-Type"), "json") {
		return nil, nil
	}
	return body, nil
}
