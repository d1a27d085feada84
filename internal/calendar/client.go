package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/classbook-backend/internal/config"
	"github.com/stemsi/classbook-backend/internal/metrics"
	"github.com/stemsi/classbook-backend/internal/model"
)

// maxFeedBytes bounds the size of a downloaded feed.
const maxFeedBytes = 8 << 20

// Client downloads and parses the feed. When a Redis client is set the raw
// feed body is cached for cacheTTL.
type Client struct {
	http     *http.Client
	rdb      *redis.Client
	cacheTTL time.Duration
	maxBytes int64
	loc      *time.Location
	log      zerolog.Logger
}

// NewClient creates a feed client. rdb may be nil to disable caching.
func NewClient(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) *Client {
	return &Client{
		http:     &http.Client{Timeout: cfg.ICalTimeout},
		rdb:      rdb,
		cacheTTL: cfg.ICalCacheTTL,
		maxBytes: maxFeedBytes,
		loc:      cfg.Location,
		log:      log.With().Str("component", "calendar").Logger(),
	}
}

// Fetch returns the events of the feed at url. An empty url yields no events.
func (c *Client) Fetch(ctx context.Context, url string) ([]model.FeedEvent, error) {
	if url == "" {
		return []model.FeedEvent{}, nil
	}

	body, err := c.body(ctx, url)
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("Feed fetch failed")
		return nil, err
	}
	events, err := Parse(bytes.NewReader(body), c.loc)
	if err != nil {
		c.log.Warn().Err(err).Str("url", url).Msg("Feed parse failed")
		return nil, err
	}
	return events, nil
}

func (c *Client) body(ctx context.Context, url string) ([]byte, error) {
	key := config.CacheKey.ICalFeedKey(url)
	if c.rdb != nil && c.cacheTTL > 0 {
		b, err := c.rdb.Get(ctx, key).Bytes()
		switch {
		case err == nil:
			metrics.FeedFetches.WithLabelValues("cache", metrics.ResultOK).Inc()
			return b, nil
		case !errors.Is(err, redis.Nil):
			c.log.Debug().Err(err).Msg("Feed cache read failed")
		}
	}

	b, err := c.download(ctx, url)
	if err != nil {
		metrics.FeedFetches.WithLabelValues("network", metrics.ResultError).Inc()
		return nil, err
	}
	metrics.FeedFetches.WithLabelValues("network", metrics.ResultOK).Inc()

	if c.rdb != nil && c.cacheTTL > 0 {
		if err := c.rdb.Set(ctx, key, b, c.cacheTTL).Err(); err != nil {
			c.log.Debug().Err(err).Msg("Feed cache write failed")
		}
	}
	return b, nil
}

func (c *Client) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrFeed, err)
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFeed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFeed, resp.StatusCode)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrFeed, err)
	}
	if int64(len(b)) > c.maxBytes {
		return nil, fmt.Errorf("%w: feed larger than %d bytes", ErrFeed, c.maxBytes)
	}
	return b, nil
}
