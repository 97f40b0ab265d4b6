package distance

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode"

	"github.com/redis/go-redis/v9"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"medtransit/internal/distance/metrics"
	"medtransit/internal/platform/config"
	platformredis "medtransit/internal/platform/redis"
	dErrors "medtransit/pkg/domain-errors"
	"medtransit/pkg/platform/circuit"
	"medtransit/pkg/requestcontext"
)

// CachedLookup completes addresses with the default locality, serves repeated
// lookups from Redis and stops calling the API while it keeps failing.
type CachedLookup struct {
	upstream Lookup
	cache    *platformredis.Client
	ttl      time.Duration
	locality string
	breaker  *circuit.Breaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type CachedOption func(*CachedLookup)

func WithLogger(logger *slog.Logger) CachedOption {
	return func(c *CachedLookup) {
		c.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) CachedOption {
	return func(c *CachedLookup) {
		c.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) CachedOption {
	return func(c *CachedLookup) {
		if b != nil {
			c.breaker = b
		}
	}
}

// NewCachedLookup wraps upstream. A nil cache disables caching.
func NewCachedLookup(upstream Lookup, cache *platformredis.Client, cfg config.Distance, opts ...CachedOption) *CachedLookup {
	c := &CachedLookup{
		upstream: upstream,
		cache:    cache,
		ttl:      cfg.CacheTTL,
		locality: cfg.DefaultLocality,
		breaker:  circuit.New("distance", circuit.WithFailureThreshold(3), circuit.WithSuccessThreshold(1)),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *CachedLookup) Lookup(ctx context.Context, origin, destination string) (*Route, error) {
	origin = CompleteAddress(origin, c.locality)
	destination = CompleteAddress(destination, c.locality)
	if origin == "" || destination == "" {
		return nil, dErrors.New(dErrors.CodeValidation, "origin and destination are required")
	}

	key := cacheKey(origin, destination)
	if route, ok := c.fromCache(ctx, key); ok {
		return route, nil
	}

	if !c.breaker.Allow() {
		c.metrics.IncrementLookup("rejected")
		return nil, dErrors.New(dErrors.CodeUpstreamUnavailable, "distance service temporarily unavailable")
	}

	route, err := c.upstream.Lookup(ctx, origin, destination)
	if err != nil {
		c.metrics.IncrementLookup("error")
		// an unresolvable address is still a healthy answer
		if dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			c.recordSuccess(ctx)
		} else {
			c.recordFailure(ctx, err)
		}
		return nil, err
	}
	c.metrics.IncrementLookup("ok")
	c.recordSuccess(ctx)
	c.toCache(ctx, key, route)
	return route, nil
}

func (c *CachedLookup) fromCache(ctx context.Context, key string) (*Route, bool) {
	if c.cache == nil {
		return nil, false
	}
	raw, err := c.cache.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.WarnContext(ctx, "distance cache read failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err.Error(),
			)
		}
		c.metrics.IncrementCacheMiss()
		return nil, false
	}
	var route Route
	if err := json.Unmarshal(raw, &route); err != nil {
		c.metrics.IncrementCacheMiss()
		return nil, false
	}
	c.metrics.IncrementCacheHit()
	return &route, true
}

func (c *CachedLookup) toCache(ctx context.Context, key string, route *Route) {
	if c.cache == nil {
		return
	}
	raw, err := json.Marshal(route)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "distance cache write failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

func (c *CachedLookup) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.SetBreakerOpen(false)
		c.logger.InfoContext(ctx, "distance circuit breaker closed")
	}
}

func (c *CachedLookup) recordFailure(ctx context.Context, err error) {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.metrics.SetBreakerOpen(true)
		c.logger.WarnContext(ctx, "distance circuit breaker opened",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
}

// CompleteAddress appends locality (e.g. "Córdoba, Argentina") to addr unless
// addr already names one of its parts. Comparison ignores case and accents.
func CompleteAddress(addr, locality string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" || strings.TrimSpace(locality) == "" {
		return addr
	}
	folded := fold(addr)
	for _, part := range strings.Split(locality, ",") {
		if p := fold(part); p != "" && strings.Contains(folded, p) {
			return addr
		}
	}
	return addr + ", " + strings.TrimSpace(locality)
}

// fold lowercases, strips accents and collapses whitespace.
func fold(s string) string {
	// transformers carry state, so each call builds its own chain
	stripMarks := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(out)), " ")
}

func cacheKey(origin, destination string) string {
	sum := sha256.Sum256([]byte(fold(origin) + "|" + fold(destination)))
	return platformredis.Key("distance", hex.EncodeToString(sum[:16]))
}
