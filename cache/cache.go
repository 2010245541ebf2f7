// Package cache keeps rendered GET responses per route path and lets writers
// mark a route, or a route and everything below it, as stale.
package cache

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	lru "github.com/hashicorp/golang-lru/v2"
)

var ErrInvalidPath = errors.New("route path must start with /")

// Scope is how much of the route tree an invalidation drops.
type Scope int

const (
	// PageOnly drops the cached response of exactly one path.
	PageOnly Scope = iota
	// PageAndDescendants drops the path and every path nested under it.
	PageAndDescendants
)

func (s Scope) String() string {
	switch s {
	case PageOnly:
		return "page-only"
	case PageAndDescendants:
		return "page-and-descendants"
	default:
		return fmt.Sprintf("Scope(%d)", int(s))
	}
}

// ParseScope also accepts "page" and "layout" as aliases.
func ParseScope(s string) (Scope, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "page-only", "page":
		return PageOnly, nil
	case "page-and-descendants", "layout":
		return PageAndDescendants, nil
	}
	return PageOnly, fmt.Errorf("unknown invalidation scope %q", s)
}

type entry struct {
	body        []byte
	contentType string
	expires     time.Time
}

type RouteCache struct {
	mu      sync.Mutex
	entries *lru.Cache[string, entry]
	ttl     time.Duration
	now     func() time.Time
	// bumped by every Invalidate; a response rendered across a bump is not stored
	gen uint64
}

// New creates a cache holding at most size routes. A ttl of zero keeps
// entries until they are invalidated or evicted.
func New(size int, ttl time.Duration) (*RouteCache, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &RouteCache{entries: entries, ttl: ttl, now: time.Now}, nil
}

func (c *RouteCache) Get(path string) (body []byte, contentType string, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries.Get(normalize(path))
	if !ok {
		return nil, "", false
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.entries.Remove(normalize(path))
		return nil, "", false
	}
	return e.body, e.contentType, true
}

func (c *RouteCache) Set(path, contentType string, body []byte) {
	c.mu.Lock()
	c.entries.Add(normalize(path), c.entry(contentType, body))
	c.mu.Unlock()
}

// setIfCurrent stores body only if no invalidation ran since gen was read.
func (c *RouteCache) setIfCurrent(path, contentType string, body []byte, gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen {
		return false
	}
	c.entries.Add(normalize(path), c.entry(contentType, body))
	return true
}

func (c *RouteCache) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

func (c *RouteCache) entry(contentType string, body []byte) entry {
	e := entry{body: body, contentType: contentType}
	if c.ttl > 0 {
		e.expires = c.now().Add(c.ttl)
	}
	return e
}

// Invalidate drops cached responses for path according to scope and reports
// how many entries were removed.
func (c *RouteCache) Invalidate(path string, scope Scope) (int, error) {
	if !strings.HasPrefix(path, "/") {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPath, path)
	}
	path = normalize(path)

	if scope != PageOnly && scope != PageAndDescendants {
		return 0, fmt.Errorf("unknown invalidation scope %d", int(scope))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if scope == PageOnly {
		if c.entries.Remove(path) {
			return 1, nil
		}
		return 0, nil
	}
	prefix := path + "/"
	if path == "/" {
		prefix = "/"
	}

	removed := 0
	for _, key := range c.entries.Keys() {
		if key == path || strings.HasPrefix(key, prefix) {
			c.entries.Remove(key)
			removed++
		}
	}
	return removed, nil
}

func (c *RouteCache) Len() int {
	return c.entries.Len()
}

// Middleware serves cached GET responses and stores successful ones.
func (c *RouteCache) Middleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if ctx.Method() != fiber.MethodGet {
			return ctx.Next()
		}

		path := utils.CopyString(ctx.Path())
		if body, contentType, ok := c.Get(path); ok {
			ctx.Set("X-Cache", "HIT")
			ctx.Set(fiber.HeaderContentType, contentType)
			return ctx.Send(body)
		}

		gen := c.generation()
		if err := ctx.Next(); err != nil {
			return err
		}

		ctx.Set("X-Cache", "MISS")
		if ctx.Response().StatusCode() == fiber.StatusOK {
			body := append([]byte(nil), ctx.Response().Body()...)
			c.setIfCurrent(path, string(ctx.Response().Header.ContentType()), body, gen)
		}
		return nil
	}
}

func normalize(path string) string {
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
		if path == "" {
			return "/"
		}
	}
	return path
}
