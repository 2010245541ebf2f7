package cache

import (
	"io"
	"net/http/httptest"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T) *RouteCache {
	t.Helper()
	c, err := New(16, 0)
	require.NoError(t, err)
	return c
}

func fill(c *RouteCache, paths ...string) {
	for _, p := range paths {
		c.Set(p, fiber.MIMEApplicationJSON, []byte(p))
	}
}

func TestInvalidatePageOnly(t *testing.T) {
	c := newCache(t)
	fill(c, "/meals", "/meals/soup", "/about")

	n, err := c.Invalidate("/meals", PageOnly)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, _, ok := c.Get("/meals")
	assert.False(t, ok)
	_, _, ok = c.Get("/meals/soup")
	assert.True(t, ok)
	_, _, ok = c.Get("/about")
	assert.True(t, ok)
}

func TestInvalidatePageAndDescendants(t *testing.T) {
	c := newCache(t)
	fill(c, "/meals", "/meals/soup", "/meals/soup/print", "/mealsy", "/about")

	n, err := c.Invalidate("/meals/", PageAndDescendants)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	for _, p := range []string{"/meals", "/meals/soup", "/meals/soup/print"} {
		_, _, ok := c.Get(p)
		assert.False(t, ok, p)
	}
	for _, p := range []string{"/mealsy", "/about"} {
		_, _, ok := c.Get(p)
		assert.True(t, ok, p)
	}
}

func TestInvalidateRootAndDescendants(t *testing.T) {
	c := newCache(t)
	fill(c, "/", "/meals", "/meals/soup")

	n, err := c.Invalidate("/", PageAndDescendants)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Zero(t, c.Len())
}

func TestInvalidateRejectsBadInput(t *testing.T) {
	c := newCache(t)

	_, err := c.Invalidate("meals", PageOnly)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = c.Invalidate("", PageOnly)
	assert.ErrorIs(t, err, ErrInvalidPath)

	_, err = c.Invalidate("/meals", Scope(7))
	assert.Error(t, err)
}

func TestEntriesExpire(t *testing.T) {
	c, err := New(4, time.Minute)
	require.NoError(t, err)

	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	fill(c, "/meals")
	_, _, ok := c.Get("/meals")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, _, ok = c.Get("/meals")
	assert.False(t, ok)
}

func TestParseScope(t *testing.T) {
	tests := []struct {
		in      string
		want    Scope
		wantErr bool
	}{
		{"page-only", PageOnly, false},
		{"page", PageOnly, false},
		{"", PageOnly, false},
		{"Page-And-Descendants", PageAndDescendants, false},
		{"layout", PageAndDescendants, false},
		{"site", PageOnly, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseScope(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
	assert.Equal(t, "page-and-descendants", PageAndDescendants.String())
}

func TestMiddleware(t *testing.T) {
	c := newCache(t)
	calls := 0

	app := fiber.New()
	app.Get("/meals", c.Middleware(), func(ctx *fiber.Ctx) error {
		calls++
		return ctx.JSON(fiber.Map{"calls": calls})
	})
	app.Get("/missing", c.Middleware(), func(ctx *fiber.Ctx) error {
		return ctx.SendStatus(fiber.StatusNotFound)
	})

	get := func(path string) (string, string) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, path, nil))
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.Header.Get("X-Cache"), string(body)
	}

	state, body := get("/meals")
	assert.Equal(t, "MISS", state)
	assert.JSONEq(t, `{"calls":1}`, body)

	state, body = get("/meals")
	assert.Equal(t, "HIT", state)
	assert.JSONEq(t, `{"calls":1}`, body)

	_, err := c.Invalidate("/meals", PageOnly)
	require.NoError(t, err)

	state, body = get("/meals")
	assert.Equal(t, "MISS", state)
	assert.JSONEq(t, `{"calls":2}`, body)

	get("/missing")
	_, _, ok := c.Get("/missing")
	assert.False(t, ok)
}

func TestMiddlewareDropsResponseRenderedAcrossInvalidate(t *testing.T) {
	c := newCache(t)

	var (
		version atomic.Int64
		once    sync.Once
	)
	entered := make(chan struct{})
	release := make(chan struct{})

	app := fiber.New()
	app.Get("/meals", c.Middleware(), func(ctx *fiber.Ctx) error {
		v := version.Load()
		once.Do(func() {
			close(entered)
			<-release
		})
		return ctx.SendString(strconv.FormatInt(v, 10))
	})

	get := func() (string, string) {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/meals", nil), -1)
		require.NoError(t, err)
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.Header.Get("X-Cache"), string(body)
	}

	slow := make(chan string, 1)
	go func() {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/meals", nil), -1)
		if !assert.NoError(t, err) {
			slow <- ""
			return
		}
		body, _ := io.ReadAll(resp.Body)
		slow <- string(body)
	}()

	// a write lands while the read is still rendering the old listing
	<-entered
	version.Store(1)
	_, err := c.Invalidate("/meals", PageOnly)
	require.NoError(t, err)
	close(release)
	assert.Equal(t, "0", <-slow)

	_, _, ok := c.Get("/meals")
	assert.False(t, ok)

	state, body := get()
	assert.Equal(t, "MISS", state)
	assert.Equal(t, "1", body)

	state, body = get()
	assert.Equal(t, "HIT", state)
	assert.Equal(t, "1", body)
}
