package gateway

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avarouter/internal/chain"
	"github.com/vyrodovalexey/avarouter/internal/middleware"
	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/router"
)

func TestDispatcher_SampleTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantBody string
	}{
		{name: "exact", method: http.MethodGet, target: "/sloths", wantCode: http.StatusOK, wantBody: "Hello sloths!"},
		{name: "optional tail bare", method: http.MethodGet, target: "/kangaroos", wantCode: http.StatusOK, wantBody: "Hello kangaroos!"},
		{name: "optional tail deep", method: http.MethodGet, target: "/kangaroos/are/cool", wantCode: http.StatusOK, wantBody: "Hello kangaroos!"},
		{name: "earlier tail shadows later exact", method: http.MethodGet, target: "/tea/hibiscus", wantCode: http.StatusOK, wantBody: "Tea is delicious!"},
		{name: "regex", method: http.MethodGet, target: "/coffeecoffeecoffee", wantCode: http.StatusOK, wantBody: "Coffee is great!"},
		{name: "regex miss reaches catch-all", method: http.MethodGet, target: "/coffeetea", wantCode: http.StatusNotFound, wantBody: "Nothing to see here."},
		{name: "parameter template", method: http.MethodGet, target: "/green/tea", wantCode: http.StatusOK, wantBody: "I could go for some green tea!"},
		{name: "mount with attribute", method: http.MethodGet, target: "/api/mint", wantCode: http.StatusOK, wantBody: "v1:mint"},
		{name: "mount miss continues", method: http.MethodGet, target: "/api/mint/extra", wantCode: http.StatusNotFound, wantBody: "Nothing to see here."},
		{name: "method restricted", method: http.MethodPost, target: "/sloths", wantCode: http.StatusNotFound, wantBody: "Nothing to see here."},
		{name: "static hit", method: http.MethodGet, target: "/img/sloth.txt", wantCode: http.StatusOK, wantBody: "a sloth picture"},
		{name: "static miss falls through", method: http.MethodGet, target: "/img/missing.png", wantCode: http.StatusNotFound, wantBody: BodyNotFound},
		{name: "static head", method: http.MethodHead, target: "/img/sloth.txt", wantCode: http.StatusOK, wantBody: ""},
	}

	gw := newSampleGateway(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := do(t, gw.handler, tt.method, tt.target, nil, nil)
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantBody, rec.Body.String())
		})
	}
}

func TestDispatcher_HitCounter(t *testing.T) {
	t.Parallel()

	gw := newSampleGateway(t)

	rec := do(t, gw.handler, http.MethodGet, "/hits", nil, nil)
	assert.Equal(t, "This app's hit count: 1000001", rec.Body.String())

	rec = do(t, gw.handler, http.MethodGet, "/hits", nil, nil)
	assert.Equal(t, "This app's hit count: 1000002", rec.Body.String())

	rec = do(t, gw.handler, http.MethodGet, "/hit-number", nil, nil)
	assert.Equal(t, "You are visitor 1000003", rec.Body.String())

	assert.Contains(t, scrape(t, gw.metrics), "avarouter_hit_count 1.000003e+06")
}

func TestDispatcher_SendOrderEscapesForm(t *testing.T) {
	t.Parallel()

	gw := newSampleGateway(t)
	header := http.Header{"Content-Type": []string{middleware.ContentTypeFormURLEncoded}}

	rec := do(t, gw.handler, http.MethodPost, "/send-order",
		strings.NewReader("name=%3Cb%3EAnn%3C%2Fb%3E&item=tea"), header)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, middleware.ContentTypeHTML, rec.Header().Get("Content-Type"))
	assert.Equal(t, "<p>&lt;b&gt;Ann&lt;/b&gt; ordered tea</p>", rec.Body.String())
}

func TestDispatcher_MalformedBodyIsHandlerFailure(t *testing.T) {
	t.Parallel()

	gw := newSampleGateway(t)
	header := http.Header{"Content-Type": []string{middleware.ContentTypeJSON}}

	rec := do(t, gw.handler, http.MethodPost, "/send-order", strings.NewReader("{"), header)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, BodyInternalError, rec.Body.String())
	assert.Contains(t, scrape(t, gw.metrics),
		`avarouter_dispatch_total{method="POST",outcome="handler_failure",route="send-order"} 1`)
}

func TestDispatcher_NoRouteMatch(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Get("/sloths", middleware.Text(http.StatusOK, "Hello sloths!")))

	metrics := observability.NewMetrics("")
	d := newDispatcher(t, r, WithDispatcherMetrics(metrics))

	rec := do(t, NewEngine(d), http.MethodGet, "/kangaroos", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, BodyNotFound, rec.Body.String())
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, scrape(t, metrics),
		`avarouter_dispatch_total{method="GET",outcome="no_route",route="unmatched"} 1`)
}

func TestDispatcher_FallThroughLogsWarning(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	logger, err := observability.NewLoggerWithWriter(observability.LogConfig{
		Level:  "debug",
		Format: observability.FormatJSON,
	}, &logs)
	require.NoError(t, err)

	passThrough := chain.HandlerFunc(func(_ *chain.Context, next chain.Next) error {
		return next()
	})

	r := router.New()
	require.NoError(t, r.AddRoute("quiet", nil, router.Exact("/quiet"), passThrough))
	d := newDispatcher(t, r, WithDispatcherLogger(logger))

	rec := do(t, d, http.MethodGet, "/quiet", nil, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, BodyNotFound, rec.Body.String())
	assert.Contains(t, logs.String(), `"level":"warn"`)
	assert.Contains(t, logs.String(), "chain ended without a response")
	assert.Contains(t, logs.String(), `"route":"quiet"`)
}

func TestDispatcher_DoubleContinuation(t *testing.T) {
	t.Parallel()

	double := chain.Named("double", chain.HandlerFunc(func(_ *chain.Context, next chain.Next) error {
		_ = next()
		return next()
	}))
	silent := chain.HandlerFunc(func(*chain.Context, chain.Next) error { return nil })

	r := router.New()
	require.NoError(t, r.Get("/double", double, silent))

	metrics := observability.NewMetrics("")
	d := newDispatcher(t, r, WithDispatcherMetrics(metrics))

	rec := do(t, d, http.MethodGet, "/double", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, BodyInternalError, rec.Body.String())
	assert.Contains(t, scrape(t, metrics), `outcome="double_continuation"`)
}

func TestDispatcher_FailureAfterResponseKeepsResponse(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Get("/partial", chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		c.Status(http.StatusAccepted)
		_, _ = c.Write([]byte("partial"))
		return errors.New("connection dropped")
	})))
	d := newDispatcher(t, r)

	rec := do(t, d, http.MethodGet, "/partial", nil, nil)
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "partial", rec.Body.String())
}

func TestDispatcher_RecoveryTurnsPanicIntoFailure(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Use(middleware.Recovery(observability.NopLogger())))
	require.NoError(t, r.Get("/panic", chain.HandlerFunc(func(*chain.Context, chain.Next) error {
		panic("boom")
	})))
	d := newDispatcher(t, r)

	rec := do(t, NewEngine(d), http.MethodGet, "/panic", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, BodyInternalError, rec.Body.String())
}

func TestEngine_GinRecoversUnhandledPanic(t *testing.T) {
	t.Parallel()

	r := router.New()
	require.NoError(t, r.Get("/panic", chain.HandlerFunc(func(*chain.Context, chain.Next) error {
		panic("boom")
	})))
	d := newDispatcher(t, r)

	rec := do(t, NewEngine(d), http.MethodGet, "/panic", nil, nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDispatcher_Swap(t *testing.T) {
	t.Parallel()

	first := router.New()
	require.NoError(t, first.Get("/version", middleware.Text(http.StatusOK, "one")))
	d := newDispatcher(t, first)
	assert.True(t, first.Sealed())

	rec := do(t, d, http.MethodGet, "/version", nil, nil)
	assert.Equal(t, "one", rec.Body.String())

	second := router.New()
	require.NoError(t, second.Get("/version", middleware.Text(http.StatusOK, "two")))
	require.NoError(t, second.Get("/extra", middleware.Text(http.StatusOK, "extra")))
	require.NoError(t, d.Swap(second))

	assert.True(t, second.Sealed())
	assert.Same(t, second, d.Router())
	assert.Equal(t, 2, d.Routes())

	rec = do(t, d, http.MethodGet, "/version", nil, nil)
	assert.Equal(t, "two", rec.Body.String())

	assert.ErrorIs(t, d.Swap(nil), ErrNilRouter)
}

func TestNewDispatcher_NilRouter(t *testing.T) {
	t.Parallel()

	_, err := NewDispatcher(nil)
	assert.ErrorIs(t, err, ErrNilRouter)
}

func TestDispatcher_ConcurrentRequestsDoNotShareAttributes(t *testing.T) {
	t.Parallel()

	store := chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		if _, ok := c.Get("who"); ok {
			return errors.New("attribute leaked from another request")
		}
		c.Set("who", c.Param("who"))
		return next()
	})
	answer := chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		return c.String(http.StatusOK, fmt.Sprint(c.MustGet("who")))
	})

	r := router.New()
	require.NoError(t, r.Get("/who/:who", store, answer))
	d := newDispatcher(t, r)

	const workers = 32
	var wg sync.WaitGroup
	errs := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			want := fmt.Sprintf("caller-%d", i)
			rec := do(t, d, http.MethodGet, "/who/"+want, nil, nil)
			if rec.Code != http.StatusOK || rec.Body.String() != want {
				errs <- fmt.Sprintf("%d %q, want %q", rec.Code, rec.Body.String(), want)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for e := range errs {
		t.Error(e)
	}
}
