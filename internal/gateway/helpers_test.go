package gateway

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avarouter/internal/config"
	"github.com/vyrodovalexey/avarouter/internal/counter"
	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/router"
)

// sampleTableYAML mirrors configs/avarouter.yaml; %s is the image root.
const sampleTableYAML = `
middleware:
  - type: recovery
  - type: logging
routes:
  - name: sloths
    methods: [GET]
    path: /sloths
    handlers:
      - type: text
        body: Hello sloths!
  - name: kangaroos
    methods: [GET]
    path: /kangaroos(/*)?
    handlers:
      - type: text
        body: Hello kangaroos!
  - name: tea
    methods: [GET]
    path: /tea(/*)?
    handlers:
      - type: text
        body: Tea is delicious!
  - name: hibiscus
    methods: [GET]
    path: /tea/hibiscus
    handlers:
      - type: text
        body: Hibiscus tea is unreachable.
  - name: coffee
    methods: [GET]
    regex: ^/(coffee)+$
    handlers:
      - type: text
        body: Coffee is great!
  - name: flavored-tea
    methods: [GET]
    path: /:flavor/tea
    handlers:
      - type: template
        format: I could go for some {flavor} tea!
  - name: hits
    methods: [GET]
    path: /hits
    handlers:
      - type: hit_counter
  - name: hit-number
    methods: [GET]
    path: /hit-number
    handlers:
      - type: count_hits
      - type: template
        format: You are visitor {hitNumber}
  - name: images
    methods: [GET, HEAD]
    prefix: /img
    handlers:
      - type: static
        root: %s
  - name: api
    prefix: /api
    handlers:
      - type: set_attribute
        key: api
        value: v1
    routes:
      - name: api-flavor
        path: /:flavor
        handlers:
          - type: template
            format: "{api}:{flavor}"
  - name: send-order
    methods: [POST]
    path: /send-order
    handlers:
      - type: parse_body
      - type: html_template
        format: "<p>{name} ordered {item}</p>"
  - name: catch-all
    path: "*"
    handlers:
      - type: text
        status: 404
        body: Nothing to see here.
`

type testGateway struct {
	dispatcher *Dispatcher
	metrics    *observability.Metrics
	handler    http.Handler
	images     string
}

func newSampleGateway(t *testing.T) *testGateway {
	t.Helper()

	images := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(images, "sloth.txt"), []byte("a sloth picture"), 0o600))

	cfg, err := config.LoadConfigFromReader(strings.NewReader(fmt.Sprintf(sampleTableYAML, images)))
	require.NoError(t, err)
	require.NoError(t, config.ValidateConfig(cfg))

	metrics := observability.NewMetrics("")
	r, err := BuildRouter(cfg, Dependencies{
		Logger:  observability.NopLogger(),
		Metrics: metrics,
		Counter: counter.NewMemory(1000000),
	})
	require.NoError(t, err)

	d, err := NewDispatcher(r, WithDispatcherMetrics(metrics))
	require.NoError(t, err)

	return &testGateway{
		dispatcher: d,
		metrics:    metrics,
		handler:    NewEngine(d),
		images:     images,
	}
}

func newDispatcher(t *testing.T, r *router.Router, opts ...DispatcherOption) *Dispatcher {
	t.Helper()

	d, err := NewDispatcher(r, opts...)
	require.NoError(t, err)
	return d
}

func do(t *testing.T, h http.Handler, method, target string, body io.Reader, header http.Header) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, body)
	for k, v := range header {
		req.Header[k] = v
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func scrape(t *testing.T, m *observability.Metrics) string {
	t.Helper()

	rec := do(t, m.Handler(), http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	return rec.Body.String()
}
