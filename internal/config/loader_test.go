package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validConfigYAML is a small table exercising every selector kind.
const validConfigYAML = `
server:
  address: ":8081"
  readTimeout: 5s
logging:
  level: debug
  format: console
counter:
  backend: memory
  start: 1000000
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
  - name: coffee
    regex: ^/(coffee)+$
    handlers:
      - type: text
        body: coffee
  - name: images
    prefix: /img
    handlers:
      - type: static
        root: public/images
  - name: api
    prefix: /api
    routes:
      - path: /:flavor/tea
        handlers:
          - type: template
            format: I could go for some {flavor} tea!
  - name: catch-all
    path: "*"
    handlers:
      - type: text
        status: 404
        body: nothing here
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "avarouter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(writeConfig(t, validConfigYAML))
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	assert.Equal(t, ":8081", cfg.Server.Address)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout.Duration())
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "stdout", cfg.Logging.Output)
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
	assert.Equal(t, int64(1000000), cfg.Counter.Start)

	require.Len(t, cfg.Middleware, 2)
	assert.Equal(t, HandlerRecovery, cfg.Middleware[0].Type)

	require.Len(t, cfg.Routes, 5)
	assert.Equal(t, []string{"GET"}, cfg.Routes[0].Methods)
	assert.Equal(t, "^/(coffee)+$", cfg.Routes[1].Regex)
	assert.False(t, cfg.Routes[2].IsMount())
	assert.True(t, cfg.Routes[3].IsMount())
	assert.Equal(t, "I could go for some {flavor} tea!", cfg.Routes[3].Routes[0].Handlers[0].Format)
	assert.Equal(t, "*", cfg.Routes[4].Path)
	assert.Equal(t, 404, cfg.Routes[4].Handlers[0].Status)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadConfigFromReader_InvalidYAML(t *testing.T) {
	t.Parallel()

	_, err := LoadConfigFromReader(strings.NewReader("routes: [:"))
	assert.Error(t, err)
}

func TestLoadConfigFromReader_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader("routes: []\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultAddress, cfg.Server.Address)
	assert.Equal(t, CounterMemory, cfg.Counter.Backend)
	assert.Equal(t, 1.0, cfg.Tracing.SamplingRate)
	assert.Equal(t, DefaultShutdownTimeout, cfg.Server.ShutdownTimeout.Duration())
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("AVAROUTER_TEST_ADDR", ":9999")
	t.Setenv("AVAROUTER_TEST_EMPTY", "")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "set", input: "address: ${AVAROUTER_TEST_ADDR}", want: "address: :9999"},
		{name: "set ignores default", input: "${AVAROUTER_TEST_ADDR:-:1}", want: ":9999"},
		{name: "unset default", input: "${AVAROUTER_TEST_UNSET:-:8080}", want: ":8080"},
		{name: "unset no default", input: "[${AVAROUTER_TEST_UNSET}]", want: "[]"},
		{name: "set but empty", input: "[${AVAROUTER_TEST_EMPTY:-x}]", want: "[]"},
		{name: "escaped dollar", input: "cost: $$5", want: "cost: $5"},
		{name: "no variables", input: "plain", want: "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, substituteEnvVars(tt.input))
		})
	}
}

func TestLoadConfig_EnvSubstitution(t *testing.T) {
	t.Setenv("AVAROUTER_TEST_REDIS", "redis:6379")

	cfg, err := LoadConfigFromReader(strings.NewReader(`
counter:
  backend: redis
  redis:
    address: ${AVAROUTER_TEST_REDIS}
    key: ${AVAROUTER_TEST_KEY:-hits}
routes:
  - path: /hits
    handlers:
      - type: hit_counter
`))
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))
	assert.Equal(t, "redis:6379", cfg.Counter.Redis.Address)
	assert.Equal(t, "hits", cfg.Counter.Redis.Key)
}

func TestResolveConfigPath(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, validConfigYAML)

	resolved, err := ResolveConfigPath(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)

	_, err = ResolveConfigPath(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	_, err = ResolveConfigPath("definitely-not-here-avarouter.yaml")
	assert.Error(t, err)
}

func TestDuration_YAML(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfigFromReader(strings.NewReader("server:\n  readTimeout: 1h30m\n  writeTimeout: \"\"\n"))
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, cfg.Server.ReadTimeout.Duration())
	assert.Equal(t, DefaultWriteTimeout, cfg.Server.WriteTimeout.Duration())

	_, err = LoadConfigFromReader(strings.NewReader("server:\n  readTimeout: soon\n"))
	assert.Error(t, err)

	out, err := Duration(2 * time.Second).MarshalYAML()
	require.NoError(t, err)
	assert.Equal(t, "2s", out)
	assert.Equal(t, time.Minute, Duration(0).OrDefault(time.Minute))
	assert.Equal(t, time.Second, Duration(time.Second).OrDefault(time.Minute))
}

func TestLoadConfig_ShippedTable(t *testing.T) {
	t.Parallel()

	cfg, err := LoadConfig(filepath.Join("..", "..", "configs", "avarouter.yaml"))
	require.NoError(t, err)
	require.NoError(t, ValidateConfig(cfg))

	require.NotEmpty(t, cfg.Routes)
	last := cfg.Routes[len(cfg.Routes)-1]
	assert.Equal(t, "*", last.Path)
	assert.True(t, cfg.RateLimit.Enabled)
}
