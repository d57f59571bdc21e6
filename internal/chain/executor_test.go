package chain

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vyrodovalexey/avarouter/internal/util"
)

// recordingSink is a ResponseSink that keeps everything in memory.
type recordingSink struct {
	status  int
	headers http.Header
	body    []byte
	ended   int
}

func newRecordingSink() *recordingSink {
	return &recordingSink{headers: make(http.Header)}
}

func (s *recordingSink) WriteStatus(code int) {
	s.status = code
}

func (s *recordingSink) WriteHeader(name, value string) {
	s.headers.Set(name, value)
}

func (s *recordingSink) End() {
	s.ended++
}

func (s *recordingSink) WriteBody(b []byte) (int, error) {
	s.body = append(s.body, b...)
	return len(b), nil
}

func newTestContext(method, path string) (*Context, *recordingSink) {
	sink := newRecordingSink()
	return NewContext(context.Background(), &Request{Method: method, Path: path}, sink), sink
}

func passThrough(trace *[]string, name string) Handler {
	return HandlerFunc(func(c *Context, next Next) error {
		*trace = append(*trace, name)
		err := next()
		*trace = append(*trace, name+"-after")
		return err
	})
}

func terminal(trace *[]string, name, body string) Handler {
	return HandlerFunc(func(c *Context, _ Next) error {
		*trace = append(*trace, name)
		return c.String(http.StatusOK, body)
	})
}

func TestExecute_PassThroughThenTerminal(t *testing.T) {
	t.Parallel()

	var trace []string
	c, sink := newTestContext("GET", "/ducks")

	err := Execute(c, []Handler{
		passThrough(&trace, "A"),
		terminal(&trace, "B", "Beware of ducks!"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "A-after"}, trace)
	assert.True(t, c.Responded())
	assert.Equal(t, http.StatusOK, sink.status)
	assert.Equal(t, "Beware of ducks!", string(sink.body))
	assert.Equal(t, 1, sink.ended)
}

func TestExecute_TerminalStopsChain(t *testing.T) {
	t.Parallel()

	var trace []string
	c, _ := newTestContext("GET", "/sloths")

	err := Execute(c, []Handler{
		terminal(&trace, "A", "Sloths rule!"),
		terminal(&trace, "B", "unreachable"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, trace)
}

func TestExecute_FallThrough(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		handlers []Handler
	}{
		{
			name:     "empty chain",
			handlers: nil,
		},
		{
			name: "handler neither responds nor continues",
			handlers: []Handler{
				HandlerFunc(func(c *Context, _ Next) error { return nil }),
			},
		},
		{
			name: "last handler calls next",
			handlers: []Handler{
				HandlerFunc(func(c *Context, next Next) error { return next() }),
				HandlerFunc(func(c *Context, next Next) error { return next() }),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c, _ := newTestContext("GET", "/nowhere")
			err := Execute(c, tt.handlers)

			require.Error(t, err)
			assert.True(t, errors.Is(err, util.ErrFallThrough))

			var ft *util.FallThroughError
			require.True(t, errors.As(err, &ft))
			assert.Equal(t, len(tt.handlers), ft.Handlers)
			assert.Equal(t, "/nowhere", ft.Path)
		})
	}
}

func TestExecute_DoubleContinuation(t *testing.T) {
	t.Parallel()

	t.Run("reported when handler checks the error", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestContext("GET", "/")
		var second error
		err := Execute(c, []Handler{
			HandlerFunc(func(c *Context, next Next) error {
				if err := next(); err != nil {
					return err
				}
				second = next()
				return second
			}),
			HandlerFunc(func(c *Context, _ Next) error {
				return c.String(http.StatusOK, "once")
			}),
		})

		require.Error(t, err)
		assert.True(t, errors.Is(err, util.ErrDoubleContinuation))
		assert.True(t, errors.Is(second, util.ErrDoubleContinuation))
	})

	t.Run("reported when handler swallows the error", func(t *testing.T) {
		t.Parallel()

		c, _ := newTestContext("GET", "/")
		runs := 0
		err := Execute(c, []Handler{
			HandlerFunc(func(c *Context, next Next) error {
				_ = next()
				_ = next()
				return nil
			}),
			HandlerFunc(func(c *Context, _ Next) error {
				runs++
				return c.String(http.StatusOK, "once")
			}),
		})

		assert.Equal(t, 1, runs)
		var ce *util.ContinuationError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, 0, ce.Index)
	})
}

func TestExecute_HandlerFailure(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	var trace []string
	c, _ := newTestContext("POST", "/send-order")

	err := Execute(c, []Handler{
		passThrough(&trace, "A"),
		Named("parser", HandlerFunc(func(c *Context, _ Next) error {
			trace = append(trace, "parser")
			return boom
		})),
		terminal(&trace, "C", "unreachable"),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrHandlerFailure))
	assert.True(t, errors.Is(err, boom))
	assert.Equal(t, []string{"A", "parser", "A-after"}, trace)

	var he *util.HandlerError
	require.True(t, errors.As(err, &he))
	assert.Equal(t, 1, he.Index)
	assert.Equal(t, "parser", he.Handler)
}

func TestExecute_FailureSwallowedUpstreamIsStillReported(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext("GET", "/")
	err := Execute(c, []Handler{
		HandlerFunc(func(c *Context, next Next) error {
			_ = next()
			return nil
		}),
		HandlerFunc(func(c *Context, _ Next) error {
			return fmt.Errorf("late failure")
		}),
	})

	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrHandlerFailure))
}

func TestExecute_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewContext(ctx, &Request{Method: "GET", Path: "/slow"}, newRecordingSink())

	ran := false
	err := Execute(c, []Handler{
		HandlerFunc(func(c *Context, next Next) error {
			cancel()
			return next()
		}),
		HandlerFunc(func(c *Context, _ Next) error {
			ran = true
			return c.String(http.StatusOK, "too late")
		}),
	})

	assert.False(t, ran)
	assert.True(t, errors.Is(err, util.ErrHandlerFailure))
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestExecute_AttributePropagation(t *testing.T) {
	t.Parallel()

	c, sink := newTestContext("GET", "/")

	youreNo1000000 := HandlerFunc(func(c *Context, next Next) error {
		c.Set("hitNumber", 1000000)
		return next()
	})
	serveHitNumber := HandlerFunc(func(c *Context, _ Next) error {
		return c.String(http.StatusOK, fmt.Sprintf("You're totally viewer number %d!", c.MustGet("hitNumber")))
	})

	require.NoError(t, Execute(c, []Handler{youreNo1000000, serveHitNumber}))
	assert.Contains(t, string(sink.body), "1000000")
}

func TestExecute_IndependentCursors(t *testing.T) {
	t.Parallel()

	var trace []string
	handlers := []Handler{
		passThrough(&trace, "A"),
		terminal(&trace, "B", "ok"),
	}

	for i := 0; i < 3; i++ {
		c, _ := newTestContext("GET", "/")
		require.NoError(t, Execute(c, handlers))
	}
	assert.Len(t, trace, 9)
}

func TestExecute_UpstreamObservesSwallowedViolation(t *testing.T) {
	t.Parallel()

	c, _ := newTestContext("GET", "/")
	var observed error
	err := Execute(c, []Handler{
		HandlerFunc(func(c *Context, next Next) error {
			observed = next()
			return observed
		}),
		HandlerFunc(func(c *Context, next Next) error {
			_ = next()
			_ = next()
			return nil
		}),
		HandlerFunc(func(c *Context, _ Next) error {
			return c.String(http.StatusOK, "once")
		}),
	})

	assert.True(t, errors.Is(err, util.ErrDoubleContinuation))
	assert.True(t, errors.Is(observed, util.ErrDoubleContinuation))
}
