package middleware

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avarouter/internal/chain"
)

// recordingSink captures what a chain writes.
type recordingSink struct {
	status  int
	headers http.Header
	body    bytes.Buffer
	ended   bool
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

func (s *recordingSink) WriteBody(b []byte) (int, error) {
	return s.body.Write(b)
}

func (s *recordingSink) End() {
	s.ended = true
}

type testRequest struct {
	method      string
	path        string
	contentType string
	body        string
	header      http.Header
	params      map[string]string
	remainder   string
	route       string
}

func newTestContext(tr testRequest) (*chain.Context, *recordingSink) {
	if tr.method == "" {
		tr.method = http.MethodGet
	}
	header := tr.header
	if header == nil {
		header = make(http.Header)
	}
	if tr.contentType != "" {
		header.Set(HeaderContentType, tr.contentType)
	}

	var body io.Reader
	if tr.body != "" {
		body = strings.NewReader(tr.body)
	}

	sink := newRecordingSink()
	c := chain.NewContext(context.Background(), &chain.Request{
		Method: tr.method,
		Path:   tr.path,
		Header: header,
		Body:   body,
	}, sink)

	remainder := tr.remainder
	if remainder == "" {
		remainder = tr.path
	}
	c.Bind(tr.route, tr.params, nil, remainder)
	return c, sink
}

// terminal answers 200 with body and records that it ran.
func terminal(body string, ran *bool) chain.Handler {
	return chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		if ran != nil {
			*ran = true
		}
		return c.String(http.StatusOK, body)
	})
}
