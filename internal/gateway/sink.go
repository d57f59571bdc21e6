package gateway

import (
	"net/http"
)

// responseSink adapts an http.ResponseWriter to chain.ResponseSink.
type responseSink struct {
	w           http.ResponseWriter
	wroteHeader bool
}

func newResponseSink(w http.ResponseWriter) *responseSink {
	return &responseSink{w: w}
}

func (s *responseSink) WriteStatus(code int) {
	if s.wroteHeader {
		return
	}
	s.wroteHeader = true
	s.w.WriteHeader(code)
}

func (s *responseSink) WriteHeader(name, value string) {
	s.w.Header().Set(name, value)
}

func (s *responseSink) WriteBody(b []byte) (int, error) {
	if !s.wroteHeader {
		s.WriteStatus(http.StatusOK)
	}
	return s.w.Write(b)
}

func (s *responseSink) End() {
	if !s.wroteHeader {
		s.WriteStatus(http.StatusOK)
	}
	if f, ok := s.w.(http.Flusher); ok {
		f.Flush()
	}
}
