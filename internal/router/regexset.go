package router

import (
	"regexp"
	"sync"
)

// RegexSet holds the compiled expressions of the live route table so a
// rebuilt table reuses them. Expressions the latest table no longer
// uses are dropped by Sweep, which keeps the set the size of the table.
type RegexSet struct {
	mu       sync.Mutex
	compiled map[string]*regexp.Regexp
	used     map[string]struct{}
	metrics  *regexSetMetrics
}

// NewRegexSet creates an empty set.
func NewRegexSet() *RegexSet {
	return &RegexSet{
		compiled: make(map[string]*regexp.Regexp),
		used:     make(map[string]struct{}),
		metrics:  getRegexSetMetrics(),
	}
}

// Regex is like the package-level Regex but shares compiled expressions
// with earlier builds.
func (s *RegexSet) Regex(expr string) (*RegexMatcher, error) {
	regex, err := s.compile(expr)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{expr: expr, regex: regex}, nil
}

func (s *RegexSet) compile(expr string) (*regexp.Regexp, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.used[expr] = struct{}{}
	if regex, ok := s.compiled[expr]; ok {
		s.metrics.reused.Inc()
		return regex, nil
	}

	regex, err := regexp.Compile(expr)
	if err != nil {
		delete(s.used, expr)
		return nil, err
	}
	s.metrics.compiled.Inc()
	s.compiled[expr] = regex
	s.metrics.size.Set(float64(len(s.compiled)))
	return regex, nil
}

// Sweep drops the expressions not requested since the previous Sweep and
// returns how many were dropped. Call it once a build has succeeded.
func (s *RegexSet) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	dropped := 0
	for expr := range s.compiled {
		if _, ok := s.used[expr]; !ok {
			delete(s.compiled, expr)
			dropped++
		}
	}
	clear(s.used)

	s.metrics.dropped.Add(float64(dropped))
	s.metrics.size.Set(float64(len(s.compiled)))
	return dropped
}

// Len returns the number of compiled expressions held.
func (s *RegexSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.compiled)
}
