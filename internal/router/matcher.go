package router

import (
	"fmt"
	"regexp"
	"strings"
)

// Pattern type names.
const (
	TypeExact     = "exact"
	TypePrefix    = "prefix"
	TypeParameter = "parameter"
	TypeRegex     = "regex"
	TypeAny       = "any"
)

// optional tail markers accepted at the end of a parameterized pattern.
const (
	tailMarkerGroup = "(/*)?"
	tailMarkerStar  = "/*"
)

// MatchResult is the outcome of matching a path against a Pattern.
type MatchResult struct {
	Matched bool
	// Params holds named segments bound by a parameterized pattern.
	Params map[string]string
	// Captures holds the positional groups of a regex pattern.
	Captures []string
	// Remainder is the part of the path below a prefix or optional tail,
	// always rooted at "/". Other patterns leave the full path.
	Remainder string
}

var noMatch = MatchResult{}

// Pattern is a matching rule tested against a request path. The set of
// implementations is closed: ExactMatcher, PrefixMatcher,
// ParameterMatcher, RegexMatcher and AnyMatcher. Patterns are immutable.
type Pattern interface {
	Match(path string) MatchResult
	Type() string
	String() string
	pattern()
}

// ExactMatcher matches one path, ignoring a trailing slash.
type ExactMatcher struct {
	path string
}

// Exact creates an exact path pattern.
func Exact(path string) *ExactMatcher {
	return &ExactMatcher{path: normalizePath(path)}
}

// Match checks if the path matches exactly.
func (m *ExactMatcher) Match(path string) MatchResult {
	if normalizePath(path) != m.path {
		return noMatch
	}
	return MatchResult{Matched: true, Remainder: path}
}

// Type returns the pattern type.
func (m *ExactMatcher) Type() string { return TypeExact }

func (m *ExactMatcher) String() string { return m.path }

func (*ExactMatcher) pattern() {}

// PrefixMatcher matches a path and everything rooted beneath it.
type PrefixMatcher struct {
	prefix string
}

// Prefix creates a prefix pattern. A prefix of "/" matches every path.
func Prefix(prefix string) *PrefixMatcher {
	return &PrefixMatcher{prefix: normalizePath(prefix)}
}

// Match checks if the path is the prefix or lies beneath it.
func (m *PrefixMatcher) Match(path string) MatchResult {
	if m.prefix == "/" {
		return MatchResult{Matched: true, Remainder: rooted(path)}
	}
	if path == m.prefix {
		return MatchResult{Matched: true, Remainder: "/"}
	}
	// Ensure we match at path boundaries
	if strings.HasPrefix(path, m.prefix) && path[len(m.prefix)] == '/' {
		return MatchResult{Matched: true, Remainder: path[len(m.prefix):]}
	}
	return noMatch
}

// Type returns the pattern type.
func (m *PrefixMatcher) Type() string { return TypePrefix }

func (m *PrefixMatcher) String() string { return m.prefix }

func (*PrefixMatcher) pattern() {}

// ParameterMatcher matches paths segment by segment, binding ":name" or
// "{name}" segments, with an optional tail.
type ParameterMatcher struct {
	raw      string
	segments []segment
	tail     bool
}

type segment struct {
	value     string
	isParam   bool
	paramName string
}

// Params creates a parameterized pattern such as "/:flavor/tea" or
// "/kangaroos(/*)?".
func Params(pattern string) (*ParameterMatcher, error) {
	if !strings.HasPrefix(pattern, "/") {
		return nil, fmt.Errorf("pattern %q must start with /", pattern)
	}

	body, tail := cutTail(pattern)
	segments, err := parsePathPattern(body)
	if err != nil {
		return nil, err
	}

	return &ParameterMatcher{
		raw:      pattern,
		segments: segments,
		tail:     tail,
	}, nil
}

// cutTail strips an optional tail marker.
func cutTail(pattern string) (string, bool) {
	if rest, ok := strings.CutSuffix(pattern, tailMarkerGroup); ok {
		return rest, true
	}
	if rest, ok := strings.CutSuffix(pattern, tailMarkerStar); ok {
		return rest, true
	}
	return pattern, false
}

// parsePathPattern parses a path pattern into segments.
func parsePathPattern(pattern string) ([]segment, error) {
	parts := splitPath(pattern)
	segments := make([]segment, 0, len(parts))
	seen := make(map[string]bool, len(parts))

	for _, part := range parts {
		name, isParam := paramName(part)
		if !isParam {
			if part == "" {
				return nil, fmt.Errorf("pattern %q has an empty segment", pattern)
			}
			segments = append(segments, segment{value: part})
			continue
		}

		if name == "" {
			return nil, fmt.Errorf("pattern %q has an unnamed parameter", pattern)
		}
		if seen[name] {
			return nil, fmt.Errorf("pattern %q repeats parameter %q", pattern, name)
		}
		seen[name] = true
		segments = append(segments, segment{value: part, isParam: true, paramName: name})
	}

	return segments, nil
}

func paramName(part string) (string, bool) {
	if name, ok := strings.CutPrefix(part, ":"); ok {
		return name, true
	}
	if strings.HasPrefix(part, "{") && strings.HasSuffix(part, "}") {
		return part[1 : len(part)-1], true
	}
	return "", false
}

// Match compares the path segment by segment and extracts parameters.
func (m *ParameterMatcher) Match(path string) MatchResult {
	parts := splitPath(path)
	if len(parts) < len(m.segments) || (!m.tail && len(parts) != len(m.segments)) {
		return noMatch
	}

	var params map[string]string
	for i, seg := range m.segments {
		part := parts[i]
		if seg.isParam {
			if part == "" {
				return noMatch
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.paramName] = part
			continue
		}
		if part != seg.value {
			return noMatch
		}
	}

	remainder := path
	if m.tail {
		remainder = "/" + strings.Join(parts[len(m.segments):], "/")
	}

	return MatchResult{Matched: true, Params: params, Remainder: remainder}
}

// Type returns the pattern type.
func (m *ParameterMatcher) Type() string { return TypeParameter }

func (m *ParameterMatcher) String() string { return m.raw }

func (*ParameterMatcher) pattern() {}

// RegexMatcher matches paths using regular expressions. Groups are exposed
// as positional captures only.
type RegexMatcher struct {
	expr  string
	regex *regexp.Regexp
}

// Regex creates a regular expression pattern. The expression matches
// anywhere in the path unless it is anchored.
func Regex(expr string) (*RegexMatcher, error) {
	regex, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &RegexMatcher{expr: expr, regex: regex}, nil
}

// MustRegex is like Regex but panics on an invalid expression.
func MustRegex(expr string) *RegexMatcher {
	m, err := Regex(expr)
	if err != nil {
		panic(err)
	}
	return m
}

// Match checks if the path matches the regex.
func (m *RegexMatcher) Match(path string) MatchResult {
	matches := m.regex.FindStringSubmatch(path)
	if matches == nil {
		return noMatch
	}

	var captures []string
	if len(matches) > 1 {
		captures = append(captures, matches[1:]...)
	}

	return MatchResult{Matched: true, Captures: captures, Remainder: path}
}

// Type returns the pattern type.
func (m *RegexMatcher) Type() string { return TypeRegex }

func (m *RegexMatcher) String() string { return m.expr }

func (*RegexMatcher) pattern() {}

// AnyMatcher is the bare "*" wildcard.
type AnyMatcher struct{}

// Any returns the pattern that matches every path.
func Any() AnyMatcher {
	return AnyMatcher{}
}

// Match always succeeds.
func (AnyMatcher) Match(path string) MatchResult {
	return MatchResult{Matched: true, Remainder: path}
}

// Type returns the pattern type.
func (AnyMatcher) Type() string { return TypeAny }

func (AnyMatcher) String() string { return "*" }

func (AnyMatcher) pattern() {}

// ParsePattern turns a registration string into a Pattern: "*" is Any,
// a string with parameters or a tail marker is parameterized, anything
// else is exact. Prefix and regex patterns are built explicitly.
func ParsePattern(s string) (Pattern, error) {
	switch {
	case s == "*":
		return Any(), nil
	case s == "":
		return nil, fmt.Errorf("empty pattern")
	case !strings.HasPrefix(s, "/"):
		return nil, fmt.Errorf("pattern %q must start with / or be *", s)
	case HasPathParameters(s) || HasTail(s):
		return Params(s)
	default:
		return Exact(s), nil
	}
}

// HasPathParameters checks if a pattern contains named parameters.
func HasPathParameters(pattern string) bool {
	for _, part := range splitPath(pattern) {
		if _, ok := paramName(part); ok {
			return true
		}
	}
	return false
}

// HasTail checks if a pattern ends with an optional tail marker.
func HasTail(pattern string) bool {
	return strings.HasSuffix(pattern, tailMarkerGroup) || strings.HasSuffix(pattern, tailMarkerStar)
}

// normalizePath drops trailing slashes except for the root.
func normalizePath(p string) string {
	p = rooted(p)
	for len(p) > 1 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

func rooted(p string) string {
	if !strings.HasPrefix(p, "/") {
		return "/" + p
	}
	return p
}

// splitPath splits a path into segments without leading or trailing
// empty segments. The root path has no segments.
func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}
