package config

import (
	"fmt"
	"strings"

	"github.com/vyrodovalexey/avarouter/internal/observability"
	"github.com/vyrodovalexey/avarouter/internal/router"
	"github.com/vyrodovalexey/avarouter/internal/util"
)

// FieldError is a single configuration validation failure.
type FieldError struct {
	Path    string
	Message string
}

// Error implements the error interface.
func (e FieldError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Message)
	}
	return e.Message
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors []FieldError

// Error implements the error interface.
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// Is matches util.ErrConfigInvalid.
func (e ValidationErrors) Is(target error) bool {
	return target == util.ErrConfigInvalid
}

// HasErrors returns true if there are validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates route-table configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateConfig validates a configuration.
func ValidateConfig(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration and returns any errors.
func (v *Validator) Validate(cfg *Config) error {
	v.errors = nil

	if cfg == nil {
		v.addError("", "configuration is nil")
		return v.errors
	}

	v.validateServer(&cfg.Server)
	v.validateLogging(&cfg.Logging)
	v.validateMetrics(&cfg.Metrics)
	v.validateTracing(&cfg.Tracing)
	v.validateCounter(&cfg.Counter)
	v.validateRateLimit(cfg.RateLimit)

	rateLimited := cfg.RateLimit != nil && cfg.RateLimit.Enabled
	for i := range cfg.Middleware {
		v.validateHandler(fmt.Sprintf("middleware[%d]", i), &cfg.Middleware[i], rateLimited)
	}

	if len(cfg.Routes) == 0 {
		v.addError("routes", "at least one route is required")
	}
	v.validateRoutes("routes", cfg.Routes, rateLimited)

	if v.errors.HasErrors() {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(path, message string) {
	v.errors = append(v.errors, FieldError{Path: path, Message: message})
}

func (v *Validator) validateServer(s *ServerConfig) {
	if err := util.ValidateNonEmpty(s.Address, "address"); err != nil {
		v.addError("server.address", err.Error())
	}
	for name, d := range map[string]Duration{
		"server.readTimeout":     s.ReadTimeout,
		"server.writeTimeout":    s.WriteTimeout,
		"server.shutdownTimeout": s.ShutdownTimeout,
	} {
		if err := util.ValidateDuration(d.Duration()); err != nil {
			v.addError(name, err.Error())
		}
	}
}

func (v *Validator) validateLogging(l *LoggingConfig) {
	if _, err := observability.ParseLevel(l.Level); err != nil {
		v.addError("logging.level", fmt.Sprintf("invalid log level %q", l.Level))
	}
	switch l.Format {
	case observability.FormatJSON, observability.FormatConsole:
	default:
		v.addError("logging.format", fmt.Sprintf("format must be json or console, got %q", l.Format))
	}
	switch l.Output {
	case observability.OutputStdout, observability.OutputStderr:
	default:
		v.addError("logging.output", fmt.Sprintf("output must be stdout or stderr, got %q", l.Output))
	}
}

func (v *Validator) validateMetrics(m *MetricsConfig) {
	if !m.Enabled {
		return
	}
	if !strings.HasPrefix(m.Path, "/") {
		v.addError("metrics.path", "path must start with /")
	}
}

func (v *Validator) validateTracing(t *TracingConfig) {
	if t.SamplingRate < 0 || t.SamplingRate > 1 {
		v.addError("tracing.samplingRate", "samplingRate must be between 0 and 1")
	}
}

func (v *Validator) validateCounter(c *CounterConfig) {
	switch c.Backend {
	case CounterMemory:
	case CounterRedis:
		if c.Redis == nil || c.Redis.Address == "" {
			v.addError("counter.redis.address", "redis backend requires an address")
			return
		}
		if c.Redis.BreakerThreshold < 0 {
			v.addError("counter.redis.breakerThreshold", "breakerThreshold cannot be negative")
		}
		if err := util.ValidateDuration(c.Redis.BreakerTimeout.Duration()); err != nil {
			v.addError("counter.redis.breakerTimeout", err.Error())
		}
	default:
		v.addError("counter.backend", fmt.Sprintf("backend must be memory or redis, got %q", c.Backend))
	}
}

func (v *Validator) validateRateLimit(r *RateLimitConfig) {
	if r == nil || !r.Enabled {
		return
	}
	if r.RequestsPerSecond <= 0 {
		v.addError("rateLimit.requestsPerSecond", "requestsPerSecond must be positive")
	}
	if r.Burst <= 0 {
		v.addError("rateLimit.burst", "burst must be positive")
	}
}

func (v *Validator) validateRoutes(path string, routes []RouteConfig, rateLimited bool) {
	names := make(map[string]int, len(routes))
	for i := range routes {
		r := &routes[i]
		routePath := fmt.Sprintf("%s[%d]", path, i)

		if r.Name != "" {
			if prev, dup := names[r.Name]; dup {
				v.addError(routePath+".name", fmt.Sprintf("duplicate route name %q (also %s[%d])", r.Name, path, prev))
			}
			names[r.Name] = i
		}

		v.validateRoute(routePath, r, rateLimited)
	}
}

func (v *Validator) validateRoute(path string, r *RouteConfig, rateLimited bool) {
	for _, m := range r.Methods {
		if err := util.ValidateHTTPMethod(m); err != nil {
			v.addError(path+".methods", err.Error())
		}
	}

	selectors := 0
	for _, s := range []string{r.Path, r.Prefix, r.Regex} {
		if s != "" {
			selectors++
		}
	}
	if selectors != 1 {
		v.addError(path, "exactly one of path, prefix or regex is required")
	}

	switch {
	case r.Path != "":
		if _, err := router.ParsePattern(r.Path); err != nil {
			v.addError(path+".path", err.Error())
		}
	case r.Prefix != "":
		if !strings.HasPrefix(r.Prefix, "/") {
			v.addError(path+".prefix", "prefix must start with /")
		}
	case r.Regex != "":
		if err := util.ValidateRegex(r.Regex); err != nil {
			v.addError(path+".regex", err.Error())
		}
	}

	if len(r.Routes) > 0 && r.Prefix == "" {
		v.addError(path+".routes", "nested routes require a prefix")
	}
	if len(r.Routes) > 0 && len(r.Methods) > 0 {
		v.addError(path+".methods", "methods are not allowed on a mount")
	}
	if len(r.Handlers) == 0 && len(r.Routes) == 0 {
		v.addError(path+".handlers", "route has no handlers")
	}

	for i := range r.Handlers {
		v.validateHandler(fmt.Sprintf("%s.handlers[%d]", path, i), &r.Handlers[i], rateLimited)
	}
	v.validateRoutes(path+".routes", r.Routes, rateLimited)
}

func (v *Validator) validateHandler(path string, h *HandlerConfig, rateLimited bool) {
	if h.Status != 0 {
		if err := util.ValidateHTTPStatusCode(h.Status); err != nil {
			v.addError(path+".status", err.Error())
		}
	}

	switch h.Type {
	case HandlerLogging, HandlerRequestID, HandlerRecovery, HandlerTracing,
		HandlerMetrics, HandlerCountHits, HandlerHitCounter:
	case HandlerParseBody:
		if h.MaxBytes < 0 {
			v.addError(path+".maxBytes", "maxBytes cannot be negative")
		}
	case HandlerRateLimit:
		if !rateLimited {
			v.addError(path, "rate_limit handler requires rateLimit.enabled")
		}
	case HandlerStatic:
		if h.Root == "" {
			v.addError(path+".root", "static handler requires root")
		}
	case HandlerText:
		if h.Body == "" {
			v.addError(path+".body", "text handler requires body")
		}
	case HandlerTemplate, HandlerHTMLTemplate:
		if h.Format == "" {
			v.addError(path+".format", "template handler requires format")
		}
	case HandlerSetAttribute:
		if h.Key == "" {
			v.addError(path+".key", "set_attribute handler requires key")
		}
	case "":
		v.addError(path+".type", "handler type is required")
	default:
		v.addError(path+".type", fmt.Sprintf("unknown handler type %q", h.Type))
	}
}
