package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/url"
	"strconv"

	"github.com/vyrodovalexey/avarouter/internal/chain"
)

// DefaultMaxBodyBytes bounds ParseBody when no limit is given.
const DefaultMaxBodyBytes int64 = 1 << 20

// Body parsing errors.
var (
	ErrBodyTooLarge  = errors.New("request body too large")
	ErrMalformedBody = errors.New("malformed request body")
	ErrNonObjectJSON = errors.New("json body is not an object")
)

// ParseBody returns a pass-through handler that decodes
// application/x-www-form-urlencoded and application/json object bodies
// into a map[string]string stored under FormAttribute. Other content
// types yield an empty map. Decoding failures abort the chain.
func ParseBody(maxBytes int64) chain.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}

	return chain.Named("parse_body", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		form, err := decodeBody(c, maxBytes)
		if err != nil {
			return err
		}
		c.Set(FormAttribute, form)
		return next()
	}))
}

// Form returns the values decoded by ParseBody, or nil.
func Form(c *chain.Context) map[string]string {
	v, ok := c.Get(FormAttribute)
	if !ok {
		return nil
	}
	form, _ := v.(map[string]string)
	return form
}

func decodeBody(c *chain.Context, maxBytes int64) (map[string]string, error) {
	form := make(map[string]string)
	if c.Body() == nil {
		return form, nil
	}

	mediaType, _, err := mime.ParseMediaType(c.Header().Get(HeaderContentType))
	if err != nil {
		return form, nil
	}
	if mediaType != ContentTypeFormURLEncoded && mediaType != ContentTypeJSON {
		return form, nil
	}

	raw, err := io.ReadAll(io.LimitReader(c.Body(), maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading request body: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		GetMiddlewareMetrics().bodyParseFailures.WithLabelValues("too_large").Inc()
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxBytes)
	}

	if mediaType == ContentTypeFormURLEncoded {
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			GetMiddlewareMetrics().bodyParseFailures.WithLabelValues("form").Inc()
			return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
		}
		for key := range values {
			form[key] = values.Get(key)
		}
		return form, nil
	}

	if len(raw) == 0 {
		return form, nil
	}

	var object map[string]any
	if err := json.Unmarshal(raw, &object); err != nil {
		GetMiddlewareMetrics().bodyParseFailures.WithLabelValues("json").Inc()
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, ErrNonObjectJSON
		}
		return nil, fmt.Errorf("%w: %w", ErrMalformedBody, err)
	}
	if object == nil {
		return nil, ErrNonObjectJSON
	}
	for key, value := range object {
		form[key] = stringify(value)
	}
	return form, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}
