package middleware

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/vyrodovalexey/avarouter/internal/chain"
)

// Text returns a terminal handler answering with a fixed plain-text body.
func Text(code int, body string) chain.Handler {
	return chain.Named("text", chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		return c.String(code, body)
	}))
}

// SetAttribute returns a pass-through handler that stores value under key.
func SetAttribute(key string, value any) chain.Handler {
	return chain.Named("set_attribute", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		c.Set(key, value)
		return next()
	}))
}

// Template returns a terminal handler that answers 200 with format after
// substituting {name} placeholders. A name resolves to the path
// parameter, then the attribute, then the decoded form value of that
// name; unresolved placeholders become empty.
func Template(format string) chain.Handler {
	t := compileTemplate(format)
	return chain.Named("template", chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		return c.String(http.StatusOK, t.render(c, nil))
	}))
}

// HTMLTemplate is Template with HTML-escaped substitutions and an HTML
// content type.
func HTMLTemplate(format string) chain.Handler {
	t := compileTemplate(format)
	return chain.Named("html_template", chain.HandlerFunc(func(c *chain.Context, _ chain.Next) error {
		body := t.render(c, html.EscapeString)
		c.SetHeader(HeaderContentType, ContentTypeHTML)
		c.Status(http.StatusOK)
		if _, err := c.Write([]byte(body)); err != nil {
			return err
		}
		c.End()
		return nil
	}))
}

// template is a format string split into literal text and placeholders.
type template struct {
	parts []templatePart
}

type templatePart struct {
	text        string
	placeholder bool
}

func compileTemplate(format string) *template {
	t := &template{}
	for format != "" {
		open := strings.IndexByte(format, '{')
		if open < 0 {
			break
		}
		end := strings.IndexByte(format[open:], '}')
		if end < 0 {
			break
		}
		end += open

		name := format[open+1 : end]
		if name == "" || strings.ContainsAny(name, "{ ") {
			t.parts = append(t.parts, templatePart{text: format[:open+1]})
			format = format[open+1:]
			continue
		}

		if open > 0 {
			t.parts = append(t.parts, templatePart{text: format[:open]})
		}
		t.parts = append(t.parts, templatePart{text: name, placeholder: true})
		format = format[end+1:]
	}
	if format != "" {
		t.parts = append(t.parts, templatePart{text: format})
	}
	return t
}

func (t *template) render(c *chain.Context, escape func(string) string) string {
	var b strings.Builder
	for _, p := range t.parts {
		if !p.placeholder {
			b.WriteString(p.text)
			continue
		}
		v := lookup(c, p.text)
		if escape != nil {
			v = escape(v)
		}
		b.WriteString(v)
	}
	return b.String()
}

func lookup(c *chain.Context, name string) string {
	if v, ok := c.Params()[name]; ok {
		return v
	}
	if v, ok := c.Get(name); ok {
		return fmt.Sprint(v)
	}
	if v, ok := Form(c)[name]; ok {
		return v
	}
	return ""
}
