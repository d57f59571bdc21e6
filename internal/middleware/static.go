package middleware

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"

	"github.com/vyrodovalexey/avarouter/internal/chain"
)

// Static returns a handler that serves the file named by the context's
// Remainder from root. When no regular file exists there it falls
// through to next, so a later route or handler can answer.
func Static(root string) chain.Handler {
	return StaticFS(os.DirFS(root))
}

// StaticFS is Static over an arbitrary file system.
func StaticFS(fsys fs.FS) chain.Handler {
	return chain.Named("static", chain.HandlerFunc(func(c *chain.Context, next chain.Next) error {
		name := staticName(c.Remainder())
		if name == "" {
			GetMiddlewareMetrics().staticRequests.WithLabelValues("miss").Inc()
			return next()
		}

		f, err := fsys.Open(name)
		if errors.Is(err, fs.ErrNotExist) {
			GetMiddlewareMetrics().staticRequests.WithLabelValues("miss").Inc()
			return next()
		}
		if err != nil {
			return fmt.Errorf("opening %s: %w", name, err)
		}
		defer func() { _ = f.Close() }()

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat %s: %w", name, err)
		}
		if !info.Mode().IsRegular() {
			GetMiddlewareMetrics().staticRequests.WithLabelValues("miss").Inc()
			return next()
		}

		GetMiddlewareMetrics().staticRequests.WithLabelValues("hit").Inc()

		contentType := mime.TypeByExtension(filepath.Ext(name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		c.SetHeader(HeaderContentType, contentType)
		c.SetHeader(HeaderContentLength, strconv.FormatInt(info.Size(), 10))
		c.Status(http.StatusOK)

		if c.Method() != http.MethodHead {
			if _, err := io.Copy(c, f); err != nil {
				return fmt.Errorf("serving %s: %w", name, err)
			}
		}
		c.End()
		return nil
	}))
}

// staticName converts a rooted request path into an fs.FS name. It
// returns "" for the root itself.
func staticName(remainder string) string {
	name := path.Clean("/" + remainder)[1:]
	if name == "" || !fs.ValidPath(name) {
		return ""
	}
	return name
}
