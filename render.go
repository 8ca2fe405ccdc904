package spacetraveling

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/pagecache"
)

// Render writes a templ component as an HTTP 200 HTML response.
func Render(c echo.Context, cmp templ.Component) error {
	return RenderStatus(c, http.StatusOK, cmp)
}

// RenderStatus writes a templ component with a specific HTTP status code.
func RenderStatus(c echo.Context, code int, cmp templ.Component) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(code)
	return cmp.Render(c.Request().Context(), c.Response().Writer)
}

func renderBytes(ctx context.Context, cmp templ.Component) ([]byte, error) {
	var buf bytes.Buffer
	if err := cmp.Render(ctx, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writePage answers a generated page. Shared caches may keep it for ttl and
// serve it stale while they revalidate, mirroring the page cache itself.
func writePage(c echo.Context, contentType string, status pagecache.Status, ttl time.Duration, body []byte) error {
	h := c.Response().Header()
	h.Set("X-Cache", string(status))
	if ttl > 0 {
		secs := int(ttl.Seconds())
		h.Set("Cache-Control", fmt.Sprintf("public, max-age=0, s-maxage=%d, stale-while-revalidate=%d", secs, secs))
	} else {
		h.Set("Cache-Control", "public, max-age=0, must-revalidate")
	}
	return c.Blob(http.StatusOK, contentType, body)
}

// writeUncached answers a page rendered for this request only.
func writeUncached(c echo.Context, contentType string, body []byte) error {
	c.Response().Header().Set("Cache-Control", "no-store")
	c.Response().Header().Set("X-Cache", "BYPASS")
	return c.Blob(http.StatusOK, contentType, body)
}
