package spacetraveling

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

func (a *App) handleHome(c echo.Context) error {
	ctx := c.Request().Context()
	if p := a.preview(c); p.Active {
		body, err := a.renderHome(a.previewContext(c), p)
		if err != nil {
			return err
		}
		return writeUncached(c, echo.MIMETextHTMLCharsetUTF8, body)
	}
	body, status, err := a.Cache.Get(ctx, homeKey, a.Config.ListingTTL, a.homeGenerator())
	if err != nil {
		return err
	}
	return writePage(c, echo.MIMETextHTMLCharsetUTF8, status, a.Config.ListingTTL, body)
}

// handlePost serves a post page. A post with no cache entry is generated in
// the background while the loading page is shown; the loading page then asks
// again with fallback=wait, which waits for that same generation.
func (a *App) handlePost(c echo.Context) error {
	uid := c.Param("slug")
	ctx := c.Request().Context()

	if p := a.preview(c); p.Active {
		body, err := a.renderPost(a.previewContext(c), uid, p)
		if err != nil {
			return a.postError(c, err)
		}
		return writeUncached(c, echo.MIMETextHTMLCharsetUTF8, body)
	}

	key := postKey(uid)
	gen := a.postGenerator(uid)
	if _, ok := a.Cache.Peek(ctx, key); !ok {
		// A miss reaches the CMS; unknown slugs are never cached.
		if !a.limiter.Allow(c.RealIP()) {
			c.Response().Header().Set("Cache-Control", "no-store")
			return c.String(http.StatusTooManyRequests, "Too many requests")
		}
		if !a.Config.BlockingFallback && c.QueryParam("fallback") != "wait" {
			a.Cache.Prefetch(key, a.Config.PostTTL, gen)
			c.Response().Header().Set("Cache-Control", "no-store")
			c.Response().Header().Set("X-Cache", "FALLBACK")
			return Render(c, views.Loading(a.site()))
		}
	}

	body, status, err := a.Cache.Get(ctx, key, a.Config.PostTTL, gen)
	if err != nil {
		return a.postError(c, err)
	}
	return writePage(c, echo.MIMETextHTMLCharsetUTF8, status, a.Config.PostTTL, body)
}

func (a *App) postError(c echo.Context, err error) error {
	if errors.Is(err, prismic.ErrNotFound) {
		c.Response().Header().Set("Cache-Control", "no-store")
		return RenderStatus(c, http.StatusNotFound, views.NotFound(a.site()))
	}
	return err
}

// nextBatch follows the cursor query parameter. ok is false when the
// response has already been written.
func (a *App) nextBatch(c echo.Context) (batch content.Pagination, ok bool, err error) {
	if !a.limiter.Allow(c.RealIP()) {
		return batch, false, c.String(http.StatusTooManyRequests, "Too many requests")
	}
	cursor := c.QueryParam("cursor")
	if cursor == "" || !a.Source.CursorAllowed(cursor) {
		return batch, false, c.String(http.StatusBadRequest, "invalid cursor")
	}
	batch = content.Pagination{NextPage: cursor}
	if !content.LoadMore(a.previewContext(c), a.Source, &batch, a.Logger) {
		// The client keeps what it has.
		return batch, false, c.NoContent(http.StatusNoContent)
	}
	if a.preview(c).Active {
		c.Response().Header().Set("Cache-Control", "no-store")
	} else {
		c.Response().Header().Set("Cache-Control", "public, max-age=60")
	}
	return batch, true, nil
}

func (a *App) handleLoadMore(c echo.Context) error {
	batch, ok, err := a.nextBatch(c)
	if !ok {
		return err
	}
	return Render(c, views.PostBatch(a.locale, batch, moreHref(batch.NextPage)))
}

func (a *App) handleAPIPosts(c echo.Context) error {
	batch, ok, err := a.nextBatch(c)
	if !ok {
		return err
	}
	return c.JSON(http.StatusOK, batch)
}

func (a *App) handleSitemap(c echo.Context) error {
	body, status, err := a.Cache.Get(c.Request().Context(), sitemapKey, a.Config.PostTTL, a.sitemapGenerator())
	if err != nil {
		return err
	}
	return writePage(c, "application/xml; charset=utf-8", status, a.Config.PostTTL, body)
}

func (a *App) handleFeed(c echo.Context) error {
	body, status, err := a.Cache.Get(c.Request().Context(), feedKey, a.Config.PostTTL, a.feedGenerator())
	if err != nil {
		return err
	}
	return writePage(c, "application/rss+xml; charset=utf-8", status, a.Config.PostTTL, body)
}

func (a *App) handleRobots(c echo.Context) error {
	return c.String(http.StatusOK, robotsTxt(a.Config.URL))
}

func robotsTxt(siteURL string) string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	b.WriteString("Allow: /\n")
	b.WriteString("Disallow: /api/\n")
	b.WriteString("Sitemap: " + strings.TrimRight(siteURL, "/") + "/sitemap.xml\n")
	return b.String()
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, views.NotFound(a.site()))
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "method", c.Request().Method, "uri", c.Request().RequestURI, "error", err)
		c.Response().Header().Set("Cache-Control", "no-store")
		_ = RenderStatus(c, code, views.ServerError(a.site()))
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
