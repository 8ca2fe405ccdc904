package spacetraveling

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/eringen/spacetraveling/prismic"
	"github.com/eringen/spacetraveling/views"
)

const (
	previewSession = "preview_session"
	previewRefKey  = "ref"
)

// previewRef returns the CMS ref stored by handlePreview, if any.
func previewRef(c echo.Context) string {
	sess, err := session.Get(previewSession, c)
	if err != nil {
		return ""
	}
	ref, _ := sess.Values[previewRefKey].(string)
	return ref
}

func (a *App) preview(c echo.Context) views.Preview {
	if previewRef(c) == "" {
		return views.Preview{}
	}
	return views.Preview{Active: true, CSRFToken: CsrfToken(c)}
}

// previewContext is the request context, carrying the preview ref when the
// session has one.
func (a *App) previewContext(c echo.Context) context.Context {
	ctx := c.Request().Context()
	if ref := previewRef(c); ref != "" {
		return prismic.WithRef(ctx, ref)
	}
	return ctx
}

// handlePreview starts a preview session for the ref in token and redirects
// to the previewed document.
func (a *App) handlePreview(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		return c.String(http.StatusBadRequest, "missing preview token")
	}
	// A cookie that no longer decodes still yields a fresh session.
	sess, err := session.Get(previewSession, c)
	if sess == nil {
		return err
	}
	sess.Values[previewRefKey] = token
	sess.Options.MaxAge = 60 * 60
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}

	target := "/"
	if id := c.QueryParam("documentId"); id != "" {
		ctx := prismic.WithRef(c.Request().Context(), token)
		post, err := a.Source.PostByID(ctx, id)
		switch {
		case err == nil:
			target = post.Link()
		case !errors.Is(err, prismic.ErrNotFound):
			return err
		}
	}
	c.Response().Header().Set("Cache-Control", "no-store")
	return c.Redirect(http.StatusTemporaryRedirect, target)
}

func (a *App) handleExitPreview(c echo.Context) error {
	sess, err := session.Get(previewSession, c)
	if sess == nil {
		return err
	}
	delete(sess.Values, previewRefKey)
	sess.Options.MaxAge = -1
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/")
}
