package spacetraveling

import (
	"context"
	"fmt"
	"net/url"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/views"
)

// Page cache keys are the routes the pages are served on.
const (
	homeKey    = "/"
	sitemapKey = "/sitemap.xml"
	feedKey    = "/feed.xml"
)

func postKey(uid string) string {
	return content.PostLink(uid)
}

// moreHref is where the load-more control of a page fetches the batch behind
// cursor. An empty cursor has nowhere to go.
func moreHref(cursor string) string {
	if cursor == "" {
		return ""
	}
	return "/posts/more/?cursor=" + url.QueryEscape(cursor)
}

func (a *App) renderHome(ctx context.Context, preview views.Preview) ([]byte, error) {
	page, err := a.Source.FirstPage(ctx)
	if err != nil {
		return nil, fmt.Errorf("load listing: %w", err)
	}
	return renderBytes(ctx, views.Home(a.site(), page, moreHref(page.NextPage), preview))
}

func (a *App) homeGenerator() pagecache.Generator {
	return func(ctx context.Context) ([]byte, error) {
		return a.renderHome(ctx, views.Preview{})
	}
}

func (a *App) renderPost(ctx context.Context, uid string, preview views.Preview) ([]byte, error) {
	post, err := a.Source.Post(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("load post %q: %w", uid, err)
	}
	nav, err := a.Source.Neighbors(ctx, post)
	if err != nil {
		a.Logger.Warn("load post neighbors", "uid", uid, "error", err)
		nav = content.Neighbors{}
	}
	return renderBytes(ctx, views.Post(a.site(), post, nav, preview))
}

func (a *App) postGenerator(uid string) pagecache.Generator {
	return func(ctx context.Context) ([]byte, error) {
		return a.renderPost(ctx, uid, views.Preview{})
	}
}

// Prerender generates the listing and every enumerated post, replacing what
// the cache holds. Any failure is returned.
func (a *App) Prerender(ctx context.Context) error {
	if _, err := a.Cache.Generate(ctx, homeKey, a.Config.ListingTTL, a.homeGenerator()); err != nil {
		return err
	}
	uids, err := a.Source.Paths(ctx)
	if err != nil {
		return fmt.Errorf("enumerate posts: %w", err)
	}
	for _, uid := range uids {
		if _, err := a.Cache.Generate(ctx, postKey(uid), a.Config.PostTTL, a.postGenerator(uid)); err != nil {
			return err
		}
	}
	a.Logger.Info("pages prerendered", "posts", len(uids))
	return nil
}
