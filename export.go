package spacetraveling

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/views"
)

// ExportResult summarizes a static export.
type ExportResult struct {
	Posts   int // post pages written
	Batches int // load-more fragments written
}

// exportMoreHref is the static location of the n-th load-more fragment.
func exportMoreHref(n int) string {
	return "/posts/more/" + strconv.Itoa(n) + "/"
}

// Export writes the site to dir for static hosting: the listing, every
// load-more fragment, the enumerated posts (every listed post when all is
// set), the error page, feeds and public assets. Generated pages also go
// through the page cache. Any fetch failure aborts the export.
func (a *App) Export(ctx context.Context, dir string, all bool) (ExportResult, error) {
	var res ExportResult
	if err := a.Init(); err != nil {
		return res, err
	}
	site := a.site()

	page, err := a.Source.FirstPage(ctx)
	if err != nil {
		return res, fmt.Errorf("load listing: %w", err)
	}
	listed := append([]content.PostSummary(nil), page.Posts...)

	next := ""
	if page.HasMore() {
		next = exportMoreHref(1)
	}
	home, err := renderBytes(ctx, views.Home(site, page, next, views.Preview{}))
	if err != nil {
		return res, err
	}
	if err := writeExport(dir, "index.html", home); err != nil {
		return res, err
	}

	visited := make(map[string]bool)
	for cursor, n := page.NextPage, 1; cursor != ""; n++ {
		if visited[cursor] {
			return res, fmt.Errorf("load batch %d: cursor %q repeats", n, cursor)
		}
		visited[cursor] = true
		batch, err := a.Source.NextPage(ctx, cursor)
		if err != nil {
			return res, fmt.Errorf("load batch %d: %w", n, err)
		}
		listed = append(listed, batch.Posts...)
		next := ""
		if batch.HasMore() {
			next = exportMoreHref(n + 1)
		}
		body, err := renderBytes(ctx, views.PostBatch(a.locale, batch, next))
		if err != nil {
			return res, err
		}
		if err := writeExport(dir, filepath.Join("posts", "more", strconv.Itoa(n), "index.html"), body); err != nil {
			return res, err
		}
		res.Batches++
		cursor = batch.NextPage
	}

	uids, err := a.Source.Paths(ctx)
	if err != nil {
		return res, fmt.Errorf("enumerate posts: %w", err)
	}
	if all {
		for _, p := range listed {
			uids = append(uids, p.UID)
		}
	}
	seen := make(map[string]bool, len(uids))
	for _, uid := range uids {
		if uid == "" || seen[uid] {
			continue
		}
		seen[uid] = true
		if !safePathSegment(uid) {
			return res, fmt.Errorf("post uid %q is not a valid path segment", uid)
		}
		body, err := a.Cache.Generate(ctx, postKey(uid), a.Config.PostTTL, a.postGenerator(uid))
		if err != nil {
			return res, err
		}
		if err := writeExport(dir, filepath.Join("post", uid, "index.html"), body); err != nil {
			return res, err
		}
		res.Posts++
	}

	notFound, err := renderBytes(ctx, views.NotFound(site))
	if err != nil {
		return res, err
	}
	sitemap, err := renderSitemap(a.Config.URL, page.Posts)
	if err != nil {
		return res, err
	}
	feed, err := a.renderRSS(page.Posts)
	if err != nil {
		return res, err
	}
	for name, body := range map[string][]byte{
		"404.html":    notFound,
		"sitemap.xml": sitemap,
		"feed.xml":    feed,
		"robots.txt":  []byte(robotsTxt(a.Config.URL)),
	} {
		if err := writeExport(dir, name, body); err != nil {
			return res, err
		}
	}

	if err := exportAssets(dir); err != nil {
		return res, err
	}
	a.Logger.Info("site exported", "dir", dir, "posts", res.Posts, "batches", res.Batches)
	return res, nil
}

func safePathSegment(s string) bool {
	return s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}

func writeExport(dir, name string, body []byte) error {
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, body, 0o644)
}

func exportAssets(dir string) error {
	return fs.WalkDir(EmbeddedAssets, "embedded", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		body, err := EmbeddedAssets.ReadFile(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel("embedded", p)
		if err != nil {
			return err
		}
		return writeExport(dir, filepath.Join("public", rel), body)
	})
}
