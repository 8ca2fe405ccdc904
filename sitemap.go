package spacetraveling

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/views"
)

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (a *App) sitemapGenerator() pagecache.Generator {
	return func(ctx context.Context) ([]byte, error) {
		page, err := a.Source.FirstPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("load listing: %w", err)
		}
		return renderSitemap(a.Config.URL, page.Posts)
	}
}

func renderSitemap(base string, posts []content.PostSummary) ([]byte, error) {
	urls := []sitemapURL{
		{Loc: views.BuildURL(base)},
	}
	for _, p := range posts {
		u := sitemapURL{Loc: views.BuildURL(base, "post", p.UID)}
		if p.FirstPublicationDate != nil {
			u.LastMod = p.FirstPublicationDate.UTC().Format("2006-01-02")
		}
		urls = append(urls, u)
	}
	sitemap := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(sitemap); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
