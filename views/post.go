package views

import (
	"strconv"

	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/i18n"
)

// Post renders a post page with its reading time and neighbor navigation.
func Post(cfg SiteConfig, post content.PostDetail, nav content.Neighbors, preview Preview) templ.Component {
	loc := cfg.locale()
	meta := PageMeta{
		Title:  post.Title,
		URL:    BuildURL(cfg.URL, "post", post.UID),
		OGType: "article",
		Image:  post.BannerURL,
		JSONLD: BlogPostingJsonLD(cfg, post),
	}
	if len(post.Content) > 0 && len(post.Content[0].Body) > 0 {
		meta.Description = post.Content[0].Body[0].Text
	}
	body := component(func(h *htmlWriter) {
		if post.BannerURL != "" {
			h.raw(`<img class="banner" alt="banner"`)
			h.attr("src", post.BannerURL)
			h.raw(`/>`)
		}
		h.raw(`<article class="post"><h1>`)
		h.text(post.Title)
		h.raw(`</h1><div class="info">`)
		if post.FirstPublicationDate != nil {
			h.raw(`<time>` + iconCalendar)
			h.text(loc.FormatDate(*post.FirstPublicationDate))
			h.raw(`</time>`)
		}
		h.raw(`<span class="author">` + iconUser)
		h.text(post.Author)
		h.raw(`</span><span class="reading-time">` + iconClock)
		h.text(strconv.Itoa(content.ReadingTime(post.Content)) + " " + loc.T(i18n.Minutes))
		h.raw(`</span></div>`)
		if post.Edited() {
			h.raw(`<p class="edited">`)
			h.text(loc.Tf(i18n.EditedAt, loc.FormatDateTime(*post.LastPublicationDate)))
			h.raw(`</p>`)
		}
		for i, block := range post.Content {
			h.raw(`<section class="post-section"`)
			h.attr("id", "section-"+strconv.Itoa(i))
			h.raw(`><h2>`)
			h.text(block.Heading)
			h.raw(`</h2><div class="post-body">`)
			for _, p := range block.Body {
				h.render(RichText(p))
			}
			h.raw(`</div></section>`)
		}
		h.raw(`</article>`)
		h.render(postNav(loc, nav))
	})
	return Layout(cfg, meta, preview, body)
}

func postNav(loc *i18n.Locale, nav content.Neighbors) templ.Component {
	return component(func(h *htmlWriter) {
		if nav.Prev == nil && nav.Next == nil {
			return
		}
		h.raw(`<nav class="post-nav">`)
		if nav.Prev != nil {
			h.raw(`<a class="prev" rel="prev"`)
			h.href(nav.Prev.Link())
			h.raw(`><span>`)
			h.text(nav.Prev.Title)
			h.raw(`</span><small>`)
			h.text(loc.T(i18n.PrevPost))
			h.raw(`</small></a>`)
		}
		if nav.Next != nil {
			h.raw(`<a class="next" rel="next"`)
			h.href(nav.Next.Link())
			h.raw(`><span>`)
			h.text(nav.Next.Title)
			h.raw(`</span><small>`)
			h.text(loc.T(i18n.NextPost))
			h.raw(`</small></a>`)
		}
		h.raw(`</nav>`)
	})
}

// Loading is the placeholder served while a post is generated for the first
// time. site.js re-requests the page and swaps it in once it is ready.
func Loading(cfg SiteConfig) templ.Component {
	loc := cfg.locale()
	meta := PageMeta{Title: loc.T(i18n.Loading), NoIndex: true}
	body := component(func(h *htmlWriter) {
		h.raw(`<div class="loading" data-fallback>`)
		h.text(loc.T(i18n.Loading))
		h.raw(`</div><noscript><meta http-equiv="refresh" content="2"/></noscript>`)
	})
	return Layout(cfg, meta, Preview{}, body)
}
