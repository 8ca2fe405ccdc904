package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/i18n"
)

// Home renders the listing page. moreHref is where the load-more control
// fetches the next batch; it is ignored when page has no more posts.
func Home(cfg SiteConfig, page content.Pagination, moreHref string, preview Preview) templ.Component {
	loc := cfg.locale()
	meta := PageMeta{
		Title:       loc.T(i18n.HomeTitle),
		Description: cfg.Description,
		URL:         BuildURL(cfg.URL),
		OGType:      "website",
		JSONLD:      WebsiteJsonLD(cfg),
	}
	body := component(func(h *htmlWriter) {
		h.raw(`<div class="posts" data-posts>`)
		h.render(PostCards(loc, page.Posts))
		h.raw(`</div>`)
		if page.HasMore() {
			h.render(LoadMore(loc, moreHref))
		}
	})
	return Layout(cfg, meta, preview, body)
}

// PostCards renders one card per post, in order.
func PostCards(loc *i18n.Locale, posts []content.PostSummary) templ.Component {
	return component(func(h *htmlWriter) {
		for _, p := range posts {
			h.raw(`<a class="post-card"`)
			h.href(p.Link())
			h.raw(`><strong class="post-title">`)
			h.text(p.Title)
			h.raw(`</strong><p class="post-subtitle">`)
			h.text(p.Subtitle)
			h.raw(`</p><div class="info">`)
			if p.FirstPublicationDate != nil {
				h.raw(`<time`)
				h.attr("datetime", p.FirstPublicationDate.UTC().Format("2006-01-02"))
				h.raw(`>` + iconCalendar)
				h.text(loc.FormatDate(*p.FirstPublicationDate))
				h.raw(`</time>`)
			}
			h.raw(`<span class="author">` + iconUser)
			h.text(p.Author)
			h.raw(`</span></div></a>`)
		}
	})
}

// LoadMore renders the control that fetches the next batch from href.
func LoadMore(loc *i18n.Locale, href string) templ.Component {
	return component(func(h *htmlWriter) {
		if href == "" {
			return
		}
		h.raw(`<a id="load-more" class="load-more" data-load-more`)
		h.href(href)
		h.raw(`>`)
		h.text(loc.T(i18n.LoadMore))
		h.raw(`</a>`)
	})
}

// PostBatch is the fragment answered to a load-more request: the next cards
// and, if another batch follows, a fresh control pointing at it.
func PostBatch(loc *i18n.Locale, batch content.Pagination, nextHref string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<div data-batch>`)
		h.render(PostCards(loc, batch.Posts))
		h.raw(`</div>`)
		if batch.HasMore() {
			h.render(LoadMore(loc, nextHref))
		}
	})
}
