package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/i18n"
)

// Header renders the site logo linking back to the listing.
func Header() templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<header class="header"><div class="container"><a href="/" aria-label="Home">`)
		h.raw(`<img src="/public/logo.svg" alt="logo" width="239" height="27"/>`)
		h.raw(`</a></div></header>`)
	})
}

// Layout wraps body in the document shell shared by every page.
func Layout(cfg SiteConfig, meta PageMeta, preview Preview, body templ.Component) templ.Component {
	loc := cfg.locale()
	return component(func(h *htmlWriter) {
		h.raw(`<!DOCTYPE html><html`)
		h.attr("lang", loc.Lang())
		h.raw(`><head><meta charset="utf-8"/>`)
		h.raw(`<meta name="viewport" content="width=device-width, initial-scale=1"/>`)
		h.raw(`<title>`)
		h.text(pageTitle(cfg, meta))
		h.raw(`</title>`)
		if meta.Description != "" {
			h.raw(`<meta name="description"`)
			h.attr("content", meta.Description)
			h.raw(`/>`)
		}
		if meta.NoIndex || preview.Active {
			h.raw(`<meta name="robots" content="noindex"/>`)
		}
		if meta.URL != "" {
			h.raw(`<link rel="canonical"`)
			h.href(meta.URL)
			h.raw(`/><meta property="og:url"`)
			h.attr("content", meta.URL)
			h.raw(`/>`)
		}
		h.raw(`<meta property="og:title"`)
		h.attr("content", pageTitle(cfg, meta))
		h.raw(`/><meta property="og:site_name"`)
		h.attr("content", cfg.Name)
		h.raw(`/>`)
		if meta.OGType != "" {
			h.raw(`<meta property="og:type"`)
			h.attr("content", meta.OGType)
			h.raw(`/>`)
		}
		if meta.Image != "" {
			h.raw(`<meta property="og:image"`)
			h.attr("content", meta.Image)
			h.raw(`/>`)
		}
		h.raw(`<link rel="icon" type="image/svg+xml" href="/public/logo.svg"/>`)
		h.raw(`<link rel="alternate" type="application/rss+xml" href="/feed.xml"`)
		h.attr("title", cfg.Name)
		h.raw(`/><link rel="stylesheet" href="/public/styles.css"/>`)
		if meta.JSONLD != "" {
			// json.Marshal escapes <, > and & so the block cannot close the script.
			h.raw(`<script type="application/ld+json">`)
			h.raw(meta.JSONLD)
			h.raw(`</script>`)
		}
		h.raw(`<script src="/public/site.js" defer></script></head><body>`)
		h.render(Header())
		if preview.Active {
			h.render(exitPreview(loc, preview.CSRFToken))
		}
		h.raw(`<main class="container">`)
		h.render(body)
		h.raw(`</main></body></html>`)
	})
}

func pageTitle(cfg SiteConfig, meta PageMeta) string {
	if meta.Title == "" {
		return cfg.Name
	}
	if cfg.Name == "" {
		return meta.Title
	}
	return meta.Title + " | " + cfg.Name
}

func exitPreview(loc *i18n.Locale, csrfToken string) templ.Component {
	return component(func(h *htmlWriter) {
		h.raw(`<aside class="preview"><form method="post" action="/api/exit-preview/">`)
		h.raw(`<input type="hidden" name="_csrf"`)
		h.attr("value", csrfToken)
		h.raw(`/><button type="submit">`)
		h.text(loc.T(i18n.ExitPreview))
		h.raw(`</button></form></aside>`)
	})
}
