package views

import (
	"github.com/a-h/templ"

	"github.com/eringen/spacetraveling/i18n"
)

func NotFound(cfg SiteConfig) templ.Component {
	return errorPage(cfg, "404", i18n.NotFound)
}

func ServerError(cfg SiteConfig) templ.Component {
	return errorPage(cfg, "500", i18n.ServerError)
}

func errorPage(cfg SiteConfig, code, key string) templ.Component {
	loc := cfg.locale()
	meta := PageMeta{Title: loc.T(key), NoIndex: true}
	body := component(func(h *htmlWriter) {
		h.raw(`<section class="error-page"><h1>`)
		h.text(code)
		h.raw(`</h1><p>`)
		h.text(loc.T(key))
		h.raw(`</p><a href="/">`)
		h.text(loc.T(i18n.BackHome))
		h.raw(`</a></section>`)
	})
	return Layout(cfg, meta, Preview{}, body)
}
