package views

import "github.com/eringen/spacetraveling/i18n"

// SiteConfig holds site-wide settings populated from environment variables.
// Every page receives it so nothing is hardcoded.
type SiteConfig struct {
	Name        string // SITE_NAME
	URL         string // SITE_URL
	Description string // SITE_DESCRIPTION
	Author      string // SITE_AUTHOR
	Locale      *i18n.Locale
}

func (c SiteConfig) locale() *i18n.Locale {
	if c.Locale == nil {
		return i18n.Default()
	}
	return c.Locale
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head>.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string // og:image
	JSONLD      string
	NoIndex     bool
}

// Preview describes the CMS preview session of the current request.
type Preview struct {
	Active    bool
	CSRFToken string
}
