package views

import (
	"context"
	"html"
	"io"
	"net/url"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"

	"github.com/eringen/spacetraveling/content"
)

// richTextPolicy is the last line between CMS markup and the page.
var richTextPolicy = func() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "strong", "em", "br")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto", "tel")
	p.AllowRelativeURLs(true)
	p.RequireNoReferrerOnFullyQualifiedLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}()

// RichText renders a paragraph with its spans applied.
func RichText(p content.Paragraph) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, renderParagraph(p))
		return err
	})
}

func renderParagraph(p content.Paragraph) string {
	var buf strings.Builder
	buf.WriteString("<p>")
	writeSpans(&buf, p)
	buf.WriteString("</p>")
	return richTextPolicy.Sanitize(buf.String())
}

// writeSpans cuts the text at every span boundary and wraps each segment in
// the spans covering it, so overlapping spans still nest correctly. Span
// offsets count UTF-16 code units.
func writeSpans(buf *strings.Builder, p content.Paragraph) {
	text := utf16.Encode([]rune(p.Text))
	spans := make([]content.Span, 0, len(p.Spans))
	cuts := []int{0, len(text)}
	for _, s := range p.Spans {
		s.Start = max(s.Start, 0)
		s.End = min(s.End, len(text))
		if s.Start >= s.End || !knownSpan(s.Type) {
			continue
		}
		spans = append(spans, s)
		cuts = append(cuts, s.Start, s.End)
	}
	sort.Ints(cuts)

	for i := 1; i < len(cuts); i++ {
		from, to := cuts[i-1], cuts[i]
		if from == to {
			continue
		}
		var active []content.Span
		for _, s := range spans {
			if s.Start <= from && s.End >= to {
				active = append(active, s)
			}
		}
		for _, s := range active {
			buf.WriteString(openTag(s))
		}
		writeText(buf, string(utf16.Decode(text[from:to])))
		for j := len(active) - 1; j >= 0; j-- {
			buf.WriteString(closeTag(active[j]))
		}
	}
}

func writeText(buf *strings.Builder, s string) {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if i > 0 {
			buf.WriteString("<br/>")
		}
		buf.WriteString(html.EscapeString(line))
	}
}

func knownSpan(t string) bool {
	switch t {
	case content.SpanStrong, content.SpanEm, content.SpanHyperlink:
		return true
	}
	return false
}

func openTag(s content.Span) string {
	switch s.Type {
	case content.SpanStrong:
		return "<strong>"
	case content.SpanEm:
		return "<em>"
	default:
		href := safeURL(s.URL)
		if href == "" {
			return "<a>"
		}
		return `<a href="` + href + `">`
	}
}

func closeTag(s content.Span) string {
	switch s.Type {
	case content.SpanStrong:
		return "</strong>"
	case content.SpanEm:
		return "</em>"
	default:
		return "</a>"
	}
}

func safeURL(raw string) string {
	val := strings.TrimSpace(raw)
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
