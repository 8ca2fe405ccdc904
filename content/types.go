// Package content holds the blog's domain model: post summaries for the
// listing, full posts, pagination state and reading time. Posts come from a
// Source, normally the Prismic repository.
package content

import (
	"encoding/json"
	"net/url"
	"time"
)

const (
	// DocumentType is the Prismic custom type of blog posts.
	DocumentType = "posts"
	// PageSize is the listing batch size.
	PageSize = 20
	// PathsPageSize is how many posts are pre-rendered ahead of requests.
	PathsPageSize = 2
)

// PostSummary is one card of the listing.
type PostSummary struct {
	UID                  string     `json:"uid"`
	FirstPublicationDate *time.Time `json:"first_publication_date"`
	Title                string     `json:"title"`
	Subtitle             string     `json:"subtitle"`
	Author               string     `json:"author"`
}

// Link returns the route of the post page.
func (p PostSummary) Link() string {
	return PostLink(p.UID)
}

// PostLink returns the route of the post page for uid.
func PostLink(uid string) string {
	return "/post/" + url.PathEscape(uid) + "/"
}

// PostDetail is a full post.
type PostDetail struct {
	ID                   string
	UID                  string
	FirstPublicationDate *time.Time
	LastPublicationDate  *time.Time
	Title                string
	BannerURL            string
	Author               string
	Content              []ContentBlock
}

// Link returns the route of the post page.
func (p PostDetail) Link() string {
	return PostLink(p.UID)
}

// Edited reports whether the post was republished after its first
// publication.
func (p PostDetail) Edited() bool {
	if p.FirstPublicationDate == nil || p.LastPublicationDate == nil {
		return false
	}
	return p.LastPublicationDate.After(*p.FirstPublicationDate)
}

// Summary returns the listing view of the post.
func (p PostDetail) Summary() PostSummary {
	return PostSummary{
		UID:                  p.UID,
		FirstPublicationDate: p.FirstPublicationDate,
		Title:                p.Title,
		Author:               p.Author,
	}
}

// ContentBlock is a section of a post: a heading followed by paragraphs.
// Headings are not unique, so renderers key blocks by position.
type ContentBlock struct {
	Heading string      `json:"heading"`
	Body    []Paragraph `json:"body"`
}

// Paragraph is one rich-text paragraph.
type Paragraph struct {
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
}

// Span types.
const (
	SpanStrong    = "strong"
	SpanEm        = "em"
	SpanHyperlink = "hyperlink"
)

// Span is inline formatting over Paragraph.Text; Start and End count UTF-16
// code units as Prismic reports them, End exclusive.
type Span struct {
	Start int    `json:"start"`
	End   int    `json:"end"`
	Type  string `json:"type"`
	URL   string `json:"url,omitempty"`
}

// Neighbors are the posts published right before and after a post.
type Neighbors struct {
	Prev *PostSummary
	Next *PostSummary
}

// Pagination is the listing state: posts loaded so far and the cursor of the
// next batch. An empty NextPage means there are no more pages.
type Pagination struct {
	Posts    []PostSummary
	NextPage string
}

// HasMore reports whether another batch can be loaded.
func (p Pagination) HasMore() bool {
	return p.NextPage != ""
}

// Append adds batch's posts after the current ones, in order and without
// deduplication, and takes over batch's cursor.
func (p *Pagination) Append(batch Pagination) {
	p.Posts = append(p.Posts, batch.Posts...)
	p.NextPage = batch.NextPage
}

type paginationJSON struct {
	Results  []PostSummary `json:"results"`
	NextPage *string       `json:"next_page"`
}

// MarshalJSON writes {results, next_page} with next_page null on the last
// page.
func (p Pagination) MarshalJSON() ([]byte, error) {
	out := paginationJSON{Results: p.Posts}
	if out.Results == nil {
		out.Results = []PostSummary{}
	}
	if p.HasMore() {
		next := p.NextPage
		out.NextPage = &next
	}
	return json.Marshal(out)
}

// UnmarshalJSON accepts next_page as a string, null or missing.
func (p *Pagination) UnmarshalJSON(b []byte) error {
	var in paginationJSON
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	p.Posts = in.Results
	p.NextPage = ""
	if in.NextPage != nil {
		p.NextPage = *in.NextPage
	}
	return nil
}
