package content

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/spacetraveling/prismic"
)

var summaryFields = []string{
	DocumentType + ".title",
	DocumentType + ".subtitle",
	DocumentType + ".author",
}

// PrismicSource reads posts from a Prismic repository.
type PrismicSource struct {
	client *prismic.Client
}

// NewPrismicSource returns a Source backed by client.
func NewPrismicSource(client *prismic.Client) *PrismicSource {
	return &PrismicSource{client: client}
}

func postsPredicate() []prismic.Predicate {
	return []prismic.Predicate{prismic.At("document.type", DocumentType)}
}

// FirstPage queries the first PageSize posts in the repository's default order.
func (s *PrismicSource) FirstPage(ctx context.Context) (Pagination, error) {
	resp, err := s.client.Query(ctx, postsPredicate(), prismic.QueryOptions{
		Fetch:    summaryFields,
		PageSize: PageSize,
	})
	if err != nil {
		return Pagination{}, err
	}
	return paginationFrom(resp)
}

// NextPage fetches the cursor URL.
func (s *PrismicSource) NextPage(ctx context.Context, cursor string) (Pagination, error) {
	resp, err := s.client.FetchPage(ctx, cursor)
	if err != nil {
		return Pagination{}, err
	}
	return paginationFrom(resp)
}

// CursorAllowed reports whether cursor points at the repository.
func (s *PrismicSource) CursorAllowed(cursor string) bool {
	return s.client.OwnsURL(cursor)
}

// Paths returns the uids of the first PathsPageSize posts.
func (s *PrismicSource) Paths(ctx context.Context) ([]string, error) {
	resp, err := s.client.Query(ctx, postsPredicate(), prismic.QueryOptions{
		Fetch:    []string{},
		PageSize: PathsPageSize,
	})
	if err != nil {
		return nil, err
	}
	uids := make([]string, 0, len(resp.Results))
	for _, doc := range resp.Results {
		if doc.UID != "" {
			uids = append(uids, doc.UID)
		}
	}
	return uids, nil
}

// Post fetches a post by uid. A missing post yields prismic.ErrNotFound.
func (s *PrismicSource) Post(ctx context.Context, uid string) (PostDetail, error) {
	doc, err := s.client.GetByUID(ctx, DocumentType, uid, prismic.QueryOptions{})
	if err != nil {
		return PostDetail{}, err
	}
	return postFrom(doc)
}

// PostByID fetches a post by document id.
func (s *PrismicSource) PostByID(ctx context.Context, id string) (PostDetail, error) {
	doc, err := s.client.GetByID(ctx, id, prismic.QueryOptions{})
	if err != nil {
		return PostDetail{}, err
	}
	if doc.Type != DocumentType {
		return PostDetail{}, fmt.Errorf("document %q is a %q, not a post: %w", id, doc.Type, prismic.ErrNotFound)
	}
	return postFrom(doc)
}

// Neighbors looks up the posts published right before and after post.
func (s *PrismicSource) Neighbors(ctx context.Context, post PostDetail) (Neighbors, error) {
	var n Neighbors
	var err error
	if n.Prev, err = s.neighbor(ctx, post.ID, "document.first_publication_date desc"); err != nil {
		return Neighbors{}, err
	}
	if n.Next, err = s.neighbor(ctx, post.ID, "document.first_publication_date"); err != nil {
		return Neighbors{}, err
	}
	return n, nil
}

func (s *PrismicSource) neighbor(ctx context.Context, id, ordering string) (*PostSummary, error) {
	doc, err := s.client.QueryFirst(ctx, postsPredicate(), prismic.QueryOptions{
		Fetch:     []string{DocumentType + ".title"},
		Orderings: []string{ordering},
		After:     id,
	})
	if errors.Is(err, prismic.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	summary, err := summaryFrom(*doc)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

type summaryData struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Author   string `json:"author"`
}

type postData struct {
	Title  string `json:"title"`
	Author string `json:"author"`
	Banner struct {
		URL string `json:"url"`
	} `json:"banner"`
	Content []struct {
		Heading string `json:"heading"`
		Body    []struct {
			Text  string `json:"text"`
			Spans []struct {
				Start int    `json:"start"`
				End   int    `json:"end"`
				Type  string `json:"type"`
				Data  struct {
					URL string `json:"url"`
				} `json:"data"`
			} `json:"spans"`
		} `json:"body"`
	} `json:"content"`
}

func paginationFrom(resp *prismic.Response) (Pagination, error) {
	posts := make([]PostSummary, 0, len(resp.Results))
	for _, doc := range resp.Results {
		p, err := summaryFrom(doc)
		if err != nil {
			return Pagination{}, err
		}
		posts = append(posts, p)
	}
	return Pagination{Posts: posts, NextPage: resp.NextPage}, nil
}

func summaryFrom(doc prismic.Document) (PostSummary, error) {
	var data summaryData
	if err := doc.DecodeData(&data); err != nil {
		return PostSummary{}, err
	}
	return PostSummary{
		UID:                  doc.UID,
		FirstPublicationDate: doc.FirstPublicationDate.Ptr(),
		Title:                data.Title,
		Subtitle:             data.Subtitle,
		Author:               data.Author,
	}, nil
}

func postFrom(doc *prismic.Document) (PostDetail, error) {
	var data postData
	if err := doc.DecodeData(&data); err != nil {
		return PostDetail{}, err
	}
	post := PostDetail{
		ID:                   doc.ID,
		UID:                  doc.UID,
		FirstPublicationDate: doc.FirstPublicationDate.Ptr(),
		LastPublicationDate:  doc.LastPublicationDate.Ptr(),
		Title:                data.Title,
		BannerURL:            data.Banner.URL,
		Author:               data.Author,
		Content:              make([]ContentBlock, 0, len(data.Content)),
	}
	for _, c := range data.Content {
		block := ContentBlock{Heading: c.Heading, Body: make([]Paragraph, 0, len(c.Body))}
		for _, b := range c.Body {
			p := Paragraph{Text: b.Text}
			for _, sp := range b.Spans {
				p.Spans = append(p.Spans, Span{Start: sp.Start, End: sp.End, Type: sp.Type, URL: sp.Data.URL})
			}
			block.Body = append(block.Body, p)
		}
		post.Content = append(post.Content, block)
	}
	return post, nil
}
