package prismic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Predicate is one clause of a Prismic query, e.g. [at(document.type,"posts")].
type Predicate string

// At matches documents whose path equals value.
func At(path, value string) Predicate {
	return Predicate(fmt.Sprintf("[at(%s,%s)]", path, strconv.Quote(value)))
}

// QueryOptions are the request parameters of a search.
type QueryOptions struct {
	// Fetch restricts the returned data fields ("posts.title"). A nil slice
	// returns every field; a non-nil empty slice is sent as an empty list.
	Fetch     []string
	PageSize  int
	Page      int
	Orderings []string // e.g. "document.first_publication_date desc"
	After     string   // document id to start after
}

func (o QueryOptions) values(ref string, predicates []Predicate) url.Values {
	v := url.Values{}
	v.Set("ref", ref)
	if len(predicates) > 0 {
		parts := make([]string, len(predicates))
		for i, p := range predicates {
			parts[i] = string(p)
		}
		v.Set("q", "["+strings.Join(parts, "")+"]")
	}
	if o.Fetch != nil {
		v.Set("fetch", strings.Join(o.Fetch, ","))
	}
	if o.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(o.PageSize))
	}
	if o.Page > 0 {
		v.Set("page", strconv.Itoa(o.Page))
	}
	if len(o.Orderings) > 0 {
		v.Set("orderings", "["+strings.Join(o.Orderings, ",")+"]")
	}
	if o.After != "" {
		v.Set("after", o.After)
	}
	return v
}

// Response is one page of search results. NextPage is empty on the last page;
// the API's null decodes to the empty string.
type Response struct {
	Page             int        `json:"page"`
	ResultsPerPage   int        `json:"results_per_page"`
	ResultsSize      int        `json:"results_size"`
	TotalResultsSize int        `json:"total_results_size"`
	TotalPages       int        `json:"total_pages"`
	NextPage         string     `json:"next_page"`
	PrevPage         string     `json:"prev_page"`
	Results          []Document `json:"results"`
}

// Document is a Prismic document. Data holds the custom type's fields and is
// decoded by the caller.
type Document struct {
	ID                   string          `json:"id"`
	UID                  string          `json:"uid"`
	Type                 string          `json:"type"`
	Href                 string          `json:"href"`
	Tags                 []string        `json:"tags"`
	Lang                 string          `json:"lang"`
	FirstPublicationDate Timestamp       `json:"first_publication_date"`
	LastPublicationDate  Timestamp       `json:"last_publication_date"`
	Data                 json.RawMessage `json:"data"`
}

// DecodeData unmarshals the document's data into v.
func (d Document) DecodeData(v any) error {
	if len(d.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(d.Data, v); err != nil {
		return fmt.Errorf("prismic: decode data of %s %q: %w", d.Type, d.ID, err)
	}
	return nil
}

// Timestamp is a nullable publication date. Prismic writes offsets without a
// colon ("2021-03-25T19:25:28+0000").
type Timestamp struct {
	Time  time.Time
	Valid bool
}

var timestampLayouts = []string{
	"2006-01-02T15:04:05-0700",
	time.RFC3339,
	time.RFC3339Nano,
}

// UnmarshalJSON accepts null, Prismic's layout and RFC 3339.
func (t *Timestamp) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*t = Timestamp{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	if s == "" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			*t = Timestamp{Time: parsed, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("prismic: invalid timestamp %q", s)
}

// MarshalJSON writes null for an invalid timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if !t.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339))
}

// Ptr returns the time or nil when the timestamp is null.
func (t Timestamp) Ptr() *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

type refKey struct{}

// WithRef returns a context whose queries run against ref instead of the
// master ref. Used for previews.
func WithRef(ctx context.Context, ref string) context.Context {
	return context.WithValue(ctx, refKey{}, ref)
}

// RefFromContext returns the ref set by WithRef, if any.
func RefFromContext(ctx context.Context) string {
	ref, _ := ctx.Value(refKey{}).(string)
	return ref
}
