package spacetraveling

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/eringen/spacetraveling/content"
	"github.com/eringen/spacetraveling/pagecache"
	"github.com/eringen/spacetraveling/prismic"
)

const cmsBase = "https://cms.test/api/v2/documents/search"

// fakeSource serves posts from memory and records what it was asked for.
type fakeSource struct {
	mu       sync.Mutex
	first    content.Pagination
	firstErr error
	batches  map[string]content.Pagination
	batchErr error
	posts    map[string]content.PostDetail
	paths    []string
	refs     []string
	calls    map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		batches: map[string]content.Pagination{},
		posts:   map[string]content.PostDetail{},
		calls:   map[string]int{},
	}
}

func (f *fakeSource) record(ctx context.Context, call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[call]++
	if ref := prismic.RefFromContext(ctx); ref != "" {
		f.refs = append(f.refs, ref)
	}
}

func (f *fakeSource) count(call string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[call]
}

func (f *fakeSource) FirstPage(ctx context.Context) (content.Pagination, error) {
	f.record(ctx, "first")
	return f.first, f.firstErr
}

func (f *fakeSource) NextPage(ctx context.Context, cursor string) (content.Pagination, error) {
	f.record(ctx, "next")
	if f.batchErr != nil {
		return content.Pagination{}, f.batchErr
	}
	batch, ok := f.batches[cursor]
	if !ok {
		return content.Pagination{}, errors.New("unknown cursor")
	}
	return batch, nil
}

func (f *fakeSource) CursorAllowed(cursor string) bool {
	return strings.HasPrefix(cursor, "https://cms.test/")
}

func (f *fakeSource) Paths(ctx context.Context) ([]string, error) {
	f.record(ctx, "paths")
	return f.paths, nil
}

func (f *fakeSource) Post(ctx context.Context, uid string) (content.PostDetail, error) {
	f.record(ctx, "post:"+uid)
	p, ok := f.posts[uid]
	if !ok {
		return content.PostDetail{}, prismic.ErrNotFound
	}
	return p, nil
}

func (f *fakeSource) PostByID(ctx context.Context, id string) (content.PostDetail, error) {
	f.record(ctx, "id:"+id)
	for _, p := range f.posts {
		if p.ID == id {
			return p, nil
		}
	}
	return content.PostDetail{}, prismic.ErrNotFound
}

func (f *fakeSource) Neighbors(ctx context.Context, post content.PostDetail) (content.Neighbors, error) {
	return content.Neighbors{}, nil
}

func date(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

// seededSource has two listing batches and two posts.
func seededSource() *fakeSource {
	src := newFakeSource()
	src.first = content.Pagination{
		Posts: []content.PostSummary{
			{UID: "como-utilizar-hooks", FirstPublicationDate: date("2021-03-15T19:25:28Z"), Title: "Como utilizar Hooks", Subtitle: "Pensando em sincronização", Author: "Joseph Oliveira"},
		},
		NextPage: cmsBase + "?page=2",
	}
	src.batches[cmsBase+"?page=2"] = content.Pagination{
		Posts: []content.PostSummary{
			{UID: "criando-um-app-cra-do-zero", FirstPublicationDate: date("2021-03-25T19:25:28Z"), Title: "Criando um app CRA do zero", Subtitle: "Tudo sobre", Author: "Danilo Vieira"},
		},
	}
	src.posts["como-utilizar-hooks"] = content.PostDetail{
		ID: "YFz1", UID: "como-utilizar-hooks", Title: "Como utilizar Hooks", Author: "Joseph Oliveira",
		FirstPublicationDate: date("2021-03-15T19:25:28Z"),
		Content:              []content.ContentBlock{{Heading: "Intro", Body: []content.Paragraph{{Text: "one two three"}}}},
	}
	src.posts["criando-um-app-cra-do-zero"] = content.PostDetail{
		ID: "YFz2", UID: "criando-um-app-cra-do-zero", Title: "Criando um app CRA do zero", Author: "Danilo Vieira",
	}
	src.paths = []string{"como-utilizar-hooks"}
	return src
}

func newTestApp(t *testing.T, src *fakeSource, mutate ...func(*SiteConfig)) *App {
	t.Helper()
	cfg := SiteConfig{
		Name:          "spacetraveling",
		URL:           "https://blog.example.com",
		SessionSecret: "test-secret-test-secret-test-secret",
		WarmSchedule:  "off",
	}
	for _, m := range mutate {
		m(&cfg)
	}
	a := New(cfg,
		WithSource(src),
		WithBackend(pagecache.NewMemoryBackend()),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	if err := a.Init(); err != nil {
		t.Fatalf("init: %v", err)
	}
	a.setupServer()
	t.Cleanup(func() { a.Close() })
	return a
}

func do(a *App, method, target string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}
