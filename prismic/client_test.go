package prismic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	srv       *httptest.Server
	rootHits  atomic.Int32
	lastQuery url.Values
	search    func(w http.ResponseWriter, q url.Values)
}

func newFakeRepo(t *testing.T) *fakeRepo {
	t.Helper()
	f := &fakeRepo{}
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v2", func(w http.ResponseWriter, r *http.Request) {
		f.rootHits.Add(1)
		_ = json.NewEncoder(w).Encode(apiRoot{Refs: []Ref{
			{ID: "release", Ref: "release-ref"},
			{ID: "master", Ref: "master-ref", IsMasterRef: true},
		}})
	})
	mux.HandleFunc("/api/v2/documents/search", func(w http.ResponseWriter, r *http.Request) {
		f.lastQuery = r.URL.Query()
		if f.search != nil {
			f.search(w, r.URL.Query())
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[],"next_page":null}`))
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeRepo) client(t *testing.T, opts Options) *Client {
	t.Helper()
	c, err := New(f.srv.URL+"/api/v2", opts)
	require.NoError(t, err)
	return c
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	_, err := New("/api/v2", Options{})
	assert.Error(t, err)
	_, err = New("ftp://repo.prismic.io/api/v2", Options{})
	assert.Error(t, err)
}

func TestQueryEncodesParameters(t *testing.T) {
	f := newFakeRepo(t)
	c := f.client(t, Options{AccessToken: "secret"})

	_, err := c.Query(context.Background(), []Predicate{At("document.type", "posts")}, QueryOptions{
		Fetch:     []string{"posts.title", "posts.subtitle", "posts.author"},
		PageSize:  20,
		Orderings: []string{"document.first_publication_date desc"},
		After:     "abc",
	})
	require.NoError(t, err)

	q := f.lastQuery
	assert.Equal(t, "master-ref", q.Get("ref"))
	assert.Equal(t, `[[at(document.type,"posts")]]`, q.Get("q"))
	assert.Equal(t, "posts.title,posts.subtitle,posts.author", q.Get("fetch"))
	assert.Equal(t, "20", q.Get("pageSize"))
	assert.Equal(t, "[document.first_publication_date desc]", q.Get("orderings"))
	assert.Equal(t, "abc", q.Get("after"))
	assert.Equal(t, "secret", q.Get("access_token"))
}

func TestQueryEmptyFetchIsSent(t *testing.T) {
	f := newFakeRepo(t)
	c := f.client(t, Options{})

	_, err := c.Query(context.Background(), nil, QueryOptions{Fetch: []string{}, PageSize: 2})
	require.NoError(t, err)
	_, present := f.lastQuery["fetch"]
	assert.True(t, present, "empty fetch list should still be sent")

	_, err = c.Query(context.Background(), nil, QueryOptions{PageSize: 2})
	require.NoError(t, err)
	_, present = f.lastQuery["fetch"]
	assert.False(t, present, "nil fetch list should be omitted")
}

func TestMasterRefIsMemoized(t *testing.T) {
	f := newFakeRepo(t)
	c := f.client(t, Options{RefTTL: time.Minute})

	for i := 0; i < 3; i++ {
		_, err := c.Query(context.Background(), nil, QueryOptions{})
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), f.rootHits.Load())
}

func TestWithRefOverridesMaster(t *testing.T) {
	f := newFakeRepo(t)
	c := f.client(t, Options{})

	ctx := WithRef(context.Background(), "preview-ref")
	_, err := c.Query(ctx, nil, QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "preview-ref", f.lastQuery.Get("ref"))
	assert.Equal(t, int32(0), f.rootHits.Load())
}

func TestGetByUIDNotFound(t *testing.T) {
	f := newFakeRepo(t)
	c := f.client(t, Options{})

	_, err := c.GetByUID(context.Background(), "posts", "missing", QueryOptions{})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, `[[at(my.posts.uid,"missing")]]`, f.lastQuery.Get("q"))
	assert.Equal(t, "1", f.lastQuery.Get("pageSize"))
}

func TestGetByUIDDecodesDocument(t *testing.T) {
	f := newFakeRepo(t)
	f.search = func(w http.ResponseWriter, q url.Values) {
		_, _ = w.Write([]byte(`{"results":[{"id":"X1","uid":"hello","type":"posts",
			"first_publication_date":"2021-03-25T19:25:28+0000","last_publication_date":null,
			"data":{"title":"Hello"}}],"next_page":null}`))
	}
	c := f.client(t, Options{})

	doc, err := c.GetByUID(context.Background(), "posts", "hello", QueryOptions{})
	require.NoError(t, err)
	assert.Equal(t, "X1", doc.ID)
	require.True(t, doc.FirstPublicationDate.Valid)
	assert.Equal(t, time.Date(2021, 3, 25, 19, 25, 28, 0, time.UTC), doc.FirstPublicationDate.Time.UTC())
	assert.False(t, doc.LastPublicationDate.Valid)
	assert.Nil(t, doc.LastPublicationDate.Ptr())

	var data struct {
		Title string `json:"title"`
	}
	require.NoError(t, doc.DecodeData(&data))
	assert.Equal(t, "Hello", data.Title)
}

func TestAPIErrorMessage(t *testing.T) {
	f := newFakeRepo(t)
	f.search = func(w http.ResponseWriter, q url.Values) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"unexpected query"}`))
	}
	c := f.client(t, Options{})

	_, err := c.Query(context.Background(), nil, QueryOptions{})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "unexpected query", apiErr.Message)
}

func TestFetchPageFollowsCursor(t *testing.T) {
	f := newFakeRepo(t)
	f.search = func(w http.ResponseWriter, q url.Values) {
		if q.Get("page") == "2" {
			_, _ = w.Write([]byte(`{"page":2,"results":[{"uid":"b"}],"next_page":null}`))
			return
		}
		_, _ = w.Write([]byte(`{"page":1,"results":[{"uid":"a"}],"next_page":"` +
			f.srv.URL + `/api/v2/documents/search?ref=master-ref&page=2"}`))
	}
	c := f.client(t, Options{})

	first, err := c.Query(context.Background(), nil, QueryOptions{})
	require.NoError(t, err)
	require.NotEmpty(t, first.NextPage)

	second, err := c.FetchPage(context.Background(), first.NextPage)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Page)
	assert.Equal(t, "", second.NextPage)
	require.Len(t, second.Results, 1)
	assert.Equal(t, "b", second.Results[0].UID)
}

func TestFetchPageRejectsForeignCursor(t *testing.T) {
	f := newFakeRepo(t)
	c := f.client(t, Options{})

	_, err := c.FetchPage(context.Background(), "https://evil.example/api/v2/documents/search")
	assert.Error(t, err)
	assert.False(t, c.OwnsURL("not a url at all\x7f"))
	assert.False(t, c.OwnsURL(f.srv.URL+"/other/path"))
	assert.True(t, c.OwnsURL(f.srv.URL+"/api/v2/documents/search?page=2"))
}

func TestTimestampMarshalRoundTrip(t *testing.T) {
	var ts Timestamp
	require.NoError(t, json.Unmarshal([]byte(`"2021-03-25T00:00:00Z"`), &ts))
	assert.True(t, ts.Valid)

	b, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(b))

	assert.Error(t, json.Unmarshal([]byte(`"25/03/2021"`), &ts))
}
