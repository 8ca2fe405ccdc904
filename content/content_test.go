package content

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"
)

func TestReadingTime(t *testing.T) {
	tests := []struct {
		name   string
		blocks []ContentBlock
		words  int
		want   int
	}{
		{"empty", nil, 0, 0},
		{"heading and body", []ContentBlock{{Heading: "Intro", Body: []Paragraph{{Text: "one two three"}}}}, 4, 1},
		{"extra whitespace", []ContentBlock{{Heading: "  A   title ", Body: []Paragraph{{Text: "x\ny\tz"}}}}, 5, 1},
		{"exactly 200", []ContentBlock{{Body: []Paragraph{{Text: words(200)}}}}, 200, 1},
		{"201 rounds up", []ContentBlock{{Heading: "one", Body: []Paragraph{{Text: words(200)}}}}, 201, 2},
		{"across blocks", []ContentBlock{
			{Heading: "a b", Body: []Paragraph{{Text: words(150)}, {Text: words(150)}}},
			{Heading: "c", Body: []Paragraph{{Text: words(99)}}},
		}, 402, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WordCount(tt.blocks); got != tt.words {
				t.Errorf("WordCount = %d, want %d", got, tt.words)
			}
			if got := ReadingTime(tt.blocks); got != tt.want {
				t.Errorf("ReadingTime = %d, want %d", got, tt.want)
			}
		})
	}
}

func words(n int) string {
	b := make([]byte, 0, n*2)
	for i := 0; i < n; i++ {
		if i > 0 {
			b = append(b, ' ')
		}
		b = append(b, 'w')
	}
	return string(b)
}

func TestPaginationAppendKeepsOrderAndDuplicates(t *testing.T) {
	p := Pagination{Posts: []PostSummary{{UID: "a"}, {UID: "b"}}, NextPage: "cursor-2"}
	p.Append(Pagination{Posts: []PostSummary{{UID: "b"}, {UID: "c"}}, NextPage: "cursor-3"})

	want := []string{"a", "b", "b", "c"}
	if len(p.Posts) != len(want) {
		t.Fatalf("len(Posts) = %d, want %d", len(p.Posts), len(want))
	}
	for i, uid := range want {
		if p.Posts[i].UID != uid {
			t.Errorf("Posts[%d] = %q, want %q", i, p.Posts[i].UID, uid)
		}
	}
	if p.NextPage != "cursor-3" {
		t.Errorf("NextPage = %q, want cursor-3", p.NextPage)
	}

	p.Append(Pagination{})
	if p.HasMore() {
		t.Error("HasMore should be false after the last batch")
	}
	if len(p.Posts) != 4 {
		t.Errorf("empty batch changed posts: %d", len(p.Posts))
	}
}

func TestPaginationJSON(t *testing.T) {
	b, err := json.Marshal(Pagination{})
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != `{"results":[],"next_page":null}` {
		t.Errorf("Marshal(empty) = %s", b)
	}

	for _, in := range []string{
		`{"results":[{"uid":"a"}],"next_page":null}`,
		`{"results":[{"uid":"a"}]}`,
		`{"results":[{"uid":"a"}],"next_page":""}`,
	} {
		var p Pagination
		if err := json.Unmarshal([]byte(in), &p); err != nil {
			t.Fatalf("Unmarshal(%s): %v", in, err)
		}
		if p.HasMore() || len(p.Posts) != 1 {
			t.Errorf("Unmarshal(%s) = %+v", in, p)
		}
	}

	var p Pagination
	if err := json.Unmarshal([]byte(`{"results":[],"next_page":"https://x/api/v2/documents/search?page=2"}`), &p); err != nil {
		t.Fatal(err)
	}
	if !p.HasMore() {
		t.Error("expected a cursor")
	}
}

func TestPostDetailEdited(t *testing.T) {
	first := time.Date(2021, 3, 25, 0, 0, 0, 0, time.UTC)
	later := first.Add(time.Hour)
	tests := []struct {
		first, last *time.Time
		want        bool
	}{
		{nil, nil, false},
		{&first, nil, false},
		{&first, &first, false},
		{&first, &later, true},
	}
	for _, tt := range tests {
		p := PostDetail{FirstPublicationDate: tt.first, LastPublicationDate: tt.last}
		if got := p.Edited(); got != tt.want {
			t.Errorf("Edited(%v, %v) = %v, want %v", tt.first, tt.last, got, tt.want)
		}
	}
}

func TestPostLinkEscapes(t *testing.T) {
	if got := PostLink("como utilizar hooks"); got != "/post/como%20utilizar%20hooks/" {
		t.Errorf("PostLink = %q", got)
	}
}

type stubSource struct {
	Source
	next    Pagination
	err     error
	cursors []string
}

func (s *stubSource) NextPage(ctx context.Context, cursor string) (Pagination, error) {
	s.cursors = append(s.cursors, cursor)
	return s.next, s.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoadMoreAppends(t *testing.T) {
	src := &stubSource{next: Pagination{Posts: []PostSummary{{UID: "c"}}}}
	p := Pagination{Posts: []PostSummary{{UID: "a"}}, NextPage: "cursor-2"}

	if !LoadMore(context.Background(), src, &p, discardLogger()) {
		t.Fatal("LoadMore reported no change")
	}
	if len(p.Posts) != 2 || p.Posts[1].UID != "c" {
		t.Errorf("Posts = %+v", p.Posts)
	}
	if p.HasMore() {
		t.Error("cursor should be replaced by the batch's empty cursor")
	}
	if len(src.cursors) != 1 || src.cursors[0] != "cursor-2" {
		t.Errorf("fetched cursors = %v", src.cursors)
	}
}

func TestLoadMoreFailureLeavesStateUnchanged(t *testing.T) {
	src := &stubSource{err: errors.New("network down")}
	p := Pagination{Posts: []PostSummary{{UID: "a"}}, NextPage: "cursor-2"}

	if LoadMore(context.Background(), src, &p, discardLogger()) {
		t.Fatal("LoadMore reported a change on failure")
	}
	if len(p.Posts) != 1 || p.NextPage != "cursor-2" {
		t.Errorf("state changed: %+v", p)
	}
}

func TestLoadMoreWithoutCursorIsNoop(t *testing.T) {
	src := &stubSource{}
	p := Pagination{Posts: []PostSummary{{UID: "a"}}}

	if LoadMore(context.Background(), src, &p, discardLogger()) {
		t.Fatal("LoadMore without cursor should not change state")
	}
	if len(src.cursors) != 0 {
		t.Error("source should not be called without a cursor")
	}
}
