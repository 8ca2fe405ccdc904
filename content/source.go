package content

import (
	"context"
	"log/slog"
)

// Source provides posts. Implementations must be safe for concurrent use.
type Source interface {
	// FirstPage returns the first listing batch.
	FirstPage(ctx context.Context) (Pagination, error)
	// NextPage follows a cursor returned by an earlier batch.
	NextPage(ctx context.Context, cursor string) (Pagination, error)
	// CursorAllowed reports whether cursor may be followed by NextPage.
	CursorAllowed(cursor string) bool
	// Paths returns the uids to pre-render.
	Paths(ctx context.Context) ([]string, error)
	// Post returns the post with the given uid.
	Post(ctx context.Context, uid string) (PostDetail, error)
	// PostByID returns the post with the given CMS document id.
	PostByID(ctx context.Context, id string) (PostDetail, error)
	// Neighbors returns the posts around post in publication order.
	Neighbors(ctx context.Context, post PostDetail) (Neighbors, error)
}

// LoadMore fetches the batch behind p's cursor and appends it to p. A failed
// fetch is logged and leaves p unchanged. It reports whether p changed.
func LoadMore(ctx context.Context, src Source, p *Pagination, logger *slog.Logger) bool {
	if !p.HasMore() {
		return false
	}
	batch, err := src.NextPage(ctx, p.NextPage)
	if err != nil {
		logger.Error("load more posts", "error", err)
		return false
	}
	p.Append(batch)
	return true
}
