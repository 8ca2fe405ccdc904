package spacetraveling

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readExport(t *testing.T, dir string, parts ...string) string {
	t.Helper()
	b, err := os.ReadFile(filepath.Join(append([]string{dir}, parts...)...))
	require.NoError(t, err)
	return string(b)
}

func TestExportWritesSite(t *testing.T) {
	src := seededSource()
	a := newTestApp(t, src)
	dir := t.TempDir()

	res, err := a.Export(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, ExportResult{Posts: 1, Batches: 1}, res)

	index := readExport(t, dir, "index.html")
	assert.Contains(t, index, `href="/posts/more/1/"`)
	assert.Contains(t, index, "Como utilizar Hooks")

	batch := readExport(t, dir, "posts", "more", "1", "index.html")
	assert.Contains(t, batch, "Criando um app CRA do zero")
	assert.NotContains(t, batch, "load-more")

	post := readExport(t, dir, "post", "como-utilizar-hooks", "index.html")
	assert.Contains(t, post, "<h1>Como utilizar Hooks</h1>")

	for _, name := range []string{"404.html", "sitemap.xml", "feed.xml", "robots.txt", filepath.Join("public", "site.js"), filepath.Join("public", "logo.svg")} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
	_, err = os.Stat(filepath.Join(dir, "post", "criando-um-app-cra-do-zero"))
	assert.True(t, os.IsNotExist(err), "unlisted posts are left to the server")

	_, ok := a.Cache.Peek(context.Background(), postKey("como-utilizar-hooks"))
	assert.True(t, ok, "exported posts are cached")
}

func TestExportAllIncludesListedPosts(t *testing.T) {
	src := seededSource()
	a := newTestApp(t, src)
	dir := t.TempDir()

	res, err := a.Export(context.Background(), dir, true)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Posts)
	assert.Contains(t, readExport(t, dir, "post", "criando-um-app-cra-do-zero", "index.html"), "Criando um app CRA do zero")
	assert.Equal(t, 1, src.count("post:como-utilizar-hooks"), "paths and listing are deduplicated")
}

func TestExportFailsOnBatchError(t *testing.T) {
	src := seededSource()
	src.batchErr = errors.New("timeout")
	a := newTestApp(t, src)

	_, err := a.Export(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load batch 1")
}

func TestExportFailsOnCyclicCursor(t *testing.T) {
	src := seededSource()
	cursor := cmsBase + "?page=2"
	batch := src.batches[cursor]
	batch.NextPage = cursor
	src.batches[cursor] = batch
	a := newTestApp(t, src)

	_, err := a.Export(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "repeats")
	assert.Equal(t, 1, src.count("next"))
}

func TestExportRejectsUnsafeUID(t *testing.T) {
	src := seededSource()
	src.paths = []string{"../escape"}
	a := newTestApp(t, src)

	_, err := a.Export(context.Background(), t.TempDir(), false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a valid path segment")
}

func TestSafePathSegment(t *testing.T) {
	assert.True(t, safePathSegment("como-utilizar-hooks"))
	assert.False(t, safePathSegment(".."))
	assert.False(t, safePathSegment("a/b"))
	assert.False(t, safePathSegment(`a\b`))
}
