package site

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/post"
)

func mkPost(path, slug string, body string) *post.Post {
	return &post.Post{
		Path: path,
		Slug: slug,
		Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Body: []byte(body),
	}
}

func TestComputeContentHash_Deterministic(t *testing.T) {
	posts := []*post.Post{mkPost("posts/a.md", "a", "A"), mkPost("posts/b.md", "b", "B")}

	h1, err := ComputeContentHash(posts)
	require.NoError(t, err)
	h2, err := ComputeContentHash(posts)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
	require.Len(t, h1, 64)
}

func TestComputeContentHash_OrderIndependent(t *testing.T) {
	a := mkPost("posts/a.md", "a", "A")
	b := mkPost("posts/b.md", "b", "B")

	h1, err := ComputeContentHash([]*post.Post{a, b})
	require.NoError(t, err)
	h2, err := ComputeContentHash([]*post.Post{b, a})
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}

func TestComputeContentHash_SensitiveToBodyChanges(t *testing.T) {
	h1, err := ComputeContentHash([]*post.Post{mkPost("posts/a.md", "a", "A")})
	require.NoError(t, err)
	h2, err := ComputeContentHash([]*post.Post{mkPost("posts/a.md", "a", "changed")})
	require.NoError(t, err)
	require.NotEqual(t, h1, h2)
}

func TestComputeContentHash_EmptyCorpusHasKnownHash(t *testing.T) {
	h1, err := ComputeContentHash(nil)
	require.NoError(t, err)
	h2, err := ComputeContentHash(nil)
	require.NoError(t, err)
	require.Equal(t, h1, h2)
}
