package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	return New(mr.Addr(), "", 0)
}

func TestGetOrLoad(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]byte, error) {
		loads++
		return []byte("payload"), nil
	}

	b, err := c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
	assert.Equal(t, 1, loads)

	// 第二次命中缓存，不再回源
	b, err = c.GetOrLoad(ctx, "k", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(b))
	assert.Equal(t, 1, loads)
}

func TestInvalidate(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]byte, error) {
		loads++
		return []byte("v"), nil
	}

	_, err := c.GetOrLoad(ctx, "feed", time.Minute, load)
	require.NoError(t, err)
	require.NoError(t, c.Invalidate(ctx, "feed"))

	_, err = c.GetOrLoad(ctx, "feed", time.Minute, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestGetOrLoadJSON(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	type item struct {
		ID    string `json:"id"`
		Likes int64  `json:"likes"`
	}

	out, err := GetOrLoadJSON[[]item](c, ctx, "items", time.Minute,
		func(context.Context) (*[]item, error) {
			v := []item{{ID: "a", Likes: 2}, {ID: "b", Likes: 0}}
			return &v, nil
		})
	require.NoError(t, err)
	require.NotNil(t, out)
	require.Len(t, *out, 2)
	assert.Equal(t, "a", (*out)[0].ID)
	assert.Equal(t, int64(2), (*out)[0].Likes)

	// 再取走缓存路径，结果一致
	out2, err := GetOrLoadJSON[[]item](c, ctx, "items", time.Minute,
		func(context.Context) (*[]item, error) { t.Fatal("loader should not run"); return nil, nil })
	require.NoError(t, err)
	assert.Equal(t, *out, *out2)
}
