package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyhub/internal/core/auth"
	"storyhub/internal/domain"
	"storyhub/internal/repo"
)

func newAuthFixture() (*AuthService, *repo.MemoryUserRepo, *auth.JWTer) {
	users := repo.NewMemoryUserRepo()
	jwter := &auth.JWTer{Secret: []byte("test-secret"), Issuer: "storyhub", TTL: 30 * time.Minute}
	return NewAuthService(users, jwter), users, jwter
}

func newStoryFixture() (*StoryService, *repo.MemoryStoryRepo) {
	stories := repo.NewMemoryStoryRepo()
	return NewStoryService(stories, nil), stories
}

func TestRegister(t *testing.T) {
	svc, _, jwter := newAuthFixture()
	ctx := context.Background()

	tok, u, err := svc.Register(ctx, Credentials{Username: "alice", Password: "pw123", Email: "a@example.com"})
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.False(t, u.IsAdmin)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "pw123", u.PasswordHash, "plaintext must never be stored")

	// token 主体 == 注册用户名
	claims, err := jwter.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)

	// resolve 得到 isAdmin == false 的用户
	got, err := svc.Resolve(ctx, tok)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.False(t, got.IsAdmin)
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, Credentials{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, Credentials{Username: "alice", Password: "other"})
	assert.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, 1, users.Count(), "no second record may be created")
}

func TestLogin(t *testing.T) {
	svc, _, _ := newAuthFixture()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, Credentials{Username: "alice", Password: "pw123"})
	require.NoError(t, err)

	tok, u, err := svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.NotEmpty(t, tok)
	assert.Equal(t, "alice", u.Username)

	// 密码错误与用户不存在同一错误
	_, _, err = svc.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody", "pw123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestResolveRejectsBadTokens(t *testing.T) {
	svc, _, jwter := newAuthFixture()
	ctx := context.Background()

	_, err := svc.Resolve(ctx, "garbage")
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	// 签名有效但主体已不在库中
	tok, err := jwter.Issue("ghost")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, tok)
	assert.ErrorIs(t, err, auth.ErrTokenInvalid)

	// 过期
	expired := &auth.JWTer{Secret: jwter.Secret, Issuer: jwter.Issuer, TTL: -2 * time.Minute}
	tok, err = expired.Issue("alice")
	require.NoError(t, err)
	_, err = svc.Resolve(ctx, tok)
	assert.ErrorIs(t, err, auth.ErrTokenExpired)
}

func TestEnsureSeedAdminIdempotent(t *testing.T) {
	svc, users, _ := newAuthFixture()
	ctx := context.Background()

	created, err := svc.EnsureSeedAdmin(ctx, "admin", "admin123", "admin@example.com")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureSeedAdmin(ctx, "admin", "admin123", "admin@example.com")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 1, users.Count())

	u, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.True(t, u.IsAdmin)
}

func TestCreateStoryAlwaysPending(t *testing.T) {
	svc, _ := newStoryFixture()
	ctx := context.Background()
	author := &domain.User{ID: "u1", Username: "alice"}

	st, err := svc.Create(ctx, StoryDraft{Title: "T", Content: "C"}, author)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, st.Status)
	assert.Equal(t, "u1", st.AuthorID)
	assert.Equal(t, "alice", st.AuthorUsername)
	assert.Nil(t, st.ApprovedAt)
	assert.Zero(t, st.Likes)
}

func TestModerateApprove(t *testing.T) {
	svc, _ := newStoryFixture()
	ctx := context.Background()
	author := &domain.User{ID: "u1", Username: "alice"}

	older, err := svc.Create(ctx, StoryDraft{Title: "older", Content: "C"}, author)
	require.NoError(t, err)
	newer, err := svc.Create(ctx, StoryDraft{Title: "newer", Content: "C"}, author)
	require.NoError(t, err)

	require.NoError(t, svc.Moderate(ctx, older.ID, domain.StatusApproved))
	time.Sleep(5 * time.Millisecond) // approvedAt 排序需要可区分的时间戳
	require.NoError(t, svc.Moderate(ctx, newer.ID, domain.StatusApproved))

	pub, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, pub, 2)
	// 最近审核的排在前面
	assert.Equal(t, "newer", pub[0].Title)
	assert.Equal(t, "older", pub[1].Title)
	require.NotNil(t, pub[0].ApprovedAt)
	require.NotNil(t, pub[1].ApprovedAt)

	pending, err := svc.ListPending(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestModerateReject(t *testing.T) {
	svc, _ := newStoryFixture()
	ctx := context.Background()
	author := &domain.User{ID: "u1", Username: "alice"}

	st, err := svc.Create(ctx, StoryDraft{Title: "T", Content: "C"}, author)
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, st.ID, domain.StatusRejected))

	pub, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	assert.Empty(t, pub)

	mine, err := svc.ListMine(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.StatusRejected, mine[0].Status)
	assert.Nil(t, mine[0].ApprovedAt)
}

func TestRemoderationQuirks(t *testing.T) {
	svc, _ := newStoryFixture()
	ctx := context.Background()
	author := &domain.User{ID: "u1", Username: "alice"}

	st, err := svc.Create(ctx, StoryDraft{Title: "T", Content: "C"}, author)
	require.NoError(t, err)

	require.NoError(t, svc.Moderate(ctx, st.ID, domain.StatusApproved))
	pub, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	first := pub[0].ApprovedAt
	require.NotNil(t, first)

	// 重复 approve 允许，approvedAt 被刷新
	time.Sleep(5 * time.Millisecond)
	require.NoError(t, svc.Moderate(ctx, st.ID, domain.StatusApproved))
	pub, err = svc.ListPublic(ctx)
	require.NoError(t, err)
	require.NotNil(t, pub[0].ApprovedAt)
	assert.True(t, pub[0].ApprovedAt.After(*first))

	// approve 后 reject：approvedAt 保留（历史行为）
	require.NoError(t, svc.Moderate(ctx, st.ID, domain.StatusRejected))
	mine, err := svc.ListMine(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, mine[0].Status)
	assert.NotNil(t, mine[0].ApprovedAt)

	// 重复 reject 没有任何列变化 → 条件更新 0 行 → NotFound（历史行为）
	err = svc.Moderate(ctx, st.ID, domain.StatusRejected)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestModerateMissingStory(t *testing.T) {
	svc, _ := newStoryFixture()
	err := svc.Moderate(context.Background(), "no-such-id", domain.StatusApproved)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestToggleLikeRoundTrip(t *testing.T) {
	svc, _ := newStoryFixture()
	ctx := context.Background()
	author := &domain.User{ID: "u1", Username: "alice"}

	st, err := svc.Create(ctx, StoryDraft{Title: "T", Content: "C"}, author)
	require.NoError(t, err)
	require.NoError(t, svc.Moderate(ctx, st.ID, domain.StatusApproved))

	liked, likes, err := svc.ToggleLike(ctx, st.ID, "u1")
	require.NoError(t, err)
	assert.True(t, liked)
	assert.Equal(t, int64(1), likes)

	// 第二次调用回到初始状态
	liked, likes, err = svc.ToggleLike(ctx, st.ID, "u1")
	require.NoError(t, err)
	assert.False(t, liked)
	assert.Zero(t, likes)

	pub, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, pub, 1)
	assert.Zero(t, pub[0].Likes)
	assert.Empty(t, pub[0].LikedBy)
}

func TestToggleLikeRequiresApproved(t *testing.T) {
	svc, _ := newStoryFixture()
	ctx := context.Background()
	author := &domain.User{ID: "u1", Username: "alice"}

	st, err := svc.Create(ctx, StoryDraft{Title: "T", Content: "C"}, author)
	require.NoError(t, err)

	_, _, err = svc.ToggleLike(ctx, st.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, svc.Moderate(ctx, st.ID, domain.StatusRejected))
	_, _, err = svc.ToggleLike(ctx, st.ID, "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = svc.ToggleLike(ctx, "no-such-id", "u1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
