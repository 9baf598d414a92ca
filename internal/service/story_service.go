package service

import (
	"context"
	"time"

	"storyhub/internal/core/cache"
	"storyhub/internal/domain"
	"storyhub/pkg/utils"
)

const (
	publicFeedKey = "stories:public"
	publicFeedTTL = 10 * time.Second
)

type StoryService struct {
	stories domain.StoryRepository
	cache   *cache.Cache // 可为 nil（测试/无 redis 部署）
}

func NewStoryService(stories domain.StoryRepository, c *cache.Cache) *StoryService {
	return &StoryService{stories: stories, cache: c}
}

type StoryDraft struct {
	Title   string
	Content string
}

// Create 新故事一律 pending，作者信息当场快照
func (s *StoryService) Create(ctx context.Context, draft StoryDraft, author *domain.User) (*domain.Story, error) {
	st := &domain.Story{
		ID:             utils.NewID(),
		Title:          draft.Title,
		Content:        draft.Content,
		AuthorID:       author.ID,
		AuthorUsername: author.Username,
		Status:         domain.StatusPending,
		LikedBy:        []string{},
		CreatedAt:      time.Now().UTC(),
	}
	if err := s.stories.Create(ctx, st); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *StoryService) ListMine(ctx context.Context, userID string) ([]domain.Story, error) {
	ss, err := s.stories.ListByAuthor(ctx, userID)
	if err != nil {
		return nil, err
	}
	return nonNil(ss), nil
}

// ListPublic 唯一匿名可读端点，读多写少 → cache-aside
func (s *StoryService) ListPublic(ctx context.Context) ([]domain.Story, error) {
	if s.cache == nil {
		ss, err := s.stories.ListApproved(ctx)
		if err != nil {
			return nil, err
		}
		return nonNil(ss), nil
	}
	out, err := cache.GetOrLoadJSON[[]domain.Story](s.cache, ctx, publicFeedKey, publicFeedTTL,
		func(ctx context.Context) (*[]domain.Story, error) {
			ss, e := s.stories.ListApproved(ctx)
			if e != nil {
				return nil, e
			}
			ss = nonNil(ss)
			return &ss, nil
		})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return []domain.Story{}, nil
	}
	return *out, nil
}

func (s *StoryService) ListPending(ctx context.Context) ([]domain.Story, error) {
	ss, err := s.stories.ListPending(ctx)
	if err != nil {
		return nil, err
	}
	return nonNil(ss), nil
}

// Moderate 复审不设防：重复 approve 会刷新 approvedAt；
// approve 后再 reject 会留下过期的 approvedAt（与历史行为保持一致）
func (s *StoryService) Moderate(ctx context.Context, storyID, decision string) error {
	var approvedAt *time.Time
	if decision == domain.StatusApproved {
		now := time.Now().UTC()
		approvedAt = &now
	}
	affected, err := s.stories.Moderate(ctx, storyID, decision, approvedAt)
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	s.invalidateFeed(ctx)
	return nil
}

// ToggleLike 纯切换：同一用户连续两次调用回到原始状态
func (s *StoryService) ToggleLike(ctx context.Context, storyID, userID string) (liked bool, likes int64, err error) {
	liked, likes, err = s.stories.ToggleLike(ctx, storyID, userID)
	if err != nil {
		return false, 0, err
	}
	s.invalidateFeed(ctx)
	return liked, likes, nil
}

func (s *StoryService) invalidateFeed(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, publicFeedKey) // 失败仅影响最多一个 TTL 的新鲜度
}

func nonNil(ss []domain.Story) []domain.Story {
	if ss == nil {
		return []domain.Story{}
	}
	return ss
}
