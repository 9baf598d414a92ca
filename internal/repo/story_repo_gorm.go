package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"storyhub/internal/domain"
)

type StoryRepo struct{ db *gorm.DB }

func NewStoryRepo(db *gorm.DB) *StoryRepo { return &StoryRepo{db: db} }

func (r *StoryRepo) Create(ctx context.Context, s *domain.Story) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *StoryRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Story, error) {
	var ss []domain.Story
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&ss).Error
	if err != nil {
		return nil, err
	}
	return r.attachLikedBy(ctx, ss)
}

func (r *StoryRepo) ListApproved(ctx context.Context) ([]domain.Story, error) {
	var ss []domain.Story
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusApproved).
		Order("approved_at DESC").
		Find(&ss).Error
	if err != nil {
		return nil, err
	}
	return r.attachLikedBy(ctx, ss)
}

func (r *StoryRepo) ListPending(ctx context.Context) ([]domain.Story, error) {
	var ss []domain.Story
	err := r.db.WithContext(ctx).
		Where("status = ?", domain.StatusPending).
		Order("created_at DESC").
		Find(&ss).Error
	if err != nil {
		return nil, err
	}
	return r.attachLikedBy(ctx, ss)
}

// Moderate 单条 UPDATE；0 行受影响交给上层判定 NotFound
func (r *StoryRepo) Moderate(ctx context.Context, storyID, status string, approvedAt *time.Time) (int64, error) {
	patch := map[string]any{"status": status}
	q := r.db.WithContext(ctx).
		Model(&domain.Story{}).
		Where("id = ?", storyID)
	if approvedAt != nil {
		patch["approved_at"] = *approvedAt
	} else {
		// mysql 的 RowsAffected 是变更行数，postgres 是匹配行数；
		// 无新时间戳时显式排除无变化的行，两种驱动一致表现为 0 行
		q = q.Where("status <> ?", status)
	}
	res := q.Updates(patch)
	return res.RowsAffected, res.Error
}

// ToggleLike 同一事务内完成：approved 校验 → 集合增/删 → 计数回写。
// 计数始终从 story_likes 重算，杜绝漂移。
func (r *StoryRepo) ToggleLike(ctx context.Context, storyID, userID string) (liked bool, likes int64, err error) {
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var st domain.Story
		e := tx.Select("id").
			Where("id = ? AND status = ?", storyID, domain.StatusApproved).
			First(&st).Error
		if errors.Is(e, gorm.ErrRecordNotFound) {
			return domain.ErrNotFound
		}
		if e != nil {
			return e
		}

		res := tx.Where("story_id = ? AND user_id = ?", storyID, userID).
			Delete(&domain.StoryLike{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if e := tx.Create(&domain.StoryLike{StoryID: storyID, UserID: userID}).Error; e != nil {
				return e
			}
			liked = true
		}

		if e := tx.Model(&domain.StoryLike{}).
			Where("story_id = ?", storyID).
			Count(&likes).Error; e != nil {
			return e
		}
		return tx.Model(&domain.Story{}).
			Where("id = ?", storyID).
			Update("likes", likes).Error
	})
	return liked, likes, err
}

// attachLikedBy 一次查询补齐整批故事的点赞成员
func (r *StoryRepo) attachLikedBy(ctx context.Context, ss []domain.Story) ([]domain.Story, error) {
	if len(ss) == 0 {
		return ss, nil
	}
	ids := make([]string, 0, len(ss))
	for _, s := range ss {
		ids = append(ids, s.ID)
	}
	var rows []domain.StoryLike
	if err := r.db.WithContext(ctx).
		Where("story_id IN ?", ids).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	byStory := make(map[string][]string, len(ss))
	for _, row := range rows {
		byStory[row.StoryID] = append(byStory[row.StoryID], row.UserID)
	}
	for i := range ss {
		if m := byStory[ss[i].ID]; m != nil {
			ss[i].LikedBy = m
		} else {
			ss[i].LikedBy = []string{}
		}
	}
	return ss, nil
}
