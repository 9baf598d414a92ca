package domain

import (
	"context"
	"time"
)

// 审核状态机：pending -> approved / rejected（终态不设防，允许复审）
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type Story struct {
	ID      string `gorm:"primaryKey;size:36" json:"id"`
	Title   string `gorm:"size:255;not null" json:"title"`
	Content string `gorm:"type:text;not null" json:"content"`

	// 创建时刻的作者快照（用户名不可变，不需要回填）
	AuthorID       string `gorm:"size:36;index;not null" json:"authorId"`
	AuthorUsername string `gorm:"size:64;not null" json:"authorUsername"`

	Status string `gorm:"size:16;index;not null;default:pending" json:"status"`

	// likes 冗余计数，写路径保证与 story_likes 行数一致
	Likes   int64    `gorm:"not null;default:0" json:"likes"`
	LikedBy []string `gorm:"-" json:"likedBy"`

	CreatedAt  time.Time  `json:"createdAt"`
	ApprovedAt *time.Time `json:"approvedAt"`
}

func (Story) TableName() string { return "stories" }

// StoryLike 点赞集合，复合主键天然去重
type StoryLike struct {
	StoryID string `gorm:"primaryKey;size:36"`
	UserID  string `gorm:"primaryKey;size:36"`
}

func (StoryLike) TableName() string { return "story_likes" }

type StoryRepository interface {
	Create(ctx context.Context, s *Story) error
	ListByAuthor(ctx context.Context, authorID string) ([]Story, error)
	ListApproved(ctx context.Context) ([]Story, error)
	ListPending(ctx context.Context) ([]Story, error)
	// Moderate 单条条件更新；返回受影响行数（0 视作不存在/未变化）
	Moderate(ctx context.Context, storyID, status string, approvedAt *time.Time) (int64, error)
	// ToggleLike 原子集合增删 + 计数回写；非 approved 一律 ErrNotFound
	ToggleLike(ctx context.Context, storyID, userID string) (liked bool, likes int64, err error)
}
