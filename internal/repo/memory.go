package repo

import (
	"context"
	"sort"
	"sync"
	"time"

	"storyhub/internal/domain"
)

// 内存版仓库：测试与本地起步用，语义对齐 gorm 实现。

type MemoryUserRepo struct {
	mu     sync.RWMutex
	byID   map[string]domain.User
	byName map[string]string // username -> id
}

func NewMemoryUserRepo() *MemoryUserRepo {
	return &MemoryUserRepo{
		byID:   make(map[string]domain.User),
		byName: make(map[string]string),
	}
}

func (m *MemoryUserRepo) Create(_ context.Context, u *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, taken := m.byName[u.Username]; taken {
		return domain.ErrConflict
	}
	m.byID[u.ID] = *u
	m.byName[u.Username] = u.ID
	return nil
}

func (m *MemoryUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.byName[username]
	if !ok {
		return nil, nil
	}
	u := m.byID[id]
	return &u, nil
}

func (m *MemoryUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.byID[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (m *MemoryUserRepo) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.byID)
}

type MemoryStoryRepo struct {
	mu      sync.RWMutex
	stories map[string]domain.Story
	likes   map[string]map[string]struct{} // storyID -> set(userID)
}

func NewMemoryStoryRepo() *MemoryStoryRepo {
	return &MemoryStoryRepo{
		stories: make(map[string]domain.Story),
		likes:   make(map[string]map[string]struct{}),
	}
}

func (m *MemoryStoryRepo) Create(_ context.Context, s *domain.Story) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stories[s.ID] = *s
	return nil
}

func (m *MemoryStoryRepo) ListByAuthor(_ context.Context, authorID string) ([]domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Story
	for _, s := range m.stories {
		if s.AuthorID == authorID {
			out = append(out, m.withLikedBy(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStoryRepo) ListApproved(_ context.Context) ([]domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Story
	for _, s := range m.stories {
		if s.Status == domain.StatusApproved {
			out = append(out, m.withLikedBy(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ti, tj := out[i].ApprovedAt, out[j].ApprovedAt
		if ti == nil || tj == nil {
			return tj == nil
		}
		return ti.After(*tj)
	})
	return out, nil
}

func (m *MemoryStoryRepo) ListPending(_ context.Context) ([]domain.Story, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []domain.Story
	for _, s := range m.stories {
		if s.Status == domain.StatusPending {
			out = append(out, m.withLikedBy(s))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Moderate 模拟条件更新：没有任何列变化时受影响行数为 0
func (m *MemoryStoryRepo) Moderate(_ context.Context, storyID, status string, approvedAt *time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stories[storyID]
	if !ok {
		return 0, nil
	}
	changed := false
	if s.Status != status {
		s.Status = status
		changed = true
	}
	if approvedAt != nil && (s.ApprovedAt == nil || !s.ApprovedAt.Equal(*approvedAt)) {
		t := *approvedAt
		s.ApprovedAt = &t
		changed = true
	}
	if !changed {
		return 0, nil
	}
	m.stories[storyID] = s
	return 1, nil
}

func (m *MemoryStoryRepo) ToggleLike(_ context.Context, storyID, userID string) (bool, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.stories[storyID]
	if !ok || s.Status != domain.StatusApproved {
		return false, 0, domain.ErrNotFound
	}
	set := m.likes[storyID]
	if set == nil {
		set = make(map[string]struct{})
		m.likes[storyID] = set
	}
	liked := false
	if _, has := set[userID]; has {
		delete(set, userID)
	} else {
		set[userID] = struct{}{}
		liked = true
	}
	s.Likes = int64(len(set))
	m.stories[storyID] = s
	return liked, s.Likes, nil
}

func (m *MemoryStoryRepo) withLikedBy(s domain.Story) domain.Story {
	members := []string{}
	for uid := range m.likes[s.ID] {
		members = append(members, uid)
	}
	sort.Strings(members)
	s.LikedBy = members
	s.Likes = int64(len(members))
	return s
}
