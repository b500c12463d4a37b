package store

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rushteam/brewrec/core"
)

// MemoryRepository 是内存实现的 core.Repository，用于测试/开发/演示数据。
// 所有方法并发安全。
type MemoryRepository struct {
	mu        sync.RWMutex
	nextID    int64
	behaviors []core.BehaviorEvent
	posts     map[int64]core.Post
	tags      map[int64][]string
	bars      map[int64]core.Bar
	beverages map[int64]core.Beverage
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		posts:     make(map[int64]core.Post),
		tags:      make(map[int64][]string),
		bars:      make(map[int64]core.Bar),
		beverages: make(map[int64]core.Beverage),
	}
}

var (
	_ core.Repository = (*MemoryRepository)(nil)
	_ CatalogWriter   = (*MemoryRepository)(nil)
)

// AddPost 写入（或覆盖）动态及其标签。
func (r *MemoryRepository) AddPost(ctx context.Context, p core.Post, tags ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	r.posts[p.ID] = p
	r.tags[p.ID] = slices.Clone(tags)
	return nil
}

func (r *MemoryRepository) AddBar(ctx context.Context, b core.Bar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bars[b.ID] = b
	return nil
}

func (r *MemoryRepository) AddBeverage(ctx context.Context, b core.Beverage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.beverages[b.ID] = b
	return nil
}

func (r *MemoryRepository) RecordBehavior(ctx context.Context, ev core.BehaviorEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	ev.ID = r.nextID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	r.behaviors = append(r.behaviors, ev)
	return nil
}

func inWindow(ev core.BehaviorEvent, since time.Time) bool {
	return since.IsZero() || !ev.CreatedAt.Before(since)
}

func (r *MemoryRepository) Behaviors(ctx context.Context, userID int64, targetType core.TargetType, since time.Time) ([]core.BehaviorEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.BehaviorEvent
	for _, ev := range r.behaviors {
		if ev.UserID == userID && ev.TargetType == targetType && inWindow(ev, since) {
			out = append(out, ev)
		}
	}
	return out, nil
}

func (r *MemoryRepository) BehaviorsOf(ctx context.Context, q core.BehaviorQuery) ([]core.BehaviorEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []core.BehaviorEvent
	for _, ev := range r.behaviors {
		if ev.TargetType != q.TargetType || !inWindow(ev, q.Since) {
			continue
		}
		if len(q.UserIDs) > 0 && !slices.Contains(q.UserIDs, ev.UserID) {
			continue
		}
		if len(q.BehaviorTypes) > 0 && !slices.Contains(q.BehaviorTypes, ev.BehaviorType) {
			continue
		}
		if q.TargetID != 0 && ev.TargetID != q.TargetID {
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

func (r *MemoryRepository) DistinctUserIDs(ctx context.Context, targetType core.TargetType, since time.Time) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[int64]struct{})
	for _, ev := range r.behaviors {
		if ev.TargetType == targetType && inWindow(ev, since) {
			seen[ev.UserID] = struct{}{}
		}
	}
	out := make([]int64, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	slices.Sort(out)
	return out, nil
}

func (r *MemoryRepository) Tags(ctx context.Context, postIDs []int64) (map[int64][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[int64][]string, len(postIDs))
	for _, id := range postIDs {
		if tags, ok := r.tags[id]; ok && len(tags) > 0 {
			out[id] = slices.Clone(tags)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Posts(ctx context.Context, postIDs []int64) ([]core.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := r.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

// CandidatePosts 按创建时间倒序返回候选动态，同一时间按 ID 倒序。
func (r *MemoryRepository) CandidatePosts(ctx context.Context, q core.CandidateQuery) ([]core.Post, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	exclude := make(map[int64]struct{}, len(q.ExcludeIDs))
	for _, id := range q.ExcludeIDs {
		exclude[id] = struct{}{}
	}
	out := make([]core.Post, 0, len(r.posts))
	for _, p := range r.posts {
		if _, skip := exclude[p.ID]; skip {
			continue
		}
		if !q.Since.IsZero() && p.CreatedAt.Before(q.Since) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r *MemoryRepository) PostsByTags(ctx context.Context, tags []string, excludeID int64) (map[int64]int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		want[t] = struct{}{}
	}
	out := make(map[int64]int)
	for id, postTags := range r.tags {
		if id == excludeID {
			continue
		}
		counted := make(map[string]struct{}, len(postTags))
		for _, t := range postTags {
			if _, ok := want[t]; !ok {
				continue
			}
			if _, dup := counted[t]; dup {
				continue
			}
			counted[t] = struct{}{}
			out[id]++
		}
	}
	return out, nil
}

func (r *MemoryRepository) Bars(ctx context.Context, q core.BarQuery) ([]core.Bar, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Bar, 0, len(r.bars))
	for _, b := range r.bars {
		if q.ActiveOnly && !b.Active {
			continue
		}
		if q.Box != nil && !q.Box.Contains(b.Latitude, b.Longitude) {
			continue
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MemoryRepository) Beverages(ctx context.Context, ids []int64) ([]core.Beverage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]core.Beverage, 0, len(ids))
	for _, id := range ids {
		if b, ok := r.beverages[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *MemoryRepository) Close() error { return nil }
