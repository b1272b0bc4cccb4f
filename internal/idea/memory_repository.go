package idea

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryIdea struct {
	Idea
	seq int64
}

// MemoryRepository is an in-process Repository. Vote increments are serialized
// by the repository lock.
type MemoryRepository struct {
	mu    sync.RWMutex
	ideas map[uuid.UUID]*memoryIdea
	seq   int64
	now   func() time.Time
}

// NewMemoryRepository returns an empty in-memory idea store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		ideas: make(map[uuid.UUID]*memoryIdea),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, idea *Idea) error {
	if idea.Status == "" {
		idea.Status = StatusPending
	}
	if !idea.Status.Valid() {
		return ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	now := r.now()
	idea.ID = uuid.New()
	idea.Upvotes = 0
	idea.Downvotes = 0
	idea.CreatedAt = now
	idea.UpdatedAt = now

	r.ideas[idea.ID] = &memoryIdea{Idea: *idea, seq: r.seq}
	return nil
}

func (r *MemoryRepository) GetByID(_ context.Context, id uuid.UUID) (*Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.ideas[id]
	if !ok {
		return nil, ErrIdeaNotFound
	}
	idea := m.Idea
	return &idea, nil
}

func (r *MemoryRepository) ListApproved(_ context.Context) ([]Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(i *Idea) bool { return i.Status == StatusApproved })
	sort.Slice(matched, func(a, b int) bool {
		if matched[a].Upvotes != matched[b].Upvotes {
			return matched[a].Upvotes > matched[b].Upvotes
		}
		return newer(matched[a], matched[b])
	})
	return unwrap(matched), nil
}

func (r *MemoryRepository) List(_ context.Context, filter ListFilter) ([]Idea, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := r.filter(func(i *Idea) bool {
		return filter.Status == nil || i.Status == *filter.Status
	})
	sort.Slice(matched, func(a, b int) bool { return newer(matched[a], matched[b]) })
	return unwrap(matched), nil
}

func (r *MemoryRepository) Update(_ context.Context, id uuid.UUID, fields UpdateFields) (*Idea, error) {
	if fields.Status != nil && !fields.Status.Valid() {
		return nil, ErrInvalidStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.ideas[id]
	if !ok {
		return nil, ErrIdeaNotFound
	}
	if fields.Empty() {
		idea := m.Idea
		return &idea, nil
	}

	if fields.Title != nil {
		m.Title = *fields.Title
	}
	if fields.Description != nil {
		m.Description = *fields.Description
	}
	if fields.Status != nil {
		m.Status = *fields.Status
	}
	m.UpdatedAt = r.now()

	idea := m.Idea
	return &idea, nil
}

func (r *MemoryRepository) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Idea, error) {
	return r.Update(ctx, id, UpdateFields{Status: &status})
}

func (r *MemoryRepository) IncrementVotes(_ context.Context, id uuid.UUID, vote Vote) (*Idea, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.ideas[id]
	if !ok {
		return nil, ErrIdeaNotFound
	}
	if vote == Downvote {
		m.Downvotes++
	} else {
		m.Upvotes++
	}

	idea := m.Idea
	return &idea, nil
}

func (r *MemoryRepository) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.ideas[id]; !ok {
		return ErrIdeaNotFound
	}
	delete(r.ideas, id)
	return nil
}

// filter must be called with the lock held.
func (r *MemoryRepository) filter(keep func(*Idea) bool) []*memoryIdea {
	var out []*memoryIdea
	for _, m := range r.ideas {
		if keep(&m.Idea) {
			out = append(out, m)
		}
	}
	return out
}

func newer(a, b *memoryIdea) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.seq > b.seq
}

func unwrap(ms []*memoryIdea) []Idea {
	out := make([]Idea, 0, len(ms))
	for _, m := range ms {
		out = append(out, m.Idea)
	}
	return out
}
