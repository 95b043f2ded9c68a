// Package registry is the in-memory discussion store. It lives as long as
// the process and allocates ids from a counter that is never reused.
package registry

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/esnunes/featurechat/internal/interview"
	"github.com/esnunes/featurechat/internal/models"
)

type entry struct {
	discussion *models.Discussion
	context    *models.Context
}

type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
	order   []string
	next    int64
}

var _ interview.Store = (*Registry)(nil)

func New() *Registry {
	return &Registry{entries: make(map[string]*entry)}
}

func (r *Registry) Create(_ context.Context, title, cursor string, now time.Time) (*models.Discussion, *models.Context, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.next++
	id := "f" + strconv.FormatInt(r.next, 10)
	d := &models.Discussion{
		ID:            id,
		Title:         title,
		Status:        models.StatusInDiscussion,
		CurrentPrompt: cursor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	c := models.NewContext()

	r.entries[id] = &entry{discussion: d, context: c}
	r.order = append(r.order, id)
	return d.Clone(), c.Clone(), nil
}

func (r *Registry) Get(_ context.Context, id string) (*models.Discussion, *models.Context, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[id]
	if !ok {
		return nil, nil, fmt.Errorf("discussion %s: %w", id, interview.ErrNotFound)
	}
	return e.discussion.Clone(), e.context.Clone(), nil
}

func (r *Registry) List(_ context.Context) ([]*models.Discussion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Discussion, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.entries[id].discussion.Clone())
	}
	return out, nil
}

// Update holds the write lock for the whole of fn, which serializes answers
// to the same discussion.
func (r *Registry) Update(_ context.Context, id string, fn func(*models.Discussion, *models.Context) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return fmt.Errorf("discussion %s: %w", id, interview.ErrNotFound)
	}
	d, c := e.discussion.Clone(), e.context.Clone()
	if err := fn(d, c); err != nil {
		return err
	}
	e.discussion, e.context = d, c
	return nil
}

// Len returns the number of discussions held.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}
