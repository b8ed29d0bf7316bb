package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"prompt-tracker/internal/domain"
)

// MemoryPromptsRepo: 用于 DB 未就绪时的联测和单元测试
// - IDs 单调递增（与 BIGSERIAL 行为一致）
// - last-writer-wins，不做乐观锁
type MemoryPromptsRepo struct {
	mu      sync.RWMutex
	nextID  int64
	prompts map[int64]domain.Prompt
}

func NewMemoryPromptsRepo() *MemoryPromptsRepo {
	return &MemoryPromptsRepo{
		nextID:  1,
		prompts: map[int64]domain.Prompt{},
	}
}

var _ PromptsRepository = (*MemoryPromptsRepo)(nil)

func (r *MemoryPromptsRepo) GetPrompt(_ context.Context, promptID int64) (*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prompts[promptID]
	if !ok {
		return nil, fmt.Errorf("prompt %d: %w", promptID, domain.ErrNotFound)
	}
	cp := p
	return &cp, nil
}

func (r *MemoryPromptsRepo) ListPrompts(_ context.Context, filters *PromptFilters) ([]*domain.Prompt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Prompt
	for _, p := range r.prompts {
		if !matchPrompt(&p, filters) {
			continue
		}
		cp := p
		out = append(out, &cp)
	}

	// 创建时间倒序；同刻按 ID 倒序，与 Postgres 实现保持一致
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].PromptID > out[j].PromptID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filters != nil && filters.Limit > 0 && len(out) > filters.Limit {
		out = out[:filters.Limit]
	}
	return out, nil
}

func matchPrompt(p *domain.Prompt, f *PromptFilters) bool {
	if f == nil {
		return true
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.IndividualID != nil && p.IndividualID != *f.IndividualID {
		return false
	}
	if f.UserID != nil && p.UserID != *f.UserID {
		return false
	}
	if f.FacilityID != nil && p.FacilityID != *f.FacilityID {
		return false
	}
	if f.StartTime != nil && p.CreatedAt.Before(*f.StartTime) {
		return false
	}
	if f.EndTime != nil && p.CreatedAt.After(*f.EndTime) {
		return false
	}
	return true
}

func (r *MemoryPromptsRepo) CreatePrompt(_ context.Context, p *domain.Prompt) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++

	cp := *p
	cp.PromptID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = cp.CreatedAt
	}
	r.prompts[id] = cp
	return id, nil
}

func (r *MemoryPromptsRepo) UpdatePrompt(_ context.Context, p *domain.Prompt) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.prompts[p.PromptID]
	if !ok {
		return fmt.Errorf("prompt %d: %w", p.PromptID, domain.ErrNotFound)
	}
	cur.Status = p.Status
	cur.Notes = p.Notes
	cur.Signature = p.Signature
	cur.UpdatedAt = p.UpdatedAt
	r.prompts[p.PromptID] = cur
	return nil
}
