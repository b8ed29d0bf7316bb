package repository

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"prompt-tracker/internal/domain"
)

// MemoryAuditRepo: 用于 DB 未就绪时的联测和单元测试
// 只追加；展示姓名通过注入的 UsersRepository 查得（弱引用，查不到则为空）
type MemoryAuditRepo struct {
	mu      sync.RWMutex
	entries []domain.AuditLogEntry
	users   UsersRepository
}

func NewMemoryAuditRepo(users UsersRepository) *MemoryAuditRepo {
	return &MemoryAuditRepo{users: users}
}

var _ AuditRepository = (*MemoryAuditRepo)(nil)

func (r *MemoryAuditRepo) InsertEntry(_ context.Context, e *domain.AuditLogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *e
	if cp.EntryID == "" {
		cp.EntryID = uuid.New().String()
	}
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, cp)
	return nil
}

func (r *MemoryAuditRepo) ListRecent(ctx context.Context, limit int) ([]*AuditEntryWithUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*AuditEntryWithUser
	for i := len(r.entries) - 1; i >= 0 && len(out) < limit; i-- {
		e := r.entries[i]
		item := &AuditEntryWithUser{Entry: e}
		if r.users != nil {
			if u, err := r.users.GetUser(ctx, e.UserID); err == nil {
				item.UserDisplayName = u.DisplayName()
			} else if !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
		}
		out = append(out, item)
	}
	return out, nil
}
