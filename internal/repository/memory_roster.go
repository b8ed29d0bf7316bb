package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"prompt-tracker/internal/domain"
)

// 名册引用数据的内存实现：DB 未就绪时的联测与单元测试用。
// Add* 方法模拟外部名册管理的写入（核心自身仍然只读）。

// ============================================
// Individuals
// ============================================

// MemoryIndividualsRepo 收容人员内存Repository
type MemoryIndividualsRepo struct {
	mu          sync.RWMutex
	nextID      int64
	individuals map[int64]domain.Individual
}

func NewMemoryIndividualsRepo() *MemoryIndividualsRepo {
	return &MemoryIndividualsRepo{nextID: 1, individuals: map[int64]domain.Individual{}}
}

var _ IndividualsRepository = (*MemoryIndividualsRepo)(nil)

// AddIndividual 灌入名册数据，返回分配的ID
func (r *MemoryIndividualsRepo) AddIndividual(in domain.Individual) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	in.IndividualID = id
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
		in.UpdatedAt = in.CreatedAt
	}
	r.individuals[id] = in
	return id
}

func (r *MemoryIndividualsRepo) GetIndividual(_ context.Context, individualID int64) (*domain.Individual, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	in, ok := r.individuals[individualID]
	if !ok {
		return nil, fmt.Errorf("individual %d: %w", individualID, domain.ErrNotFound)
	}
	cp := in
	return &cp, nil
}

func (r *MemoryIndividualsRepo) ListIndividuals(_ context.Context, facilityID *int64) ([]*domain.Individual, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Individual
	for _, in := range r.individuals {
		if facilityID != nil && in.FacilityID != *facilityID {
			continue
		}
		cp := in
		out = append(out, &cp)
	}
	sortIndividuals(out)
	return out, nil
}

func (r *MemoryIndividualsRepo) SearchIndividuals(_ context.Context, query string) ([]*domain.Individual, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	q := strings.ToLower(query)
	var out []*domain.Individual
	for _, in := range r.individuals {
		if strings.Contains(strings.ToLower(in.FirstName), q) ||
			strings.Contains(strings.ToLower(in.LastName), q) ||
			strings.Contains(strings.ToLower(in.CdcrNumber), q) {
			cp := in
			out = append(out, &cp)
		}
	}
	sortIndividuals(out)
	return out, nil
}

func (r *MemoryIndividualsRepo) ListByHousingUnit(_ context.Context, housingUnit string) ([]*domain.Individual, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Individual
	for _, in := range r.individuals {
		if in.HousingUnit == housingUnit {
			cp := in
			out = append(out, &cp)
		}
	}
	sortIndividuals(out)
	return out, nil
}

func sortIndividuals(out []*domain.Individual) {
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName == out[j].LastName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
}

// ============================================
// Prompt types
// ============================================

// MemoryPromptTypesRepo 通知类别内存Repository
type MemoryPromptTypesRepo struct {
	mu     sync.RWMutex
	nextID int64
	types  map[int64]domain.PromptType
}

func NewMemoryPromptTypesRepo() *MemoryPromptTypesRepo {
	return &MemoryPromptTypesRepo{nextID: 1, types: map[int64]domain.PromptType{}}
}

var _ PromptTypesRepository = (*MemoryPromptTypesRepo)(nil)

// AddPromptType 灌入目录数据，返回分配的ID
func (r *MemoryPromptTypesRepo) AddPromptType(pt domain.PromptType) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	pt.PromptTypeID = id
	r.types[id] = pt
	return id
}

func (r *MemoryPromptTypesRepo) GetPromptType(_ context.Context, promptTypeID int64) (*domain.PromptType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pt, ok := r.types[promptTypeID]
	if !ok {
		return nil, fmt.Errorf("prompt type %d: %w", promptTypeID, domain.ErrNotFound)
	}
	cp := pt
	return &cp, nil
}

func (r *MemoryPromptTypesRepo) ListPromptTypes(_ context.Context) ([]*domain.PromptType, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.PromptType
	for _, pt := range r.types {
		cp := pt
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Category == out[j].Category {
			return out[i].Name < out[j].Name
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

// ============================================
// Users
// ============================================

// MemoryUsersRepo 工作人员内存Repository
type MemoryUsersRepo struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

func NewMemoryUsersRepo() *MemoryUsersRepo {
	return &MemoryUsersRepo{nextID: 1, users: map[int64]domain.User{}}
}

var _ UsersRepository = (*MemoryUsersRepo)(nil)

// AddUser 灌入工作人员数据，返回分配的ID
func (r *MemoryUsersRepo) AddUser(u domain.User) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID
	r.nextID++
	u.UserID = id
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
	}
	r.users[id] = u
	return id
}

func (r *MemoryUsersRepo) GetUser(_ context.Context, userID int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
	}
	cp := u
	return &cp, nil
}

func (r *MemoryUsersRepo) ListOfficers(_ context.Context, facilityID *int64) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.User
	for _, u := range r.users {
		if u.Role != domain.RoleOfficer {
			continue
		}
		if facilityID != nil && u.FacilityID != *facilityID {
			continue
		}
		cp := u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastName == out[j].LastName {
			return out[i].FirstName < out[j].FirstName
		}
		return out[i].LastName < out[j].LastName
	})
	return out, nil
}
