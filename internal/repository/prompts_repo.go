package repository

import (
	"context"
	"time"

	"prompt-tracker/internal/domain"
)

// PromptFilters 通知记录查询过滤器
type PromptFilters struct {
	Status       *domain.PromptStatus // 处置状态
	IndividualID *int64               // 收容人员ID
	UserID       *int64               // 工作人员ID
	FacilityID   *int64               // 设施ID
	StartTime    *time.Time           // 创建时间下界（含）
	EndTime      *time.Time           // 创建时间上界（含）
	Limit        int                  // 0 = 不限制
}

// PromptsRepository 通知记录Repository接口
// 没有删除方法：处置历史必须保持可审计
type PromptsRepository interface {
	// GetPrompt 获取单条通知记录
	GetPrompt(ctx context.Context, promptID int64) (*domain.Prompt, error)

	// ListPrompts 按过滤条件查询，固定按创建时间倒序
	ListPrompts(ctx context.Context, filters *PromptFilters) ([]*domain.Prompt, error)

	// CreatePrompt 创建通知记录，返回分配的单调递增ID
	CreatePrompt(ctx context.Context, p *domain.Prompt) (int64, error)

	// UpdatePrompt 更新状态/备注/签名/更新时间（last-writer-wins）
	UpdatePrompt(ctx context.Context, p *domain.Prompt) error
}
