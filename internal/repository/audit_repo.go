package repository

import (
	"context"

	"prompt-tracker/internal/domain"
)

// AuditEntryWithUser 活动流读取投影：条目 + 操作人展示信息
type AuditEntryWithUser struct {
	Entry domain.AuditLogEntry

	// 操作人展示姓名；用户已不存在时为空，条目仍须可渲染
	UserDisplayName string
}

// AuditRepository 审计日志Repository接口
// 只追加：没有更新/删除方法
type AuditRepository interface {
	// InsertEntry 追加一条审计条目
	InsertEntry(ctx context.Context, e *domain.AuditLogEntry) error

	// ListRecent 按创建时间倒序取最近 limit 条，附带操作人展示姓名
	ListRecent(ctx context.Context, limit int) ([]*AuditEntryWithUser, error)
}
