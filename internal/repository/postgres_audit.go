package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"prompt-tracker/internal/domain"
)

// PostgresAuditRepository 审计日志Repository实现
// 只追加：表上没有 UPDATE/DELETE 路径
type PostgresAuditRepository struct {
	db *sql.DB
}

// NewPostgresAuditRepository 创建审计日志Repository
func NewPostgresAuditRepository(db *sql.DB) *PostgresAuditRepository {
	return &PostgresAuditRepository{db: db}
}

// 确保实现了接口
var _ AuditRepository = (*PostgresAuditRepository)(nil)

// InsertEntry 追加一条审计条目
func (r *PostgresAuditRepository) InsertEntry(ctx context.Context, e *domain.AuditLogEntry) error {
	if e.EntryID == "" {
		e.EntryID = uuid.New().String()
	}

	query := `
		INSERT INTO audit_logs (
			entry_id, user_id, action, entity_type, entity_id,
			ip_address, user_agent, created_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), $8)`

	_, err := r.db.ExecContext(ctx, query,
		e.EntryID,
		e.UserID,
		string(e.Action),
		string(e.EntityType),
		e.EntityID,
		e.IPAddress,
		e.UserAgent,
		e.CreatedAt,
	)
	if err != nil {
		return storageErr("insert audit entry", err)
	}
	return nil
}

// ListRecent 按创建时间倒序取最近 limit 条，LEFT JOIN users 取展示姓名
// 条目弱引用操作人：用户已被移除时姓名为空，条目照常返回
func (r *PostgresAuditRepository) ListRecent(ctx context.Context, limit int) ([]*AuditEntryWithUser, error) {
	query := `
		SELECT
			a.entry_id,
			a.user_id,
			a.action,
			a.entity_type,
			a.entity_id,
			COALESCE(a.ip_address, '') as ip_address,
			COALESCE(a.user_agent, '') as user_agent,
			a.created_at,
			COALESCE(u.first_name || ' ' || u.last_name, '') as display_name
		FROM audit_logs a
		LEFT JOIN users u ON u.user_id = a.user_id
		ORDER BY a.created_at DESC, a.entry_id DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, storageErr("list recent audit entries", err)
	}
	defer rows.Close()

	var entries []*AuditEntryWithUser
	for rows.Next() {
		var e AuditEntryWithUser
		err := rows.Scan(
			&e.Entry.EntryID,
			&e.Entry.UserID,
			&e.Entry.Action,
			&e.Entry.EntityType,
			&e.Entry.EntityID,
			&e.Entry.IPAddress,
			&e.Entry.UserAgent,
			&e.Entry.CreatedAt,
			&e.UserDisplayName,
		)
		if err != nil {
			return nil, storageErr("scan audit entry", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list recent audit entries", err)
	}
	return entries, nil
}
