package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"prompt-tracker/internal/domain"
)

// PostgresPromptsRepository 通知记录Repository实现
type PostgresPromptsRepository struct {
	db *sql.DB
}

// NewPostgresPromptsRepository 创建通知记录Repository
func NewPostgresPromptsRepository(db *sql.DB) *PostgresPromptsRepository {
	return &PostgresPromptsRepository{db: db}
}

// 确保实现了接口
var _ PromptsRepository = (*PostgresPromptsRepository)(nil)

const promptColumns = `
	prompt_id,
	individual_id,
	prompt_type_id,
	user_id,
	facility_id,
	status,
	COALESCE(notes, '') as notes,
	COALESCE(location, '') as location,
	COALESCE(device_id, '') as device_id,
	COALESCE(signature, '') as signature,
	created_at,
	updated_at`

func scanPrompt(row interface{ Scan(...any) error }) (*domain.Prompt, error) {
	var p domain.Prompt
	err := row.Scan(
		&p.PromptID,
		&p.IndividualID,
		&p.PromptTypeID,
		&p.UserID,
		&p.FacilityID,
		&p.Status,
		&p.Notes,
		&p.Location,
		&p.DeviceID,
		&p.Signature,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// GetPrompt 获取单条通知记录
func (r *PostgresPromptsRepository) GetPrompt(ctx context.Context, promptID int64) (*domain.Prompt, error) {
	query := `SELECT ` + promptColumns + ` FROM prompts WHERE prompt_id = $1`

	p, err := scanPrompt(r.db.QueryRowContext(ctx, query, promptID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("prompt %d: %w", promptID, domain.ErrNotFound)
		}
		return nil, storageErr("get prompt", err)
	}
	return p, nil
}

// buildWhereClause 构建 WHERE 子句（ListPrompts 使用）
func (r *PostgresPromptsRepository) buildWhereClause(filters *PromptFilters, args *[]any, argN *int) []string {
	where := []string{}
	if filters == nil {
		return where
	}
	if filters.Status != nil {
		where = append(where, fmt.Sprintf("status = $%d", *argN))
		*args = append(*args, string(*filters.Status))
		*argN++
	}
	if filters.IndividualID != nil {
		where = append(where, fmt.Sprintf("individual_id = $%d", *argN))
		*args = append(*args, *filters.IndividualID)
		*argN++
	}
	if filters.UserID != nil {
		where = append(where, fmt.Sprintf("user_id = $%d", *argN))
		*args = append(*args, *filters.UserID)
		*argN++
	}
	if filters.FacilityID != nil {
		where = append(where, fmt.Sprintf("facility_id = $%d", *argN))
		*args = append(*args, *filters.FacilityID)
		*argN++
	}
	// 时间区间为闭区间 [start, end]
	if filters.StartTime != nil {
		where = append(where, fmt.Sprintf("created_at >= $%d", *argN))
		*args = append(*args, *filters.StartTime)
		*argN++
	}
	if filters.EndTime != nil {
		where = append(where, fmt.Sprintf("created_at <= $%d", *argN))
		*args = append(*args, *filters.EndTime)
		*argN++
	}
	return where
}

// ListPrompts 按过滤条件查询，按创建时间倒序
func (r *PostgresPromptsRepository) ListPrompts(ctx context.Context, filters *PromptFilters) ([]*domain.Prompt, error) {
	args := []any{}
	argN := 1
	where := r.buildWhereClause(filters, &args, &argN)

	query := `SELECT ` + promptColumns + ` FROM prompts`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, prompt_id DESC"
	if filters != nil && filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argN)
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list prompts", err)
	}
	defer rows.Close()

	var prompts []*domain.Prompt
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, storageErr("scan prompt", err)
		}
		prompts = append(prompts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list prompts", err)
	}
	return prompts, nil
}

// CreatePrompt 创建通知记录，返回分配的ID
func (r *PostgresPromptsRepository) CreatePrompt(ctx context.Context, p *domain.Prompt) (int64, error) {
	query := `
		INSERT INTO prompts (
			individual_id, prompt_type_id, user_id, facility_id,
			status, notes, location, device_id, signature,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), NULLIF($9, ''), $10, $11)
		RETURNING prompt_id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		p.IndividualID,
		p.PromptTypeID,
		p.UserID,
		p.FacilityID,
		string(p.Status),
		p.Notes,
		p.Location,
		p.DeviceID,
		p.Signature,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&id)
	if err != nil {
		return 0, storageErr("create prompt", err)
	}
	return id, nil
}

// UpdatePrompt 更新状态/备注/签名/更新时间
func (r *PostgresPromptsRepository) UpdatePrompt(ctx context.Context, p *domain.Prompt) error {
	query := `
		UPDATE prompts
		SET status = $2,
		    notes = NULLIF($3, ''),
		    signature = NULLIF($4, ''),
		    updated_at = $5
		WHERE prompt_id = $1`

	res, err := r.db.ExecContext(ctx, query,
		p.PromptID,
		string(p.Status),
		p.Notes,
		p.Signature,
		p.UpdatedAt,
	)
	if err != nil {
		return storageErr("update prompt", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("prompt %d: %w", p.PromptID, domain.ErrNotFound)
	}
	return nil
}
