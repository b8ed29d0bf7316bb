package repository

import (
	"context"
	"database/sql"
	"fmt"

	"prompt-tracker/internal/domain"
)

// 名册引用数据的只读Repository实现（individuals / prompt_types / users）。
// 写路径属于外部名册管理，不在本服务内。

// ============================================
// Individuals
// ============================================

// PostgresIndividualsRepository 收容人员Repository实现
type PostgresIndividualsRepository struct {
	db *sql.DB
}

func NewPostgresIndividualsRepository(db *sql.DB) *PostgresIndividualsRepository {
	return &PostgresIndividualsRepository{db: db}
}

var _ IndividualsRepository = (*PostgresIndividualsRepository)(nil)

const individualColumns = `
	individual_id,
	cdcr_number,
	first_name,
	last_name,
	facility_id,
	COALESCE(housing_unit, '') as housing_unit,
	created_at,
	updated_at`

func scanIndividual(row interface{ Scan(...any) error }) (*domain.Individual, error) {
	var in domain.Individual
	err := row.Scan(
		&in.IndividualID,
		&in.CdcrNumber,
		&in.FirstName,
		&in.LastName,
		&in.FacilityID,
		&in.HousingUnit,
		&in.CreatedAt,
		&in.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &in, nil
}

func (r *PostgresIndividualsRepository) GetIndividual(ctx context.Context, individualID int64) (*domain.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE individual_id = $1`

	in, err := scanIndividual(r.db.QueryRowContext(ctx, query, individualID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("individual %d: %w", individualID, domain.ErrNotFound)
		}
		return nil, storageErr("get individual", err)
	}
	return in, nil
}

func (r *PostgresIndividualsRepository) ListIndividuals(ctx context.Context, facilityID *int64) ([]*domain.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals`
	args := []any{}
	if facilityID != nil {
		query += " WHERE facility_id = $1"
		args = append(args, *facilityID)
	}
	query += " ORDER BY last_name, first_name"

	return r.queryIndividuals(ctx, "list individuals", query, args...)
}

func (r *PostgresIndividualsRepository) SearchIndividuals(ctx context.Context, q string) ([]*domain.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals
		WHERE first_name ILIKE $1 OR last_name ILIKE $1 OR cdcr_number ILIKE $1
		ORDER BY last_name, first_name`
	return r.queryIndividuals(ctx, "search individuals", query, "%"+q+"%")
}

func (r *PostgresIndividualsRepository) ListByHousingUnit(ctx context.Context, housingUnit string) ([]*domain.Individual, error) {
	query := `SELECT ` + individualColumns + ` FROM individuals WHERE housing_unit = $1 ORDER BY last_name, first_name`
	return r.queryIndividuals(ctx, "list individuals by unit", query, housingUnit)
}

func (r *PostgresIndividualsRepository) queryIndividuals(ctx context.Context, op, query string, args ...any) ([]*domain.Individual, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr(op, err)
	}
	defer rows.Close()

	var out []*domain.Individual
	for rows.Next() {
		in, err := scanIndividual(rows)
		if err != nil {
			return nil, storageErr(op, err)
		}
		out = append(out, in)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr(op, err)
	}
	return out, nil
}

// ============================================
// Prompt types
// ============================================

// PostgresPromptTypesRepository 通知类别Repository实现
type PostgresPromptTypesRepository struct {
	db *sql.DB
}

func NewPostgresPromptTypesRepository(db *sql.DB) *PostgresPromptTypesRepository {
	return &PostgresPromptTypesRepository{db: db}
}

var _ PromptTypesRepository = (*PostgresPromptTypesRepository)(nil)

func (r *PostgresPromptTypesRepository) GetPromptType(ctx context.Context, promptTypeID int64) (*domain.PromptType, error) {
	query := `SELECT prompt_type_id, name, COALESCE(description, ''), category FROM prompt_types WHERE prompt_type_id = $1`

	var pt domain.PromptType
	err := r.db.QueryRowContext(ctx, query, promptTypeID).Scan(&pt.PromptTypeID, &pt.Name, &pt.Description, &pt.Category)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("prompt type %d: %w", promptTypeID, domain.ErrNotFound)
		}
		return nil, storageErr("get prompt type", err)
	}
	return &pt, nil
}

func (r *PostgresPromptTypesRepository) ListPromptTypes(ctx context.Context) ([]*domain.PromptType, error) {
	query := `SELECT prompt_type_id, name, COALESCE(description, ''), category FROM prompt_types ORDER BY category, name`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list prompt types", err)
	}
	defer rows.Close()

	var out []*domain.PromptType
	for rows.Next() {
		var pt domain.PromptType
		if err := rows.Scan(&pt.PromptTypeID, &pt.Name, &pt.Description, &pt.Category); err != nil {
			return nil, storageErr("list prompt types", err)
		}
		out = append(out, &pt)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list prompt types", err)
	}
	return out, nil
}

// ============================================
// Users
// ============================================

// PostgresUsersRepository 工作人员Repository实现
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	user_id,
	username,
	first_name,
	last_name,
	COALESCE(badge_number, '') as badge_number,
	role,
	facility_id,
	created_at,
	updated_at`

func scanUser(row interface{ Scan(...any) error }) (*domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.UserID,
		&u.Username,
		&u.FirstName,
		&u.LastName,
		&u.BadgeNumber,
		&u.Role,
		&u.FacilityID,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *PostgresUsersRepository) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	u, err := scanUser(r.db.QueryRowContext(ctx, query, userID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %d: %w", userID, domain.ErrNotFound)
		}
		return nil, storageErr("get user", err)
	}
	return u, nil
}

func (r *PostgresUsersRepository) ListOfficers(ctx context.Context, facilityID *int64) ([]*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1`
	args := []any{domain.RoleOfficer}
	if facilityID != nil {
		query += " AND facility_id = $2"
		args = append(args, *facilityID)
	}
	query += " ORDER BY last_name, first_name"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list officers", err)
	}
	defer rows.Close()

	var out []*domain.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, storageErr("list officers", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("list officers", err)
	}
	return out, nil
}
