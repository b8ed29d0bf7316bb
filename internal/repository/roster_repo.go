package repository

import (
	"context"

	"prompt-tracker/internal/domain"
)

// 名册引用数据由外部名册管理维护，核心只读。

// IndividualsRepository 收容人员Repository接口（只读）
type IndividualsRepository interface {
	GetIndividual(ctx context.Context, individualID int64) (*domain.Individual, error)

	// ListIndividuals facilityID 为 nil 时返回全部
	ListIndividuals(ctx context.Context, facilityID *int64) ([]*domain.Individual, error)

	// SearchIndividuals 按姓名或编号模糊检索
	SearchIndividuals(ctx context.Context, query string) ([]*domain.Individual, error)

	// ListByHousingUnit 按居住单元查询
	ListByHousingUnit(ctx context.Context, housingUnit string) ([]*domain.Individual, error)
}

// PromptTypesRepository 通知类别Repository接口（只读目录）
type PromptTypesRepository interface {
	GetPromptType(ctx context.Context, promptTypeID int64) (*domain.PromptType, error)
	ListPromptTypes(ctx context.Context) ([]*domain.PromptType, error)
}

// UsersRepository 工作人员Repository接口（只读）
type UsersRepository interface {
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// ListOfficers 列出 OFFICER 角色的工作人员；facilityID 为 nil 时不过滤
	ListOfficers(ctx context.Context, facilityID *int64) ([]*domain.User, error)
}
