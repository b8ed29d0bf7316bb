package service

import (
	"context"
	"strconv"
	"time"

	"prompt-tracker/internal/domain"
	"prompt-tracker/internal/repository"

	"go.uber.org/zap"
)

// AuditRecorder 审计记录器接口
// Record 永不失败调用方的主操作：写入失败只记日志并吞掉
type AuditRecorder interface {
	Record(ctx context.Context, req RecordRequest)
	RecentActivity(ctx context.Context, req RecentActivityRequest) (*RecentActivityResponse, error)
}

// RecordRequest 一次变更操作的审计事实
// 身份由调用方显式传入，不从任何环境上下文读取
type RecordRequest struct {
	UserID     int64
	Action     domain.AuditAction
	EntityType domain.EntityType // 为空时由 Path 派生
	EntityID   string
	Path       string // 原始请求路径（EntityType 缺省时的派生来源）
	IPAddress  string
	UserAgent  string
}

// RecentActivityRequest 活动流查询
type RecentActivityRequest struct {
	Limit int // <=0 时取默认 10
}

// PromptActivityDetail PROMPT 条目的展示增强（实体已消失时缺省）
type PromptActivityDetail struct {
	IndividualName string `json:"individualName"`
	CdcrNumber     string `json:"cdcrNumber"`
	PromptType     string `json:"promptType"`
	Category       string `json:"category"`
	Status         string `json:"status"`
}

// ActivityItem 活动流条目
type ActivityItem struct {
	EntryID         string                `json:"id"`
	UserID          int64                 `json:"userId"`
	UserDisplayName string                `json:"userName"`
	Action          string                `json:"action"`
	EntityType      string                `json:"entityType"`
	EntityID        string                `json:"entityId"`
	IPAddress       string                `json:"ipAddress,omitempty"`
	UserAgent       string                `json:"userAgent,omitempty"`
	CreatedAt       time.Time             `json:"createdAt"`
	Detail          *PromptActivityDetail `json:"detailedInfo,omitempty"`
}

// RecentActivityResponse 活动流响应
type RecentActivityResponse struct {
	Items []*ActivityItem `json:"items"`
}

// auditService 实现
type auditService struct {
	auditRepo       repository.AuditRepository
	promptsRepo     repository.PromptsRepository
	individualsRepo repository.IndividualsRepository
	promptTypesRepo repository.PromptTypesRepository
	logger          *zap.Logger
}

// NewAuditRecorder 创建 AuditRecorder 实例
func NewAuditRecorder(
	auditRepo repository.AuditRepository,
	promptsRepo repository.PromptsRepository,
	individualsRepo repository.IndividualsRepository,
	promptTypesRepo repository.PromptTypesRepository,
	logger *zap.Logger,
) AuditRecorder {
	return &auditService{
		auditRepo:       auditRepo,
		promptsRepo:     promptsRepo,
		individualsRepo: individualsRepo,
		promptTypesRepo: promptTypesRepo,
		logger:          logger,
	}
}

// Record 追加一条审计条目。失败是可观测性降级而非请求失败：
// 丢一条审计记录比让一次现场签收失败的代价小
func (s *auditService) Record(ctx context.Context, req RecordRequest) {
	entityType := req.EntityType
	if entityType == "" {
		entityType = domain.EntityTypeFromPath(req.Path)
	}

	entry := &domain.AuditLogEntry{
		UserID:     req.UserID,
		Action:     req.Action,
		EntityType: entityType,
		EntityID:   req.EntityID,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
		CreatedAt:  time.Now(),
	}

	if err := s.auditRepo.InsertEntry(ctx, entry); err != nil {
		s.logger.Error("failed to record audit entry",
			zap.String("action", string(req.Action)),
			zap.String("entity_type", string(entityType)),
			zap.String("entity_id", req.EntityID),
			zap.Error(err))
	}
}

// RecentActivity 按时间倒序返回最近条目，附操作人姓名；
// PROMPT 条目再补个体/类别详情（弱引用：实体已消失时跳过详情，条目照常返回）
func (s *auditService) RecentActivity(ctx context.Context, req RecentActivityRequest) (*RecentActivityResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}

	entries, err := s.auditRepo.ListRecent(ctx, limit)
	if err != nil {
		return nil, err
	}

	items := make([]*ActivityItem, 0, len(entries))
	for _, e := range entries {
		item := &ActivityItem{
			EntryID:         e.Entry.EntryID,
			UserID:          e.Entry.UserID,
			UserDisplayName: e.UserDisplayName,
			Action:          string(e.Entry.Action),
			EntityType:      string(e.Entry.EntityType),
			EntityID:        e.Entry.EntityID,
			IPAddress:       e.Entry.IPAddress,
			UserAgent:       e.Entry.UserAgent,
			CreatedAt:       e.Entry.CreatedAt,
		}
		if e.Entry.EntityType == domain.EntityPrompt {
			item.Detail = s.promptDetail(ctx, e.Entry.EntityID)
		}
		items = append(items, item)
	}
	return &RecentActivityResponse{Items: items}, nil
}

func (s *auditService) promptDetail(ctx context.Context, entityID string) *PromptActivityDetail {
	promptID, err := strconv.ParseInt(entityID, 10, 64)
	if err != nil {
		return nil
	}
	p, err := s.promptsRepo.GetPrompt(ctx, promptID)
	if err != nil {
		return nil
	}

	detail := &PromptActivityDetail{Status: string(p.Status)}
	if in, err := s.individualsRepo.GetIndividual(ctx, p.IndividualID); err == nil {
		detail.IndividualName = in.FullName()
		detail.CdcrNumber = in.CdcrNumber
	}
	if pt, err := s.promptTypesRepo.GetPromptType(ctx, p.PromptTypeID); err == nil {
		detail.PromptType = pt.Name
		detail.Category = pt.Category
	}
	return detail
}
