package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"prompt-tracker/internal/domain"
	"prompt-tracker/internal/repository"
	"prompt-tracker/internal/store"

	"go.uber.org/zap"
)

// PromptService 通知生命周期管理服务接口
type PromptService interface {
	CreatePrompt(ctx context.Context, req CreatePromptRequest) (*PromptView, error)
	UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*PromptView, error)
	ListPrompts(ctx context.Context, req ListPromptsRequest) (*ListPromptsResponse, error)
}

// ============================================
// Request/Response DTOs
// ============================================

// CreatePromptRequest 创建通知请求
// UserID 为外部鉴权层下发的工作人员身份，核心信任它、不再鉴权
type CreatePromptRequest struct {
	IndividualID int64
	PromptTypeID int64
	UserID       int64

	Status    string
	Notes     string
	Location  string
	DeviceID  string
	Signature string

	// 请求来源（审计用）
	Path      string
	IPAddress string
	UserAgent string
}

// UpdateStatusRequest 状态转换请求
// 任意状态可转换到任意状态：现场修正优先于严格工作流
type UpdateStatusRequest struct {
	PromptID int64
	UserID   int64

	Status string
	Notes  *string // nil = 保留现值
	// Signature 仅在转换到签名类状态且记录尚无签名时需要
	Signature string

	Path      string
	IPAddress string
	UserAgent string
}

// ListPromptsRequest 查询过滤
type ListPromptsRequest struct {
	Status       string
	IndividualID *int64
	FacilityID   *int64
	Limit        int
}

// IndividualSummary 列表投影中的人员摘要
type IndividualSummary struct {
	IndividualID int64  `json:"id"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	CdcrNumber   string `json:"cdcrNumber"`
	HousingUnit  string `json:"housingUnit"`
}

// PromptTypeSummary 列表投影中的类别摘要
type PromptTypeSummary struct {
	PromptTypeID int64  `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category"`
}

// UserSummary 列表投影中的工作人员摘要
type UserSummary struct {
	UserID      int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	BadgeNumber string `json:"badgeNumber"`
}

// PromptView 读取投影：prompt + 关联摘要
type PromptView struct {
	PromptID   int64              `json:"id"`
	Status     string             `json:"status"`
	Notes      string             `json:"notes,omitempty"`
	Location   string             `json:"location,omitempty"`
	DeviceID   string             `json:"deviceId,omitempty"`
	Signature  string             `json:"signature,omitempty"`
	CreatedAt  time.Time          `json:"createdAt"`
	UpdatedAt  time.Time          `json:"updatedAt"`
	Individual *IndividualSummary `json:"individual,omitempty"`
	PromptType *PromptTypeSummary `json:"promptType,omitempty"`
	User       *UserSummary       `json:"user,omitempty"`
}

// ListPromptsResponse 查询响应（创建时间倒序）
type ListPromptsResponse struct {
	Items []*PromptView `json:"items"`
	Total int           `json:"total"`
}

// ============================================
// 实现
// ============================================

type promptService struct {
	promptsRepo     repository.PromptsRepository
	individualsRepo repository.IndividualsRepository
	promptTypesRepo repository.PromptTypesRepository
	usersRepo       repository.UsersRepository
	audit           AuditRecorder
	devices         store.DeviceSeenStore // 可为 nil（设备心跳为尽力而为）
	logger          *zap.Logger
}

// NewPromptService 创建 PromptService 实例
func NewPromptService(
	promptsRepo repository.PromptsRepository,
	individualsRepo repository.IndividualsRepository,
	promptTypesRepo repository.PromptTypesRepository,
	usersRepo repository.UsersRepository,
	audit AuditRecorder,
	devices store.DeviceSeenStore,
	logger *zap.Logger,
) PromptService {
	return &promptService{
		promptsRepo:     promptsRepo,
		individualsRepo: individualsRepo,
		promptTypesRepo: promptTypesRepo,
		usersRepo:       usersRepo,
		audit:           audit,
		devices:         devices,
		logger:          logger,
	}
}

// validateSignature 签名不变量：当且仅当状态要求签名时载荷存在
func validateSignature(status domain.PromptStatus, signature string) error {
	if status.RequiresSignature() && signature == "" {
		return fmt.Errorf("status %s requires a signature: %w", status, domain.ErrInvalidArgument)
	}
	if !status.RequiresSignature() && signature != "" {
		return fmt.Errorf("status %s must not carry a signature: %w", status, domain.ErrInvalidArgument)
	}
	return nil
}

// CreatePrompt 创建通知：校验引用 → 落库 → 审计（尽力而为）
// 校验失败在任何写入之前返回，不产生部分写
func (s *promptService) CreatePrompt(ctx context.Context, req CreatePromptRequest) (*PromptView, error) {
	status := domain.PromptStatus(req.Status)
	if !status.IsRecognized() {
		return nil, fmt.Errorf("unrecognized status %q: %w", req.Status, domain.ErrInvalidArgument)
	}
	if err := validateSignature(status, req.Signature); err != nil {
		return nil, err
	}

	individual, err := s.individualsRepo.GetIndividual(ctx, req.IndividualID)
	if err != nil {
		return nil, err
	}
	promptType, err := s.promptTypesRepo.GetPromptType(ctx, req.PromptTypeID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	p := &domain.Prompt{
		IndividualID: req.IndividualID,
		PromptTypeID: req.PromptTypeID,
		UserID:       req.UserID,
		FacilityID:   individual.FacilityID,
		Status:       status,
		Notes:        req.Notes,
		Location:     req.Location,
		DeviceID:     req.DeviceID,
		Signature:    req.Signature,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	id, err := s.promptsRepo.CreatePrompt(ctx, p)
	if err != nil {
		return nil, err
	}
	p.PromptID = id

	s.touchDeviceSeen(ctx, req.DeviceID)

	s.audit.Record(ctx, RecordRequest{
		UserID:     req.UserID,
		Action:     domain.ActionCreatePrompt,
		EntityType: domain.EntityPrompt,
		EntityID:   strconv.FormatInt(id, 10),
		Path:       req.Path,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	})

	return s.buildView(ctx, p, individual, promptType), nil
}

// UpdateStatus 状态转换：不限制转换图，重复应用同一状态等效幂等
// 但每次调用都追加一条审计条目（审计不去重）
func (s *promptService) UpdateStatus(ctx context.Context, req UpdateStatusRequest) (*PromptView, error) {
	status := domain.PromptStatus(req.Status)
	if !status.IsRecognized() {
		return nil, fmt.Errorf("unrecognized status %q: %w", req.Status, domain.ErrInvalidArgument)
	}

	p, err := s.promptsRepo.GetPrompt(ctx, req.PromptID)
	if err != nil {
		return nil, err
	}

	// 签名不变量的双向维护：
	// - 转入签名类状态：沿用已存签名或采用新提交的签名，两者皆无则拒绝
	// - 转出签名类状态：清除载荷（PENDING/ATTEMPTED 绝不携带签名）
	signature := p.Signature
	if req.Signature != "" {
		signature = req.Signature
	}
	if status.RequiresSignature() {
		if signature == "" {
			return nil, fmt.Errorf("status %s requires a signature: %w", status, domain.ErrInvalidArgument)
		}
	} else {
		signature = ""
	}

	p.Status = status
	p.Signature = signature
	if req.Notes != nil {
		p.Notes = *req.Notes
	}
	p.UpdatedAt = time.Now()

	if err := s.promptsRepo.UpdatePrompt(ctx, p); err != nil {
		return nil, err
	}

	s.touchDeviceSeen(ctx, p.DeviceID)

	s.audit.Record(ctx, RecordRequest{
		UserID:     req.UserID,
		Action:     domain.UpdateStatusAction(status),
		EntityType: domain.EntityPrompt,
		EntityID:   strconv.FormatInt(p.PromptID, 10),
		Path:       req.Path,
		IPAddress:  req.IPAddress,
		UserAgent:  req.UserAgent,
	})

	return s.buildView(ctx, p, nil, nil), nil
}

// ListPrompts 读取投影：prompt + individual/promptType/user 摘要，创建时间倒序
func (s *promptService) ListPrompts(ctx context.Context, req ListPromptsRequest) (*ListPromptsResponse, error) {
	filters := &repository.PromptFilters{
		IndividualID: req.IndividualID,
		FacilityID:   req.FacilityID,
		Limit:        req.Limit,
	}
	if req.Status != "" {
		status := domain.PromptStatus(req.Status)
		if !status.IsRecognized() {
			return nil, fmt.Errorf("unrecognized status %q: %w", req.Status, domain.ErrInvalidArgument)
		}
		filters.Status = &status
	}

	prompts, err := s.promptsRepo.ListPrompts(ctx, filters)
	if err != nil {
		return nil, err
	}

	items := s.buildViews(ctx, prompts)
	return &ListPromptsResponse{Items: items, Total: len(items)}, nil
}

func individualSummary(in *domain.Individual) *IndividualSummary {
	return &IndividualSummary{
		IndividualID: in.IndividualID,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		CdcrNumber:   in.CdcrNumber,
		HousingUnit:  in.HousingUnit,
	}
}

func promptTypeSummary(pt *domain.PromptType) *PromptTypeSummary {
	return &PromptTypeSummary{
		PromptTypeID: pt.PromptTypeID,
		Name:         pt.Name,
		Category:     pt.Category,
	}
}

func userSummary(u *domain.User) *UserSummary {
	return &UserSummary{
		UserID:      u.UserID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		BadgeNumber: u.BadgeNumber,
	}
}

func promptView(p *domain.Prompt) *PromptView {
	return &PromptView{
		PromptID:  p.PromptID,
		Status:    string(p.Status),
		Notes:     p.Notes,
		Location:  p.Location,
		DeviceID:  p.DeviceID,
		Signature: p.Signature,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// buildView 组装单条投影；关联实体已消失时对应摘要缺省（弱引用，不视为错误）
func (s *promptService) buildView(ctx context.Context, p *domain.Prompt, individual *domain.Individual, promptType *domain.PromptType) *PromptView {
	view := promptView(p)

	if individual == nil {
		individual, _ = s.individualsRepo.GetIndividual(ctx, p.IndividualID)
	}
	if individual != nil {
		view.Individual = individualSummary(individual)
	}

	if promptType == nil {
		promptType, _ = s.promptTypesRepo.GetPromptType(ctx, p.PromptTypeID)
	}
	if promptType != nil {
		view.PromptType = promptTypeSummary(promptType)
	}

	if u, err := s.usersRepo.GetUser(ctx, p.UserID); err == nil {
		view.User = userSummary(u)
	}
	return view
}

// buildViews 组装列表投影。关联摘要按去重后的 ID 各查一次（查不到也缓存，
// 避免对同一消失实体逐行重复点查）
func (s *promptService) buildViews(ctx context.Context, prompts []*domain.Prompt) []*PromptView {
	individuals := map[int64]*IndividualSummary{}
	promptTypes := map[int64]*PromptTypeSummary{}
	users := map[int64]*UserSummary{}

	views := make([]*PromptView, 0, len(prompts))
	for _, p := range prompts {
		view := promptView(p)

		in, ok := individuals[p.IndividualID]
		if !ok {
			if got, err := s.individualsRepo.GetIndividual(ctx, p.IndividualID); err == nil {
				in = individualSummary(got)
			}
			individuals[p.IndividualID] = in
		}
		view.Individual = in

		pt, ok := promptTypes[p.PromptTypeID]
		if !ok {
			if got, err := s.promptTypesRepo.GetPromptType(ctx, p.PromptTypeID); err == nil {
				pt = promptTypeSummary(got)
			}
			promptTypes[p.PromptTypeID] = pt
		}
		view.PromptType = pt

		u, ok := users[p.UserID]
		if !ok {
			if got, err := s.usersRepo.GetUser(ctx, p.UserID); err == nil {
				u = userSummary(got)
			}
			users[p.UserID] = u
		}
		view.User = u

		views = append(views, view)
	}
	return views
}

// touchDeviceSeen 设备在线心跳（尽力而为，失败只记日志）
func (s *promptService) touchDeviceSeen(ctx context.Context, deviceID string) {
	if s.devices == nil || deviceID == "" {
		return
	}
	if err := s.devices.Touch(ctx, deviceID, time.Now()); err != nil {
		s.logger.Warn("failed to touch device last-seen", zap.String("device_id", deviceID), zap.Error(err))
	}
}
