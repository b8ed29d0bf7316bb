package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"prompt-tracker/internal/domain"
	"prompt-tracker/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// promptFixture 组装内存依赖的 PromptService，预灌一名个体/一个类别/一名工作人员
type promptFixture struct {
	service      PromptService
	audit        AuditRecorder
	auditRepo    repository.AuditRepository
	promptsRepo  *repository.MemoryPromptsRepo
	individualID int64
	promptTypeID int64
	userID       int64
}

func newPromptFixture(t *testing.T) *promptFixture {
	t.Helper()

	individuals := repository.NewMemoryIndividualsRepo()
	types := repository.NewMemoryPromptTypesRepo()
	users := repository.NewMemoryUsersRepo()
	prompts := repository.NewMemoryPromptsRepo()
	auditRepo := repository.NewMemoryAuditRepo(users)

	individualID := individuals.AddIndividual(domain.Individual{
		CdcrNumber: "A12345", FirstName: "John", LastName: "Doe",
		FacilityID: 1, HousingUnit: "A-1",
	})
	promptTypeID := types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})
	userID := users.AddUser(domain.User{
		Username: "officer1", FirstName: "Dana", LastName: "Reyes",
		BadgeNumber: "B-1042", Role: domain.RoleOfficer, FacilityID: 1,
	})

	logger := zap.NewNop()
	audit := NewAuditRecorder(auditRepo, prompts, individuals, types, logger)
	svc := NewPromptService(prompts, individuals, types, users, audit, nil, logger)

	return &promptFixture{
		service:      svc,
		audit:        audit,
		auditRepo:    auditRepo,
		promptsRepo:  prompts,
		individualID: individualID,
		promptTypeID: promptTypeID,
		userID:       userID,
	}
}

func (f *promptFixture) createReq(status, signature string) CreatePromptRequest {
	return CreatePromptRequest{
		IndividualID: f.individualID,
		PromptTypeID: f.promptTypeID,
		UserID:       f.userID,
		Status:       status,
		Signature:    signature,
		Path:         "/api/prompts",
	}
}

func (f *promptFixture) auditCount(t *testing.T) int {
	t.Helper()
	entries, err := f.auditRepo.ListRecent(context.Background(), 1000)
	require.NoError(t, err)
	return len(entries)
}

func TestCreatePrompt_Basic(t *testing.T) {
	f := newPromptFixture(t)

	view, err := f.service.CreatePrompt(context.Background(), f.createReq("PENDING", ""))
	require.NoError(t, err)
	require.NotZero(t, view.PromptID)
	require.Equal(t, "PENDING", view.Status)
	require.NotNil(t, view.Individual)
	require.Equal(t, "A12345", view.Individual.CdcrNumber)
	require.NotNil(t, view.PromptType)
	require.Equal(t, "Meal", view.PromptType.Name)
	require.NotNil(t, view.User)
	require.Equal(t, "B-1042", view.User.BadgeNumber)

	// 创建恰好追加一条审计条目
	require.Equal(t, 1, f.auditCount(t))
}

func TestCreatePrompt_SignatureInvariant(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	// 签名类状态缺签名：拒绝
	_, err := f.service.CreatePrompt(ctx, f.createReq("SIGNED", ""))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.service.CreatePrompt(ctx, f.createReq("COMPLETED", ""))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	// 非签名类状态带签名：同样拒绝
	_, err = f.service.CreatePrompt(ctx, f.createReq("PENDING", "base64sig"))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	_, err = f.service.CreatePrompt(ctx, f.createReq("REFUSED", "base64sig"))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	// 校验在任何写入之前失败：无审计条目产生
	require.Equal(t, 0, f.auditCount(t))

	view, err := f.service.CreatePrompt(ctx, f.createReq("SIGNED", "base64sig"))
	require.NoError(t, err)
	require.Equal(t, "base64sig", view.Signature)
}

func TestCreatePrompt_UnknownStatus(t *testing.T) {
	f := newPromptFixture(t)

	_, err := f.service.CreatePrompt(context.Background(), f.createReq("DELIVERED", ""))
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestCreatePrompt_MissingReferences(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	req := f.createReq("PENDING", "")
	req.IndividualID = 999
	_, err := f.service.CreatePrompt(ctx, req)
	require.ErrorIs(t, err, domain.ErrNotFound)

	req = f.createReq("PENDING", "")
	req.PromptTypeID = 999
	_, err = f.service.CreatePrompt(ctx, req)
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateStatus_AnyToAny(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	view, err := f.service.CreatePrompt(ctx, f.createReq("PENDING", ""))
	require.NoError(t, err)

	// 转入签名类状态需要签名
	updated, err := f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "SIGNED", Signature: "sig-1",
	})
	require.NoError(t, err)
	require.Equal(t, "SIGNED", updated.Status)
	require.Equal(t, "sig-1", updated.Signature)

	// 终态仍可被修正；转出签名类状态时清除签名载荷
	updated, err = f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "REFUSED",
	})
	require.NoError(t, err)
	require.Equal(t, "REFUSED", updated.Status)
	require.Empty(t, updated.Signature)

	// 回到 PENDING 也可以
	updated, err = f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "PENDING",
	})
	require.NoError(t, err)
	require.Equal(t, "PENDING", updated.Status)
}

func TestUpdateStatus_SignatureRequired(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	view, err := f.service.CreatePrompt(ctx, f.createReq("PENDING", ""))
	require.NoError(t, err)

	// 既无已存签名也无新签名：拒绝
	_, err = f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "SIGNED",
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	// 已存签名可沿用（SIGNED -> COMPLETED 不需要重新提交）
	_, err = f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "SIGNED", Signature: "sig-1",
	})
	require.NoError(t, err)

	updated, err := f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "COMPLETED",
	})
	require.NoError(t, err)
	require.Equal(t, "sig-1", updated.Signature)
}

func TestUpdateStatus_IdempotentButAudited(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	view, err := f.service.CreatePrompt(ctx, f.createReq("PENDING", ""))
	require.NoError(t, err)
	require.Equal(t, 1, f.auditCount(t))

	// 重复应用同一状态：记录状态不变，但每次调用都追加审计条目
	for i := 0; i < 3; i++ {
		updated, err := f.service.UpdateStatus(ctx, UpdateStatusRequest{
			PromptID: view.PromptID, UserID: f.userID, Status: "ATTEMPTED",
		})
		require.NoError(t, err)
		require.Equal(t, "ATTEMPTED", updated.Status)
	}
	require.Equal(t, 4, f.auditCount(t))
}

func TestUpdateStatus_NotesSemantics(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	req := f.createReq("PENDING", "")
	req.Notes = "first attempt at cell front"
	view, err := f.service.CreatePrompt(ctx, req)
	require.NoError(t, err)

	// nil Notes：保留现值
	updated, err := f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "ATTEMPTED",
	})
	require.NoError(t, err)
	require.Equal(t, "first attempt at cell front", updated.Notes)

	// 显式空串：清空
	empty := ""
	updated, err = f.service.UpdateStatus(ctx, UpdateStatusRequest{
		PromptID: view.PromptID, UserID: f.userID, Status: "ATTEMPTED", Notes: &empty,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Notes)
}

func TestUpdateStatus_NotFound(t *testing.T) {
	f := newPromptFixture(t)

	_, err := f.service.UpdateStatus(context.Background(), UpdateStatusRequest{
		PromptID: 999, UserID: f.userID, Status: "PENDING",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListPrompts_OrderAndFilter(t *testing.T) {
	f := newPromptFixture(t)
	ctx := context.Background()

	first, err := f.service.CreatePrompt(ctx, f.createReq("PENDING", ""))
	require.NoError(t, err)
	second, err := f.service.CreatePrompt(ctx, f.createReq("REFUSED", ""))
	require.NoError(t, err)

	resp, err := f.service.ListPrompts(ctx, ListPromptsRequest{})
	require.NoError(t, err)
	require.Equal(t, 2, resp.Total)
	// 创建时间倒序（同刻按 ID 倒序）
	require.Equal(t, second.PromptID, resp.Items[0].PromptID)
	require.Equal(t, first.PromptID, resp.Items[1].PromptID)

	resp, err = f.service.ListPrompts(ctx, ListPromptsRequest{Status: "REFUSED"})
	require.NoError(t, err)
	require.Equal(t, 1, resp.Total)
	require.Equal(t, second.PromptID, resp.Items[0].PromptID)

	_, err = f.service.ListPrompts(ctx, ListPromptsRequest{Status: "DELIVERED"})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

// countingIndividualsRepo 统计点查次数
type countingIndividualsRepo struct {
	repository.IndividualsRepository
	gets int
}

func (r *countingIndividualsRepo) GetIndividual(ctx context.Context, individualID int64) (*domain.Individual, error) {
	r.gets++
	return r.IndividualsRepository.GetIndividual(ctx, individualID)
}

func TestListPrompts_DeduplicatesSummaryLookups(t *testing.T) {
	individuals := repository.NewMemoryIndividualsRepo()
	types := repository.NewMemoryPromptTypesRepo()
	users := repository.NewMemoryUsersRepo()
	prompts := repository.NewMemoryPromptsRepo()
	auditRepo := repository.NewMemoryAuditRepo(users)

	individualID := individuals.AddIndividual(domain.Individual{CdcrNumber: "A12345", FirstName: "John", LastName: "Doe", FacilityID: 1})
	promptTypeID := types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})
	userID := users.AddUser(domain.User{Username: "officer1", Role: domain.RoleOfficer, FacilityID: 1})

	counting := &countingIndividualsRepo{IndividualsRepository: individuals}
	logger := zap.NewNop()
	audit := NewAuditRecorder(auditRepo, prompts, individuals, types, logger)
	svc := NewPromptService(prompts, counting, types, users, audit, nil, logger)

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := svc.CreatePrompt(ctx, CreatePromptRequest{
			IndividualID: individualID, PromptTypeID: promptTypeID, UserID: userID, Status: "PENDING",
		})
		require.NoError(t, err)
	}

	// 列表投影对同一关联实体只点查一次
	counting.gets = 0
	resp, err := svc.ListPrompts(ctx, ListPromptsRequest{})
	require.NoError(t, err)
	require.Equal(t, 5, resp.Total)
	require.Equal(t, 1, counting.gets)
	for _, item := range resp.Items {
		require.NotNil(t, item.Individual)
		require.Equal(t, "A12345", item.Individual.CdcrNumber)
	}
}

// failingAuditRepo 模拟审计存储故障
type failingAuditRepo struct{}

func (failingAuditRepo) InsertEntry(context.Context, *domain.AuditLogEntry) error {
	return fmt.Errorf("audit store down: %w", domain.ErrUnavailable)
}

func (failingAuditRepo) ListRecent(context.Context, int) ([]*repository.AuditEntryWithUser, error) {
	return nil, errors.New("audit store down")
}

func TestCreatePrompt_AuditFailureSwallowed(t *testing.T) {
	individuals := repository.NewMemoryIndividualsRepo()
	types := repository.NewMemoryPromptTypesRepo()
	users := repository.NewMemoryUsersRepo()
	prompts := repository.NewMemoryPromptsRepo()

	individualID := individuals.AddIndividual(domain.Individual{CdcrNumber: "B00001", FirstName: "Jane", LastName: "Roe", FacilityID: 1})
	promptTypeID := types.AddPromptType(domain.PromptType{Name: "Yard", Category: "daily"})
	userID := users.AddUser(domain.User{Username: "officer2", Role: domain.RoleOfficer, FacilityID: 1})

	logger := zap.NewNop()
	audit := NewAuditRecorder(failingAuditRepo{}, prompts, individuals, types, logger)
	svc := NewPromptService(prompts, individuals, types, users, audit, nil, logger)

	// 审计写入失败不影响主操作
	view, err := svc.CreatePrompt(context.Background(), CreatePromptRequest{
		IndividualID: individualID, PromptTypeID: promptTypeID, UserID: userID, Status: "PENDING",
	})
	require.NoError(t, err)
	require.NotZero(t, view.PromptID)
}
