package service

import (
	"context"
	"testing"
	"time"

	"prompt-tracker/internal/domain"
	"prompt-tracker/internal/repository"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// reportFixture 组装内存依赖的 ReportService，可直接灌入带时间戳的记录
type reportFixture struct {
	service     ReportService
	prompts     *repository.MemoryPromptsRepo
	individuals *repository.MemoryIndividualsRepo
	types       *repository.MemoryPromptTypesRepo
	users       *repository.MemoryUsersRepo
}

func newReportFixture(t *testing.T) *reportFixture {
	t.Helper()

	f := &reportFixture{
		prompts:     repository.NewMemoryPromptsRepo(),
		individuals: repository.NewMemoryIndividualsRepo(),
		types:       repository.NewMemoryPromptTypesRepo(),
		users:       repository.NewMemoryUsersRepo(),
	}
	f.service = NewReportService(f.prompts, f.individuals, f.types, f.users, zap.NewNop())
	return f
}

func (f *reportFixture) addPrompt(t *testing.T, p domain.Prompt) int64 {
	t.Helper()
	id, err := f.prompts.CreatePrompt(context.Background(), &p)
	require.NoError(t, err)
	return id
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(time.RFC3339, s)
	require.NoError(t, err)
	return d
}

func TestPromptCompletion_TotalsAndByDate(t *testing.T) {
	f := newReportFixture(t)

	individualID := f.individuals.AddIndividual(domain.Individual{CdcrNumber: "A12345", FirstName: "John", LastName: "Doe", FacilityID: 1})
	typeID := f.types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})

	base := domain.Prompt{IndividualID: individualID, PromptTypeID: typeID, UserID: 1, FacilityID: 1}

	// day 1: signed + pending, day 2: refused + completed
	p := base
	p.Status = domain.StatusSigned
	p.CreatedAt = day(t, "2025-03-01T08:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	p = base
	p.Status = domain.StatusPending
	p.CreatedAt = day(t, "2025-03-01T12:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	p = base
	p.Status = domain.StatusRefused
	p.CreatedAt = day(t, "2025-03-02T09:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	p = base
	p.Status = domain.StatusCompleted
	p.CreatedAt = day(t, "2025-03-02T10:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	// 区间之外的记录不计入
	p = base
	p.Status = domain.StatusSigned
	p.CreatedAt = day(t, "2025-04-01T10:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	report, err := f.service.PromptCompletion(context.Background(), ReportRequest{
		StartDate: "2025-03-01", EndDate: "2025-03-02",
	})
	require.NoError(t, err)

	require.Equal(t, 4, report.TotalPrompts)
	require.Equal(t, 2, report.CompletedPrompts) // SIGNED + COMPLETED
	require.Equal(t, 1, report.PendingPrompts)
	require.Equal(t, 1, report.RefusedPrompts)
	require.Equal(t, 50.0, report.CompletionRate)

	// 按日分解升序且与总量对账
	require.Len(t, report.ByDate, 2)
	require.Equal(t, "2025-03-01", report.ByDate[0].Date)
	require.Equal(t, "2025-03-02", report.ByDate[1].Date)
	require.Equal(t, 1, report.ByDate[0].Completed)
	require.Equal(t, 1, report.ByDate[0].Pending)
	require.Equal(t, 1, report.ByDate[1].Completed)
	require.Equal(t, 1, report.ByDate[1].Refused)

	sumCompleted := report.ByDate[0].Completed + report.ByDate[1].Completed
	require.Equal(t, report.CompletedPrompts, sumCompleted)
}

func TestPromptCompletion_EmptyRange(t *testing.T) {
	f := newReportFixture(t)

	report, err := f.service.PromptCompletion(context.Background(), ReportRequest{
		StartDate: "2025-03-01", EndDate: "2025-03-02",
	})
	require.NoError(t, err)
	require.Equal(t, 0, report.TotalPrompts)
	require.Equal(t, 0.0, report.CompletionRate) // 零除保护
	require.Empty(t, report.ByDate)
}

func TestReports_InvalidDates(t *testing.T) {
	f := newReportFixture(t)
	ctx := context.Background()

	cases := []ReportRequest{
		{StartDate: "", EndDate: "2025-03-02"},
		{StartDate: "2025-03-01", EndDate: ""},
		{StartDate: "not-a-date", EndDate: "2025-03-02"},
		{StartDate: "2025-03-02", EndDate: "2025-03-01"}, // end < start
	}
	for _, req := range cases {
		_, err := f.service.PromptCompletion(ctx, req)
		require.ErrorIs(t, err, domain.ErrInvalidArgument, "req=%+v", req)
		_, err = f.service.IndividualActivity(ctx, req)
		require.ErrorIs(t, err, domain.ErrInvalidArgument, "req=%+v", req)
		_, err = f.service.StaffPerformance(ctx, req)
		require.ErrorIs(t, err, domain.ErrInvalidArgument, "req=%+v", req)
	}
}

func TestIndividualActivity_RosterIncludesZeroRows(t *testing.T) {
	f := newReportFixture(t)

	activeID := f.individuals.AddIndividual(domain.Individual{CdcrNumber: "A12345", FirstName: "John", LastName: "Doe", FacilityID: 1})
	f.individuals.AddIndividual(domain.Individual{CdcrNumber: "B22222", FirstName: "Mary", LastName: "Quiet", FacilityID: 1})
	mealID := f.types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})
	yardID := f.types.AddPromptType(domain.PromptType{Name: "Yard", Category: "daily"})

	base := domain.Prompt{IndividualID: activeID, UserID: 1, FacilityID: 1}

	p := base
	p.PromptTypeID = mealID
	p.Status = domain.StatusSigned
	p.CreatedAt = day(t, "2025-03-01T08:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	p = base
	p.PromptTypeID = yardID
	p.Status = domain.StatusRefused
	p.CreatedAt = day(t, "2025-03-02T08:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	rows, err := f.service.IndividualActivity(context.Background(), ReportRequest{
		StartDate: "2025-03-01", EndDate: "2025-03-31",
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// 名册排序：Doe 在 Quiet 之前
	doe := rows[0]
	quiet := rows[1]
	require.Equal(t, "Doe", doe.LastName)
	require.Equal(t, "Quiet", quiet.LastName)

	require.Equal(t, 2, doe.TotalPrompts)
	require.Equal(t, 50.0, doe.CompletionRate)
	require.NotNil(t, doe.LastPromptDate)
	require.Equal(t, day(t, "2025-03-02T08:00:00Z"), *doe.LastPromptDate)
	require.Len(t, doe.PromptsByType, 2)
	require.Equal(t, "Meal", doe.PromptsByType[0].Type)
	require.Equal(t, 100.0, doe.PromptsByType[0].CompletionRate)
	require.Equal(t, "Yard", doe.PromptsByType[1].Type)
	require.Equal(t, 0.0, doe.PromptsByType[1].CompletionRate)

	// 区间内零记录：零计数行照常出现
	require.Equal(t, 0, quiet.TotalPrompts)
	require.Equal(t, 0.0, quiet.CompletionRate)
	require.Nil(t, quiet.LastPromptDate)
	require.Empty(t, quiet.PromptsByType)
}

func TestStaffPerformance_ResponseTime(t *testing.T) {
	f := newReportFixture(t)

	officerID := f.users.AddUser(domain.User{Username: "officer1", FirstName: "Dana", LastName: "Reyes", BadgeNumber: "B-1042", Role: domain.RoleOfficer, FacilityID: 1})
	f.users.AddUser(domain.User{Username: "admin1", FirstName: "Alex", LastName: "Boss", Role: domain.RoleAdmin, FacilityID: 1})
	idleID := f.users.AddUser(domain.User{Username: "officer3", FirstName: "Pat", LastName: "Idle", Role: domain.RoleOfficer, FacilityID: 1})
	typeID := f.types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})

	base := domain.Prompt{IndividualID: 1, PromptTypeID: typeID, UserID: officerID, FacilityID: 1}

	// 终态记录：创建到终态更新间隔 30min 与 10min -> 平均 20.0
	p := base
	p.Status = domain.StatusSigned
	p.CreatedAt = day(t, "2025-03-01T08:00:00Z")
	p.UpdatedAt = p.CreatedAt.Add(30 * time.Minute)
	f.addPrompt(t, p)

	p = base
	p.Status = domain.StatusRefused
	p.CreatedAt = day(t, "2025-03-01T09:00:00Z")
	p.UpdatedAt = p.CreatedAt.Add(10 * time.Minute)
	f.addPrompt(t, p)

	// 非终态不计入响应时间
	p = base
	p.Status = domain.StatusPending
	p.CreatedAt = day(t, "2025-03-01T10:00:00Z")
	p.UpdatedAt = p.CreatedAt
	f.addPrompt(t, p)

	rows, err := f.service.StaffPerformance(context.Background(), ReportRequest{
		StartDate: "2025-03-01", EndDate: "2025-03-01",
	})
	require.NoError(t, err)

	// OFFICER 全集视图：admin 不出现，零记录的 officer 出现
	require.Len(t, rows, 2)

	var reyes, idle *StaffPerformanceRow
	for _, row := range rows {
		switch row.UserID {
		case officerID:
			reyes = row
		case idleID:
			idle = row
		}
	}
	require.NotNil(t, reyes)
	require.NotNil(t, idle)

	require.Equal(t, 3, reyes.TotalPrompts)
	require.Equal(t, 1, reyes.CompletedPrompts)
	require.Equal(t, 20.0, reyes.AverageResponseTime)
	require.Equal(t, []StatusCount{
		{Status: "PENDING", Count: 1},
		{Status: "SIGNED", Count: 1},
		{Status: "REFUSED", Count: 1},
	}, reyes.PromptsByStatus)

	require.Equal(t, 0, idle.TotalPrompts)
	require.Equal(t, 0.0, idle.AverageResponseTime)
	require.Empty(t, idle.PromptsByStatus)
}

func TestReports_FacilityFilter(t *testing.T) {
	f := newReportFixture(t)

	typeID := f.types.AddPromptType(domain.PromptType{Name: "Meal", Category: "daily"})

	for _, facility := range []int64{1, 2} {
		p := domain.Prompt{
			IndividualID: 1, PromptTypeID: typeID, UserID: 1,
			FacilityID: facility, Status: domain.StatusSigned,
			CreatedAt: day(t, "2025-03-01T08:00:00Z"),
		}
		p.UpdatedAt = p.CreatedAt
		f.addPrompt(t, p)
	}

	facility := int64(1)
	report, err := f.service.PromptCompletion(context.Background(), ReportRequest{
		StartDate: "2025-03-01", EndDate: "2025-03-01", FacilityID: &facility,
	})
	require.NoError(t, err)
	require.Equal(t, 1, report.TotalPrompts)
}
