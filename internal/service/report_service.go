package service

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"prompt-tracker/internal/domain"
	"prompt-tracker/internal/repository"

	"go.uber.org/zap"
)

// ReportService 报表/聚合引擎接口
// 只读；每次请求基于当前数据重算，不维护任何物化缓存
type ReportService interface {
	PromptCompletion(ctx context.Context, req ReportRequest) (*CompletionReport, error)
	IndividualActivity(ctx context.Context, req ReportRequest) ([]*IndividualActivityRow, error)
	StaffPerformance(ctx context.Context, req ReportRequest) ([]*StaffPerformanceRow, error)
}

// ReportRequest 报表公共入参：闭区间 [start, end] + 可选设施过滤
// 日期接受 "2006-01-02" 或 RFC3339；解析失败返回 InvalidArgument，绝不猜测
type ReportRequest struct {
	StartDate  string
	EndDate    string
	FacilityID *int64
}

// DailyBreakdown 按创建日（记录存储时区的日历日）的分解
type DailyBreakdown struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Completed int    `json:"completed"`
	Pending   int    `json:"pending"`
	Refused   int    `json:"refused"`
}

// CompletionReport 完成率报表
type CompletionReport struct {
	TotalPrompts     int              `json:"totalPrompts"`
	CompletedPrompts int              `json:"completedPrompts"`
	PendingPrompts   int              `json:"pendingPrompts"`
	RefusedPrompts   int              `json:"refusedPrompts"`
	CompletionRate   float64          `json:"completionRate"`
	ByDate           []DailyBreakdown `json:"byDate"`
}

// TypeBreakdown 按通知类别的分解
type TypeBreakdown struct {
	Type           string  `json:"type"`
	Count          int     `json:"count"`
	CompletionRate float64 `json:"completionRate"`
}

// IndividualActivityRow 个体活动报表行
// 名册全集视图：区间内零记录的个体也出现（零计数 + 无最近时间）
type IndividualActivityRow struct {
	IndividualID   int64           `json:"individualId"`
	CdcrNumber     string          `json:"cdcrNumber"`
	FirstName      string          `json:"firstName"`
	LastName       string          `json:"lastName"`
	TotalPrompts   int             `json:"totalPrompts"`
	CompletionRate float64         `json:"completionRate"`
	LastPromptDate *time.Time      `json:"lastPromptDate"`
	PromptsByType  []TypeBreakdown `json:"promptsByType"`
}

// StatusCount 按状态的计数
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// StaffPerformanceRow 工作人员绩效报表行（OFFICER 全集视图）
type StaffPerformanceRow struct {
	UserID           int64         `json:"userId"`
	FirstName        string        `json:"firstName"`
	LastName         string        `json:"lastName"`
	BadgeNumber      string        `json:"badgeNumber"`
	TotalPrompts     int           `json:"totalPrompts"`
	CompletedPrompts int           `json:"completedPrompts"`
	// AverageResponseTime 平均响应时间（分钟）：创建到设定终态那次更新的间隔
	AverageResponseTime float64       `json:"averageResponseTime"`
	PromptsByStatus     []StatusCount `json:"promptsByStatus"`
}

// reportService 实现
type reportService struct {
	promptsRepo     repository.PromptsRepository
	individualsRepo repository.IndividualsRepository
	promptTypesRepo repository.PromptTypesRepository
	usersRepo       repository.UsersRepository
	logger          *zap.Logger
}

// NewReportService 创建 ReportService 实例
func NewReportService(
	promptsRepo repository.PromptsRepository,
	individualsRepo repository.IndividualsRepository,
	promptTypesRepo repository.PromptTypesRepository,
	usersRepo repository.UsersRepository,
	logger *zap.Logger,
) ReportService {
	return &reportService{
		promptsRepo:     promptsRepo,
		individualsRepo: individualsRepo,
		promptTypesRepo: promptTypesRepo,
		usersRepo:       usersRepo,
		logger:          logger,
	}
}

// parseRange 解析闭区间；date-only 的 end 取当日最后一纳秒使区间包含整天
func parseRange(req ReportRequest) (time.Time, time.Time, error) {
	start, err := parseReportDate(req.StartDate, false)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start date %q: %w", req.StartDate, domain.ErrInvalidArgument)
	}
	end, err := parseReportDate(req.EndDate, true)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("end date %q: %w", req.EndDate, domain.ErrInvalidArgument)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end date before start date: %w", domain.ErrInvalidArgument)
	}
	return start, end, nil
}

func parseReportDate(s string, endOfDay bool) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

func (s *reportService) promptsInRange(ctx context.Context, req ReportRequest) ([]*domain.Prompt, error) {
	start, end, err := parseRange(req)
	if err != nil {
		return nil, err
	}
	return s.promptsRepo.ListPrompts(ctx, &repository.PromptFilters{
		FacilityID: req.FacilityID,
		StartTime:  &start,
		EndTime:    &end,
	})
}

// round1 保留一位小数
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// completionRate 完成率（%）；total 为 0 时定义为 0，避免除零
func completionRate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round1(float64(completed) / float64(total) * 100)
}

// PromptCompletion 完成率报表：总量、状态计数、完成率、按日分解
// 按日分解与总量必然对账（同一数据集单次遍历）
func (s *reportService) PromptCompletion(ctx context.Context, req ReportRequest) (*CompletionReport, error) {
	prompts, err := s.promptsInRange(ctx, req)
	if err != nil {
		return nil, err
	}

	report := &CompletionReport{ByDate: []DailyBreakdown{}}
	byDate := map[string]*DailyBreakdown{}

	for _, p := range prompts {
		report.TotalPrompts++

		date := p.CreatedAt.Format("2006-01-02")
		day, ok := byDate[date]
		if !ok {
			day = &DailyBreakdown{Date: date}
			byDate[date] = day
		}

		switch {
		case p.Status.IsCompleted():
			report.CompletedPrompts++
			day.Completed++
		case p.Status == domain.StatusPending:
			report.PendingPrompts++
			day.Pending++
		case p.Status == domain.StatusRefused:
			report.RefusedPrompts++
			day.Refused++
		}
	}

	report.CompletionRate = completionRate(report.CompletedPrompts, report.TotalPrompts)

	for _, day := range byDate {
		report.ByDate = append(report.ByDate, *day)
	}
	sort.Slice(report.ByDate, func(i, j int) bool { return report.ByDate[i].Date < report.ByDate[j].Date })

	return report, nil
}

// IndividualActivity 个体活动报表：名册全集，零记录个体也出现
func (s *reportService) IndividualActivity(ctx context.Context, req ReportRequest) ([]*IndividualActivityRow, error) {
	prompts, err := s.promptsInRange(ctx, req)
	if err != nil {
		return nil, err
	}
	individuals, err := s.individualsRepo.ListIndividuals(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}
	typeNames, err := s.promptTypeNames(ctx)
	if err != nil {
		return nil, err
	}

	byIndividual := map[int64][]*domain.Prompt{}
	for _, p := range prompts {
		byIndividual[p.IndividualID] = append(byIndividual[p.IndividualID], p)
	}

	rows := make([]*IndividualActivityRow, 0, len(individuals))
	for _, in := range individuals {
		own := byIndividual[in.IndividualID]

		row := &IndividualActivityRow{
			IndividualID:  in.IndividualID,
			CdcrNumber:    in.CdcrNumber,
			FirstName:     in.FirstName,
			LastName:      in.LastName,
			TotalPrompts:  len(own),
			PromptsByType: []TypeBreakdown{},
		}

		completed := 0
		type typeStat struct{ count, completed int }
		byType := map[string]*typeStat{}
		for _, p := range own {
			if p.Status.IsCompleted() {
				completed++
			}
			if row.LastPromptDate == nil || p.CreatedAt.After(*row.LastPromptDate) {
				t := p.CreatedAt
				row.LastPromptDate = &t
			}
			name := typeNames[p.PromptTypeID]
			if name == "" {
				name = "Unknown"
			}
			ts, ok := byType[name]
			if !ok {
				ts = &typeStat{}
				byType[name] = ts
			}
			ts.count++
			if p.Status.IsCompleted() {
				ts.completed++
			}
		}
		row.CompletionRate = completionRate(completed, len(own))

		for name, ts := range byType {
			row.PromptsByType = append(row.PromptsByType, TypeBreakdown{
				Type:           name,
				Count:          ts.count,
				CompletionRate: completionRate(ts.completed, ts.count),
			})
		}
		sort.Slice(row.PromptsByType, func(i, j int) bool { return row.PromptsByType[i].Type < row.PromptsByType[j].Type })

		rows = append(rows, row)
	}
	return rows, nil
}

// StaffPerformance 工作人员绩效报表：OFFICER 全集视图
// 平均响应时间取创建到设定终态那次更新的真实间隔（updated_at - created_at），
// 而不是任何占位数据；当前无终态记录时为 0
func (s *reportService) StaffPerformance(ctx context.Context, req ReportRequest) ([]*StaffPerformanceRow, error) {
	prompts, err := s.promptsInRange(ctx, req)
	if err != nil {
		return nil, err
	}
	officers, err := s.usersRepo.ListOfficers(ctx, req.FacilityID)
	if err != nil {
		return nil, err
	}

	byUser := map[int64][]*domain.Prompt{}
	for _, p := range prompts {
		byUser[p.UserID] = append(byUser[p.UserID], p)
	}

	rows := make([]*StaffPerformanceRow, 0, len(officers))
	for _, u := range officers {
		own := byUser[u.UserID]

		row := &StaffPerformanceRow{
			UserID:          u.UserID,
			FirstName:       u.FirstName,
			LastName:        u.LastName,
			BadgeNumber:     u.BadgeNumber,
			TotalPrompts:    len(own),
			PromptsByStatus: []StatusCount{},
		}

		byStatus := map[domain.PromptStatus]int{}
		var responseMinutes float64
		var terminalCount int
		for _, p := range own {
			byStatus[p.Status]++
			if p.Status.IsCompleted() {
				row.CompletedPrompts++
			}
			if p.Status.IsTerminal() {
				responseMinutes += p.UpdatedAt.Sub(p.CreatedAt).Minutes()
				terminalCount++
			}
		}
		if terminalCount > 0 {
			row.AverageResponseTime = round1(responseMinutes / float64(terminalCount))
		}

		// 固定枚举顺序输出，保证响应可复现
		for _, status := range domain.KnownStatuses {
			if n := byStatus[status]; n > 0 {
				row.PromptsByStatus = append(row.PromptsByStatus, StatusCount{Status: string(status), Count: n})
			}
		}

		rows = append(rows, row)
	}
	return rows, nil
}

func (s *reportService) promptTypeNames(ctx context.Context) (map[int64]string, error) {
	types, err := s.promptTypesRepo.ListPromptTypes(ctx)
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(types))
	for _, pt := range types {
		names[pt.PromptTypeID] = pt.Name
	}
	return names, nil
}
