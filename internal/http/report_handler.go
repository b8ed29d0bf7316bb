package httpapi

import (
	"net/http"
	"time"

	"prompt-tracker/internal/service"

	"go.uber.org/zap"
)

// ReportHandler 报表 Handler
type ReportHandler struct {
	reportService service.ReportService
	logger        *zap.Logger
}

// NewReportHandler 创建报表 Handler
func NewReportHandler(reportService service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// ServeHTTP 路由分发
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch r.URL.Path {
	case "/api/reports/prompt-completion":
		h.PromptCompletion(w, r)
	case "/api/reports/prompt-completion/export":
		h.PromptCompletionExport(w, r)
	case "/api/reports/individual-activity":
		h.IndividualActivity(w, r)
	case "/api/reports/staff-performance":
		h.StaffPerformance(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func reportRequestFromQuery(r *http.Request) service.ReportRequest {
	return service.ReportRequest{
		StartDate:  r.URL.Query().Get("startDate"),
		EndDate:    r.URL.Query().Get("endDate"),
		FacilityID: optionalInt64Query(r, "facilityId"),
	}
}

// PromptCompletion 完成率报表
func (h *ReportHandler) PromptCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := userIDFromReq(w, r); !ok {
		return
	}

	report, err := h.reportService.PromptCompletion(ctx, reportRequestFromQuery(r))
	if err != nil {
		h.logger.Error("PromptCompletion failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// PromptCompletionExport 完成率报表 Excel 导出
func (h *ReportHandler) PromptCompletionExport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := userIDFromReq(w, r); !ok {
		return
	}

	req := reportRequestFromQuery(r)
	report, err := h.reportService.PromptCompletion(ctx, req)
	if err != nil {
		h.logger.Error("PromptCompletionExport failed", zap.Error(err))
		writeError(w, err)
		return
	}

	data, err := GenerateCompletionReportExcel(report, req.StartDate, req.EndDate)
	if err != nil {
		h.logger.Error("failed to generate completion report excel", zap.Error(err))
		writeError(w, err)
		return
	}

	filename := "prompt-completion-" + time.Now().Format("20060102-150405") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// IndividualActivity 个体活动报表
func (h *ReportHandler) IndividualActivity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := userIDFromReq(w, r); !ok {
		return
	}

	rows, err := h.reportService.IndividualActivity(ctx, reportRequestFromQuery(r))
	if err != nil {
		h.logger.Error("IndividualActivity failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// StaffPerformance 工作人员绩效报表
func (h *ReportHandler) StaffPerformance(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := userIDFromReq(w, r); !ok {
		return
	}

	rows, err := h.reportService.StaffPerformance(ctx, reportRequestFromQuery(r))
	if err != nil {
		h.logger.Error("StaffPerformance failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}
