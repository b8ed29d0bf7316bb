package httpapi

import (
	"net/http"

	"prompt-tracker/internal/service"

	"go.uber.org/zap"
)

// ActivityHandler 活动流 Handler（审计条目的展示消费方）
type ActivityHandler struct {
	audit  service.AuditRecorder
	logger *zap.Logger
}

// NewActivityHandler 创建活动流 Handler
func NewActivityHandler(audit service.AuditRecorder, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		audit:  audit,
		logger: logger,
	}
}

// ServeHTTP 路由分发
func (h *ActivityHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/activity/recent" && r.Method == http.MethodGet {
		h.Recent(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// Recent 最近活动（时间倒序，附操作人姓名和 PROMPT 详情）
func (h *ActivityHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := userIDFromReq(w, r); !ok {
		return
	}

	limit := parseInt(r.URL.Query().Get("limit"), 10)

	resp, err := h.audit.RecentActivity(ctx, service.RecentActivityRequest{Limit: limit})
	if err != nil {
		h.logger.Error("RecentActivity failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Items)
}
