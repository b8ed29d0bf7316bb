package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterPromptRoutes 通知生命周期路由
func (r *Router) RegisterPromptRoutes(h *PromptHandler) {
	r.Handle("/api/prompts", h)
	r.Handle("/api/prompts/", h)
}

// RegisterReportRoutes 报表路由
func (r *Router) RegisterReportRoutes(h *ReportHandler) {
	r.Handle("/api/reports/", h)
}

// RegisterActivityRoutes 活动流路由
func (r *Router) RegisterActivityRoutes(h *ActivityHandler) {
	r.Handle("/api/activity/recent", h)
}

// RegisterRosterRoutes 名册与类别目录路由（只读）
func (r *Router) RegisterRosterRoutes(ih *IndividualHandler, pth *PromptTypeHandler) {
	r.Handle("/api/individuals", ih)
	r.Handle("/api/individuals/", ih)
	r.Handle("/api/prompt-types", pth)
	r.Handle("/api/prompt-types/", pth)
}

// RegisterDeviceRoutes 采集设备在线状态路由
func (r *Router) RegisterDeviceRoutes(h *DeviceHandler) {
	r.Handle("/api/devices/online", h)
}
