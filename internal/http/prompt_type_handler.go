package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"prompt-tracker/internal/repository"

	"go.uber.org/zap"
)

// PromptTypeHandler 通知类别目录 Handler（只读引用数据）
type PromptTypeHandler struct {
	promptTypesRepo repository.PromptTypesRepository
	logger          *zap.Logger
}

// NewPromptTypeHandler 创建类别目录 Handler
func NewPromptTypeHandler(promptTypesRepo repository.PromptTypesRepository, logger *zap.Logger) *PromptTypeHandler {
	return &PromptTypeHandler{
		promptTypesRepo: promptTypesRepo,
		logger:          logger,
	}
}

// ServeHTTP 路由分发
func (h *PromptTypeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch {
	case r.URL.Path == "/api/prompt-types":
		h.List(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/prompt-types/"):
		h.Get(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 全部类别
func (h *PromptTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	types, err := h.promptTypesRepo.ListPromptTypes(ctx)
	if err != nil {
		h.logger.Error("ListPromptTypes failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, types)
}

// Get 单个类别
func (h *PromptTypeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimPrefix(r.URL.Path, "/api/prompt-types/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strings.Contains(raw, "/") {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid ID format"})
		return
	}

	pt, err := h.promptTypesRepo.GetPromptType(ctx, id)
	if err != nil {
		h.logger.Error("GetPromptType failed", zap.Int64("prompt_type_id", id), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pt)
}
