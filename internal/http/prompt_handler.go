package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"prompt-tracker/internal/service"

	"go.uber.org/zap"
)

// PromptHandler 通知生命周期 Handler
type PromptHandler struct {
	promptService service.PromptService
	logger        *zap.Logger
}

// NewPromptHandler 创建通知 Handler
func NewPromptHandler(promptService service.PromptService, logger *zap.Logger) *PromptHandler {
	return &PromptHandler{
		promptService: promptService,
		logger:        logger,
	}
}

// ServeHTTP 路由分发
func (h *PromptHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/prompts" && r.Method == http.MethodGet:
		h.ListPrompts(w, r)
	case r.URL.Path == "/api/prompts" && r.Method == http.MethodPost:
		h.CreatePrompt(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/prompts/") && r.Method == http.MethodPatch:
		h.UpdateStatus(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// ListPrompts 查询通知列表（创建时间倒序）
func (h *PromptHandler) ListPrompts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if _, ok := userIDFromReq(w, r); !ok {
		return
	}

	req := service.ListPromptsRequest{
		Status:       r.URL.Query().Get("status"),
		IndividualID: optionalInt64Query(r, "individualId"),
		FacilityID:   optionalInt64Query(r, "facilityId"),
		Limit:        parseInt(r.URL.Query().Get("limit"), 0),
	}

	resp, err := h.promptService.ListPrompts(ctx, req)
	if err != nil {
		h.logger.Error("ListPrompts failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp.Items)
}

type createPromptBody struct {
	IndividualID int64  `json:"individualId"`
	PromptTypeID int64  `json:"promptTypeId"`
	Status       string `json:"status"`
	Notes        string `json:"notes"`
	Location     string `json:"location"`
	DeviceID     string `json:"deviceId"`
	Signature    string `json:"signature"`
}

// CreatePrompt 创建通知
func (h *PromptHandler) CreatePrompt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFromReq(w, r)
	if !ok {
		return
	}

	var body createPromptBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	view, err := h.promptService.CreatePrompt(ctx, service.CreatePromptRequest{
		IndividualID: body.IndividualID,
		PromptTypeID: body.PromptTypeID,
		UserID:       userID,
		Status:       body.Status,
		Notes:        body.Notes,
		Location:     body.Location,
		DeviceID:     body.DeviceID,
		Signature:    body.Signature,
		Path:         r.URL.Path,
		IPAddress:    clientIP(r),
		UserAgent:    r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("CreatePrompt failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

type updateStatusBody struct {
	Status    string  `json:"status"`
	Notes     *string `json:"notes"`
	Signature string  `json:"signature"`
}

// UpdateStatus 状态转换
func (h *PromptHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := userIDFromReq(w, r)
	if !ok {
		return
	}

	raw := strings.TrimPrefix(r.URL.Path, "/api/prompts/")
	promptID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strings.Contains(raw, "/") {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid prompt ID"})
		return
	}

	var body updateStatusBody
	if err := readBodyJSON(r, 1<<20, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid request body"})
		return
	}

	view, err := h.promptService.UpdateStatus(ctx, service.UpdateStatusRequest{
		PromptID:  promptID,
		UserID:    userID,
		Status:    body.Status,
		Notes:     body.Notes,
		Signature: body.Signature,
		Path:      r.URL.Path,
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		h.logger.Error("UpdateStatus failed", zap.Int64("prompt_id", promptID), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
