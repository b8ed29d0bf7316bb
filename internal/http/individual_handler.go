package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	"prompt-tracker/internal/repository"

	"go.uber.org/zap"
)

// IndividualHandler 名册只读 Handler
// 名册写路径属于外部名册管理，本服务只提供查询
type IndividualHandler struct {
	individualsRepo repository.IndividualsRepository
	logger          *zap.Logger
}

// NewIndividualHandler 创建名册 Handler
func NewIndividualHandler(individualsRepo repository.IndividualsRepository, logger *zap.Logger) *IndividualHandler {
	return &IndividualHandler{
		individualsRepo: individualsRepo,
		logger:          logger,
	}
}

// ServeHTTP 路由分发
func (h *IndividualHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	switch {
	case r.URL.Path == "/api/individuals":
		h.List(w, r)
	case r.URL.Path == "/api/individuals/search":
		h.Search(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/individuals/unit/"):
		h.ListByUnit(w, r)
	case strings.HasPrefix(r.URL.Path, "/api/individuals/"):
		h.Get(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

// List 全部/按设施查询
func (h *IndividualHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	individuals, err := h.individualsRepo.ListIndividuals(ctx, optionalInt64Query(r, "facilityId"))
	if err != nil {
		h.logger.Error("ListIndividuals failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, individuals)
}

// Search 按姓名/编号模糊检索
func (h *IndividualHandler) Search(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	query := r.URL.Query().Get("query")
	individuals, err := h.individualsRepo.SearchIndividuals(ctx, query)
	if err != nil {
		h.logger.Error("SearchIndividuals failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, individuals)
}

// ListByUnit 按居住单元查询
func (h *IndividualHandler) ListByUnit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	unit := strings.TrimPrefix(r.URL.Path, "/api/individuals/unit/")
	if unit == "" || strings.Contains(unit, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	individuals, err := h.individualsRepo.ListByHousingUnit(ctx, unit)
	if err != nil {
		h.logger.Error("ListByHousingUnit failed", zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, individuals)
}

// Get 单人详情
func (h *IndividualHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	raw := strings.TrimPrefix(r.URL.Path, "/api/individuals/")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || strings.Contains(raw, "/") {
		writeJSON(w, http.StatusBadRequest, errorBody{Message: "Invalid ID format"})
		return
	}

	individual, err := h.individualsRepo.GetIndividual(ctx, id)
	if err != nil {
		h.logger.Error("GetIndividual failed", zap.Int64("individual_id", id), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, individual)
}
