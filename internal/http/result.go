package httpapi

import (
	"errors"
	"net/http"

	"prompt-tracker/internal/domain"
)

// errorBody 与前端约定的错误载荷
type errorBody struct {
	Message string `json:"message"`
}

// statusForErr 错误分类到 HTTP 状态码的总映射
func statusForErr(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := statusForErr(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		// 不向调用方泄漏内部错误细节
		msg = "Internal server error"
	}
	writeJSON(w, status, errorBody{Message: msg})
}
