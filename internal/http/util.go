package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func parseInt(s string, def int) int {
	if s == "" {
		return def
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

func readBodyJSON(r *http.Request, maxBytes int64, out any) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return nil
	}
	return json.Unmarshal(body, out)
}

// clientIP 取调用方 IP：优先 X-Forwarded-For 首个地址（反代之后）
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}

// userIDFromReq 外部鉴权层通过 X-User-ID 下发工作人员身份；核心信任该值
// 缺失时返回 401（与未认证等价）
func userIDFromReq(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.Header.Get("X-User-ID")
	if raw == "" {
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: "User not authenticated"})
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeJSON(w, http.StatusUnauthorized, errorBody{Message: "Invalid user identity"})
		return 0, false
	}
	return id, true
}

// optionalInt64Query 可选的 int64 查询参数；非法值视为缺省
func optionalInt64Query(r *http.Request, key string) *int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}
