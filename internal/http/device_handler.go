package httpapi

import (
	"net/http"
	"sort"

	"prompt-tracker/internal/store"

	"go.uber.org/zap"
)

// DeviceHandler 采集设备在线状态 Handler
// 生命周期服务在每次签收采集时刷新 last-seen 心跳；这里只读展示
type DeviceHandler struct {
	devices store.DeviceSeenStore
	logger  *zap.Logger
}

// NewDeviceHandler 创建设备 Handler
func NewDeviceHandler(devices store.DeviceSeenStore, logger *zap.Logger) *DeviceHandler {
	return &DeviceHandler{
		devices: devices,
		logger:  logger,
	}
}

// deviceStatus 在线设备条目
type deviceStatus struct {
	DeviceID string `json:"deviceId"`
	LastSeen string `json:"lastSeen"`
}

// ServeHTTP 路由分发
func (h *DeviceHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/api/devices/online" && r.Method == http.MethodGet {
		h.Online(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

// Online 列出心跳未过期的采集设备
func (h *DeviceHandler) Online(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if h.devices == nil {
		writeJSON(w, http.StatusOK, []deviceStatus{})
		return
	}

	seen, err := h.devices.OnlineDevices(ctx)
	if err != nil {
		h.logger.Error("failed to list online devices", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Message: "Device status unavailable"})
		return
	}

	devices := make([]deviceStatus, 0, len(seen))
	for _, d := range seen {
		devices = append(devices, deviceStatus{DeviceID: d.DeviceID, LastSeen: d.LastSeen})
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].DeviceID < devices[j].DeviceID })

	writeJSON(w, http.StatusOK, devices)
}
