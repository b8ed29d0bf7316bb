package domain

import (
	"strings"
	"time"
)

// AuditAction 审计动作标签
type AuditAction string

const (
	ActionCreatePrompt AuditAction = "CREATE_PROMPT"

	// 状态更新动作为 UPDATE_PROMPT_STATUS_<STATUS>，由 UpdateStatusAction 派生
	actionUpdateStatusPrefix = "UPDATE_PROMPT_STATUS_"
)

// UpdateStatusAction 由目标状态派生状态更新动作标签
func UpdateStatusAction(status PromptStatus) AuditAction {
	return AuditAction(actionUpdateStatusPrefix + string(status))
}

// EntityType 审计条目指向的实体类别
type EntityType string

const (
	EntityAuth       EntityType = "AUTH"
	EntityPrompt     EntityType = "PROMPT"
	EntityIndividual EntityType = "INDIVIDUAL"
	EntityReport     EntityType = "REPORT"
	EntityActivity   EntityType = "ACTIVITY"
	EntityPromptType EntityType = "PROMPT_TYPE"
	EntitySystem     EntityType = "SYSTEM"
)

// entityTypeBySegment 已知路由段到实体类别的总映射
var entityTypeBySegment = map[string]EntityType{
	"auth":         EntityAuth,
	"prompts":      EntityPrompt,
	"individuals":  EntityIndividual,
	"reports":      EntityReport,
	"activity":     EntityActivity,
	"prompt-types": EntityPromptType,
}

// EntityTypeFromPath derives the audited entity type from a request path.
// Pure and deterministic: the fixed table above wins; an unknown segment falls
// back to its upper-cased form with one trailing plural "S" stripped; an empty
// path yields SYSTEM. Framing segments ("api", "v1", "v2", ...) are skipped so
// mounted and unmounted paths derive identically.
func EntityTypeFromPath(path string) EntityType {
	for _, seg := range strings.Split(path, "/") {
		if seg == "" || isFramingSegment(seg) {
			continue
		}
		if et, ok := entityTypeBySegment[strings.ToLower(seg)]; ok {
			return et
		}
		up := strings.ToUpper(seg)
		up = strings.TrimSuffix(up, "S")
		if up == "" {
			return EntitySystem
		}
		return EntityType(up)
	}
	return EntitySystem
}

func isFramingSegment(seg string) bool {
	if strings.EqualFold(seg, "api") {
		return true
	}
	// version segments: v1, v2, ...
	if len(seg) >= 2 && (seg[0] == 'v' || seg[0] == 'V') {
		for _, c := range seg[1:] {
			if c < '0' || c > '9' {
				return false
			}
		}
		return true
	}
	return false
}

// AuditLogEntry 审计日志领域模型（对应 audit_logs 表）
// 每次变更操作恰好追加一条；只追加，无更新/删除路径
// EntityID 为弱引用（按 id 记录，不保证实体仍存在），条目必须独立可渲染
type AuditLogEntry struct {
	// 主键
	EntryID string `db:"entry_id"` // UUID, PRIMARY KEY

	// 谁、做了什么、对什么
	UserID     int64       `db:"user_id"`     // BIGINT, NOT NULL
	Action     AuditAction `db:"action"`      // VARCHAR(60), NOT NULL
	EntityType EntityType  `db:"entity_type"` // VARCHAR(40), NOT NULL
	EntityID   string      `db:"entity_id"`   // VARCHAR(60), NOT NULL（弱引用）

	// 来源
	IPAddress string `db:"ip_address"` // VARCHAR(60)
	UserAgent string `db:"user_agent"` // TEXT

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
}
