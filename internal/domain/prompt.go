package domain

import "time"

// PromptStatus 通知状态（open set：允许任意状态间转换，不强制状态机 DAG）
type PromptStatus string

const (
	StatusPending   PromptStatus = "PENDING"
	StatusAttempted PromptStatus = "ATTEMPTED"
	StatusSigned    PromptStatus = "SIGNED"
	StatusRefused   PromptStatus = "REFUSED"
	// StatusCompleted is a synonym for signed terminal success kept for
	// compatibility with devices that report it instead of SIGNED.
	StatusCompleted PromptStatus = "COMPLETED"
)

// KnownStatuses 按创建顺序列出所有可识别状态
var KnownStatuses = []PromptStatus{
	StatusPending,
	StatusAttempted,
	StatusSigned,
	StatusRefused,
	StatusCompleted,
}

// IsRecognized 状态是否可识别
func (s PromptStatus) IsRecognized() bool {
	switch s {
	case StatusPending, StatusAttempted, StatusSigned, StatusRefused, StatusCompleted:
		return true
	}
	return false
}

// IsTerminal 是否为终态（SIGNED/REFUSED/COMPLETED）
// 终态仍允许被后续修正，不做不可逆约束
func (s PromptStatus) IsTerminal() bool {
	switch s {
	case StatusSigned, StatusRefused, StatusCompleted:
		return true
	}
	return false
}

// RequiresSignature 该状态是否必须携带签名
func (s PromptStatus) RequiresSignature() bool {
	return s == StatusSigned || s == StatusCompleted
}

// IsCompleted 报表口径：签名成功类终态
func (s PromptStatus) IsCompleted() bool {
	return s == StatusSigned || s == StatusCompleted
}

// Prompt 通知记录领域模型（对应 prompts 表）
// 记录一次必须送达的通知及其签收处置；只追加状态修正，从不物理删除
type Prompt struct {
	// 主键
	PromptID int64 `db:"prompt_id"` // BIGSERIAL, PRIMARY KEY

	// 关联
	IndividualID int64 `db:"individual_id"` // BIGINT, NOT NULL, FK to individuals
	PromptTypeID int64 `db:"prompt_type_id"` // BIGINT, NOT NULL, FK to prompt_types
	UserID       int64 `db:"user_id"`        // BIGINT, NOT NULL, FK to users（送达/更新的工作人员）
	FacilityID   int64 `db:"facility_id"`    // BIGINT, NOT NULL（冗余自 individual，用于报表过滤）

	// 处置
	Status PromptStatus `db:"status"` // VARCHAR(20), NOT NULL
	Notes  string       `db:"notes"`  // TEXT, nullable

	// 采集来源
	Location string `db:"location"`  // VARCHAR(100), nullable
	DeviceID string `db:"device_id"` // VARCHAR(100), nullable

	// 签名载荷：当且仅当状态要求签名时存在
	Signature string `db:"signature"` // TEXT, nullable

	// 时间戳
	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}
