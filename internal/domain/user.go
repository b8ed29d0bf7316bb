package domain

import "time"

// 工作人员角色
const (
	RoleOfficer = "OFFICER"
	RoleAdmin   = "ADMIN"
)

// User 工作人员领域模型（对应 users 表）
// 认证/密码由外部鉴权层负责，核心只消费身份与展示信息
type User struct {
	UserID int64 `db:"user_id"` // BIGSERIAL, PRIMARY KEY

	Username    string `db:"username"`     // VARCHAR(50), NOT NULL, UNIQUE
	FirstName   string `db:"first_name"`   // VARCHAR(50), NOT NULL
	LastName    string `db:"last_name"`    // VARCHAR(50), NOT NULL
	BadgeNumber string `db:"badge_number"` // VARCHAR(20)
	Role        string `db:"role"`         // VARCHAR(20): 'OFFICER' / 'ADMIN'

	FacilityID int64 `db:"facility_id"` // BIGINT, NOT NULL

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}

// DisplayName 活动流展示用姓名
func (u *User) DisplayName() string {
	return u.FirstName + " " + u.LastName
}
