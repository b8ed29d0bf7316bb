package domain

import "time"

// Individual 收容人员领域模型（对应 individuals 表）
// 由名册管理（外部）创建；核心只读引用，从不修改
type Individual struct {
	IndividualID int64 `db:"individual_id"` // BIGSERIAL, PRIMARY KEY

	// 设施内编号（如 CDCR 号）
	CdcrNumber string `db:"cdcr_number"` // VARCHAR(20), NOT NULL, UNIQUE

	FirstName string `db:"first_name"` // VARCHAR(50), NOT NULL
	LastName  string `db:"last_name"`  // VARCHAR(50), NOT NULL

	// 所属设施与居住单元
	FacilityID  int64  `db:"facility_id"`  // BIGINT, NOT NULL
	HousingUnit string `db:"housing_unit"` // VARCHAR(20), NOT NULL（设施内单元编码）

	CreatedAt time.Time `db:"created_at"` // TIMESTAMPTZ, NOT NULL
	UpdatedAt time.Time `db:"updated_at"` // TIMESTAMPTZ, NOT NULL
}

// FullName 展示用姓名
func (i *Individual) FullName() string {
	return i.FirstName + " " + i.LastName
}
