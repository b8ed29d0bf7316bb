package domain

// PromptType 通知类别目录（对应 prompt_types 表）
// 不可变引用数据，一次性灌种；创建 prompt 时按 id 查引
type PromptType struct {
	PromptTypeID int64 `db:"prompt_type_id"` // BIGSERIAL, PRIMARY KEY

	Name        string `db:"name"`        // VARCHAR(50), NOT NULL
	Description string `db:"description"` // TEXT
	Category    string `db:"category"`    // VARCHAR(20): 'daily' / 'programs' / 'appointments'
}
