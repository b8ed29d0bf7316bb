package repository

import (
	"fmt"

	"prompt-tracker/internal/domain"
)

// storageErr 包装底层存储错误并标记为 Unavailable（保留原始错误文本便于排查）
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, domain.ErrUnavailable)
}
