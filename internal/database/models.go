package database

import (
	"time"

	"gorm.io/datatypes"
)

// Resume 是一次保存产生的简历快照，只插入不更新也不删除，所以没有 updated_at / deleted_at。
// Data 中 template 与 theme 与其他字段平铺在同一个 JSON 对象里。
type Resume struct {
	ID        uint           `gorm:"primaryKey"`
	UserID    uint           `gorm:"not null;index:idx_resumes_owner_created,priority:1"`
	Name      string         `gorm:"size:255;not null"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	CreatedAt time.Time      `gorm:"not null;index:idx_resumes_owner_created,priority:2,sort:desc"`
}

// Models 返回需要 AutoMigrate 的全部模型。
func Models() []any {
	return []any{&Resume{}}
}
