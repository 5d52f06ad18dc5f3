package model

type AppCache struct {
	ID        uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	Key       string `gorm:"column:key;type:text;uniqueIndex;not null"`
	Value     string `gorm:"column:value;type:text;not null"`
	UpdatedAt string `gorm:"column:updated_at;type:text;not null"`
}

func (AppCache) TableName() string {
	return "app_cache"
}
