package models

import "time"

// SessionEntry строка клиентского хранилища сессии (ключ -> значение).
type SessionEntry struct {
	ID        uint      `gorm:"column:id;primaryKey" db:"id"`
	Key       string    `gorm:"column:entry_key;uniqueIndex;not null" db:"entry_key"`
	Value     string    `gorm:"column:entry_value;not null" db:"entry_value"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" db:"updated_at"`
}

func (SessionEntry) TableName() string {
	return "session"
}
