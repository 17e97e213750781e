package db

import "time"

// Service 定义官网展示的服务项目。
type Service struct {
	ID          uint   `gorm:"primaryKey"`
	Name        string `gorm:"size:100;not null"`
	Icon        string `gorm:"size:100;not null"`
	Description string `gorm:"type:text"`
	Order       int    `gorm:"column:display_order;not null;default:0"`
	IsActive    bool   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
