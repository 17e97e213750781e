package db

import "time"

// GalleryImage 定义官网作品集中的一张图片。
// 不内嵌 gorm.Model，删除即物理删除。
type GalleryImage struct {
	ID          uint   `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Image       string `gorm:"size:255"` // 相对于媒体根目录的路径
	ImageWidth  int
	ImageHeight int
	Description string `gorm:"type:text"`
	Order       int    `gorm:"column:display_order;not null;default:0"`
	IsActive    bool   `gorm:"not null;index"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
