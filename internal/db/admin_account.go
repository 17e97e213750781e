package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AdminAccount 是唯一的后台管理员身份，首次登录成功时自动创建。
type AdminAccount struct {
	ID          uint   `gorm:"primaryKey"`
	Username    string `gorm:"size:150;uniqueIndex;not null"`
	Password    string `gorm:"not null"`
	IsStaff     bool   `gorm:"not null"`
	IsSuperuser bool   `gorm:"not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ErrAdminCredentialsEmpty 表示用于创建管理员的用户名或密码为空。
var ErrAdminCredentialsEmpty = errors.New("admin username and password are required")

// EnsureAdmin 按用户名查找管理员账号，不存在时以 bcrypt 哈希密码创建，并授予全部权限。
// 已存在的账号保持原样。
func EnsureAdmin(ctx context.Context, gdb *gorm.DB, username, password string) (*AdminAccount, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrAdminCredentialsEmpty
	}

	tx := gdb.WithContext(ctx)

	var existing AdminAccount
	err := tx.Where("username = ?", username).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	account := AdminAccount{
		Username:    username,
		Password:    string(hashed),
		IsStaff:     true,
		IsSuperuser: true,
	}
	if err := tx.Create(&account).Error; err != nil {
		// 并发首次登录时另一请求可能已创建同名账号
		if findErr := tx.Where("username = ?", username).First(&existing).Error; findErr == nil {
			return &existing, nil
		}
		return nil, err
	}
	return &account, nil
}

// FindAdmin 按主键读取管理员账号。
func FindAdmin(ctx context.Context, gdb *gorm.DB, id uint) (*AdminAccount, error) {
	var account AdminAccount
	if err := gdb.WithContext(ctx).First(&account, id).Error; err != nil {
		return nil, err
	}
	return &account, nil
}
