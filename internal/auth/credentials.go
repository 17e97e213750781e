// Package auth 实现管理员凭据校验与 JWT 访问令牌的签发、解析。
package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/sitecontent/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrInvalidCredentials 表示用户名或密码不匹配。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountNotFound 表示令牌对应的管理员账号已不存在。
	ErrAccountNotFound = errors.New("admin account not found")
)

// Principal 是通过认证的调用方身份。
type Principal struct {
	AccountID uint
	Username  string
}

// CredentialStore 校验用户名与密码，成功时返回对应身份。
type CredentialStore interface {
	Verify(ctx context.Context, username, password string) (*Principal, error)
}

// AccountResolver 将令牌中的身份解析为数据库中的管理员账号。
type AccountResolver interface {
	Resolve(ctx context.Context, principal *Principal) (*db.AdminAccount, error)
}

// EnvCredentialStore 使用启动时读取的一对固定凭据做精确比较，
// 校验通过后确保存在同名的管理员账号。
type EnvCredentialStore struct {
	db       *gorm.DB
	username string
	password string
}

// NewEnvCredentialStore 构造 EnvCredentialStore。
func NewEnvCredentialStore(gdb *gorm.DB, username, password string) *EnvCredentialStore {
	return &EnvCredentialStore{db: gdb, username: strings.TrimSpace(username), password: password}
}

// Verify 区分大小写地比较用户名与密码，未配置凭据时一律拒绝。
func (s *EnvCredentialStore) Verify(ctx context.Context, username, password string) (*Principal, error) {
	if s.username == "" || s.password == "" {
		return nil, ErrInvalidCredentials
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	account, err := db.EnsureAdmin(ctx, s.db, s.username, s.password)
	if err != nil {
		return nil, err
	}
	return &Principal{AccountID: account.ID, Username: account.Username}, nil
}

// DBAccountResolver 通过主键查找管理员账号。
type DBAccountResolver struct {
	db *gorm.DB
}

// NewDBAccountResolver 构造 DBAccountResolver。
func NewDBAccountResolver(gdb *gorm.DB) *DBAccountResolver {
	return &DBAccountResolver{db: gdb}
}

// Resolve 返回身份对应的管理员账号，用户名不一致时同样视为不存在。
func (r *DBAccountResolver) Resolve(ctx context.Context, principal *Principal) (*db.AdminAccount, error) {
	if principal == nil || principal.AccountID == 0 {
		return nil, ErrAccountNotFound
	}
	account, err := db.FindAdmin(ctx, r.db, principal.AccountID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	if account.Username != principal.Username {
		return nil, ErrAccountNotFound
	}
	return account, nil
}
