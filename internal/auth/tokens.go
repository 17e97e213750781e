package auth

import (
	"errors"
	"strconv"
	"strings"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	// AccessTokenTTL 为访问令牌有效期。
	AccessTokenTTL = 24 * time.Hour
	// RefreshTokenTTL 为刷新令牌有效期。
	RefreshTokenTTL = 7 * 24 * time.Hour

	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var (
	// ErrInvalidToken 表示令牌缺失、签名错误、过期或类型不符。
	ErrInvalidToken = errors.New("invalid token")
	// ErrSecretMissing 表示未配置签名密钥。
	ErrSecretMissing = errors.New("token signing secret is empty")
)

// Claims 是访问令牌与刷新令牌共用的载荷。
type Claims struct {
	Username  string `json:"username"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair 是一次登录签发的令牌组合。
type TokenPair struct {
	Access           string
	Refresh          string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

// TokenManager 使用进程级密钥以 HS256 签发并校验令牌。
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager 构造 TokenManager。
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{secret: []byte(secret), now: time.Now}
}

// IssuePair 为身份签发一枚 24 小时访问令牌和一枚 7 天刷新令牌。
func (m *TokenManager) IssuePair(principal Principal) (TokenPair, error) {
	if len(m.secret) == 0 {
		return TokenPair{}, ErrSecretMissing
	}

	now := m.now()
	access, accessExp, err := m.sign(principal, tokenTypeAccess, now, AccessTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := m.sign(principal, tokenTypeRefresh, now, RefreshTokenTTL)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// ParseAccess 校验访问令牌并返回其中的身份。
func (m *TokenManager) ParseAccess(token string) (*Principal, error) {
	return m.parse(token, tokenTypeAccess)
}

// ParseRefresh 校验刷新令牌并返回其中的身份。
func (m *TokenManager) ParseRefresh(token string) (*Principal, error) {
	return m.parse(token, tokenTypeRefresh)
}

func (m *TokenManager) sign(principal Principal, tokenType string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	expiresAt := now.Add(ttl)
	claims := Claims{
		Username:  principal.Username,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(principal.AccountID), 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (m *TokenManager) parse(token, wantType string) (*Principal, error) {
	token = strings.TrimSpace(token)
	if token == "" || len(m.secret) == 0 {
		return nil, ErrInvalidToken
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != wantType || claims.Username == "" {
		return nil, ErrInvalidToken
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, ErrInvalidToken
	}
	return &Principal{AccountID: uint(id), Username: claims.Username}, nil
}

// BearerToken 从 Authorization 头中取出 Bearer 令牌。
func BearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}
