package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sitecontent/internal/auth"
	"github.com/sitecontent/internal/db"
)

const (
	adminAccountContextKey = "__admin_account"

	msgInvalidCredentials = "Invalid credentials"
	msgLoginSuccessful    = "Login successful"
	msgTokenRefreshed     = "Token refreshed"
	msgMissingToken       = "Authentication credentials were not provided."
	msgInvalidToken       = "Given token not valid for any token type"
)

// Login 校验管理员凭据并签发访问令牌与刷新令牌。
func (a *API) Login(c *gin.Context) {
	p := payloadFrom(c)
	username := p.str("username")
	password := p.str("password")

	principal, err := a.credentials.Verify(c.Request.Context(), username, password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, msgInvalidCredentials)
			return
		}
		a.internalError(c, err)
		return
	}

	pair, err := a.tokens.IssuePair(*principal)
	if err != nil {
		a.internalError(c, err)
		return
	}

	a.logger.InfoContext(c.Request.Context(), "admin login", "username", principal.Username)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   pair.Access,
		"refresh": pair.Refresh,
		"message": msgLoginSuccessful,
	})
}

// RefreshToken 使用刷新令牌换取新的访问令牌。
func (a *API) RefreshToken(c *gin.Context) {
	refresh := payloadFrom(c).str("refresh")

	principal, err := a.tokens.ParseRefresh(refresh)
	if err != nil {
		respondError(c, http.StatusUnauthorized, msgInvalidToken)
		return
	}
	if _, err := a.accounts.Resolve(c.Request.Context(), principal); err != nil {
		if errors.Is(err, auth.ErrAccountNotFound) {
			respondError(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}
		a.internalError(c, err)
		return
	}

	pair, err := a.tokens.IssuePair(*principal)
	if err != nil {
		a.internalError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"token":   pair.Access,
		"refresh": pair.Refresh,
		"message": msgTokenRefreshed,
	})
}

// AuthRequired 校验 Bearer 访问令牌并解析出管理员账号，失败时返回 401。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortWithError(c, http.StatusUnauthorized, msgMissingToken)
			return
		}

		principal, err := a.tokens.ParseAccess(token)
		if err != nil {
			c.Header("WWW-Authenticate", `Bearer realm="api"`)
			abortWithError(c, http.StatusUnauthorized, msgInvalidToken)
			return
		}

		account, err := a.accounts.Resolve(c.Request.Context(), principal)
		if err != nil {
			if errors.Is(err, auth.ErrAccountNotFound) {
				abortWithError(c, http.StatusUnauthorized, msgInvalidToken)
				return
			}
			a.internalError(c, err)
			c.Abort()
			return
		}

		c.Set(adminAccountContextKey, account)
		c.Next()
	}
}

// currentAdmin 返回 AuthRequired 写入上下文的管理员账号。
func currentAdmin(c *gin.Context) *db.AdminAccount {
	if value, ok := c.Get(adminAccountContextKey); ok {
		if account, ok := value.(*db.AdminAccount); ok {
			return account
		}
	}
	return nil
}
