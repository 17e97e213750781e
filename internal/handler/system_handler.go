package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Healthz 检查数据库连通性。
func (a *API) Healthz(c *gin.Context) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		a.logger.ErrorContext(c.Request.Context(), "health check failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// MethodNotAllowed 在路径存在但方法不匹配时返回 405。
func MethodNotAllowed(c *gin.Context) {
	respondError(c, http.StatusMethodNotAllowed, fmt.Sprintf("Method %q not allowed.", c.Request.Method))
}

// NotFound 处理未注册的路径。
func NotFound(c *gin.Context) {
	respondError(c, http.StatusNotFound, "Not found.")
}
