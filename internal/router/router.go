package router

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sitecontent/internal/handler"
	"github.com/sitecontent/internal/logging"
	"github.com/sitecontent/internal/metrics"
)

// Config 描述路由层需要的配置。
type Config struct {
	Debug          bool
	AllowedOrigins []string
	TrustedProxies []string
	MediaRoot      string
	MediaURL       string
	MaxUploadBytes int64
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, cfg Config, logger *slog.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	if cfg.MaxUploadBytes > 0 {
		r.MaxMultipartMemory = cfg.MaxUploadBytes
	}
	// 未配置时不信任任何代理，ClientIP 取直连地址
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		logger.Warn("invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}

	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.ErrorContext(c.Request.Context(), "panic recovered", "panic", recovered, "path", c.Request.URL.Path)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
	}))
	r.Use(logging.RequestLogger(logger))
	r.Use(metrics.Middleware())
	r.Use(cors.New(corsConfig(cfg)))

	r.NoRoute(handler.NotFound)
	r.NoMethod(handler.MethodNotAllowed)

	r.GET("/healthz", api.Healthz)
	r.GET("/metrics", metrics.Handler())

	if cfg.MediaRoot != "" {
		mediaURL := strings.TrimRight(cfg.MediaURL, "/")
		if mediaURL == "" {
			mediaURL = "/media"
		}
		r.Static(mediaURL, cfg.MediaRoot)
	}

	// 公开接口
	r.GET("/gallery/", api.PublicGallery)
	r.GET("/services/", api.PublicServices)

	admin := r.Group("/admin")
	{
		admin.POST("/login/", api.BindPayload(), api.Login)
		admin.POST("/token/refresh/", api.BindPayload(), api.RefreshToken)

		// 需要认证的后台路由
		auth := admin.Group("")
		auth.Use(api.AuthRequired())
		{
			auth.GET("/gallery/", api.AdminGalleryList)
			auth.POST("/gallery/create/", api.BindPayload(), api.CreateGalleryImage)
			auth.PUT("/gallery/:id/update/", api.BindPayload(), api.UpdateGalleryImage)
			auth.PATCH("/gallery/:id/update/", api.BindPayload(), api.UpdateGalleryImage)
			auth.DELETE("/gallery/:id/delete/", api.DeleteGalleryImage)

			auth.GET("/services/", api.AdminServiceList)
			auth.POST("/services/create/", api.BindPayload(), api.CreateService)
			auth.PUT("/services/:id/update/", api.BindPayload(), api.UpdateService)
			auth.PATCH("/services/:id/update/", api.BindPayload(), api.UpdateService)
			auth.DELETE("/services/:id/delete/", api.DeleteService)
		}
	}

	return r
}

func corsConfig(cfg Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "Origin", "Accept"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) > 0 {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		return corsCfg
	}

	// 开发模式下未配置来源时放行全部来源
	corsCfg.AllowOriginFunc = func(string) bool {
		return cfg.Debug
	}
	return corsCfg
}
