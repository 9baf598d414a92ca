package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"storyhub/internal/service"
	mdw "storyhub/internal/transport/http/middleware"
)

// NewAPIEngine 用户端：注册/登录公开，其余走 Bearer 认证
func NewAPIEngine(l *zap.Logger, authSvc *service.AuthService, storySvc *service.StoryService) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(16<<20),
		mdw.Timeout(10*time.Second),
		mdw.SimpleRecovery(),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(), // 浏览器前端直连
	)

	// 健康检查 + 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api/v1")

	authed := api.Group("")
	authed.Use(mdw.AuthJWT(authSvc, false))

	mountAuthActions(api, authed, authSvc)
	mountStoryActions(api, authed, storySvc)

	return r
}
