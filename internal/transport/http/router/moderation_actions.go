package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storyhub/internal/domain"
	"storyhub/internal/service"
	httpez "storyhub/internal/transport/http/ez"
)

// MountModerationActions 审核接口；调用方保证分组已挂管理员门禁
func MountModerationActions(admin *gin.RouterGroup, svc *service.StoryService) {
	ez := httpez.New(admin)

	// GET /stories/pending：待审队列，created_at 倒序
	httpez.RegisterAction[struct{}, []domain.Story](ez, httpez.Action[struct{}, []domain.Story]{
		Method: http.MethodGet,
		Path:   "/stories/pending",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Story, error) {
			ss, err := svc.ListPending(c.Request.Context())
			if err != nil {
				return nil, httpez.Internal("list pending failed", err)
			}
			return ss, nil
		},
	})

	// PUT /stories/:id/moderate：approved 时盖 approvedAt 章
	type moderateIn struct {
		Status string `json:"status" binding:"required,oneof=approved rejected"`
	}
	httpez.RegisterAction[moderateIn, gin.H](ez, httpez.Action[moderateIn, gin.H]{
		Method: http.MethodPut,
		Path:   "/stories/:id/moderate",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *moderateIn) (gin.H, error) {
			if err := svc.Moderate(c.Request.Context(), c.Param("id"), in.Status); err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return nil, httpez.NotFound("story not found")
				}
				return nil, httpez.Internal("moderate failed", err)
			}
			return gin.H{"message": "Story " + in.Status}, nil
		},
	})
}
