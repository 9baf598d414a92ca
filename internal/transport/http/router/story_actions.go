package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storyhub/internal/domain"
	"storyhub/internal/service"
	httpez "storyhub/internal/transport/http/ez"
	mdw "storyhub/internal/transport/http/middleware"
)

func mountStoryActions(api, authed *gin.RouterGroup, svc *service.StoryService) {
	ezPublic := httpez.New(api)
	ezAuth := httpez.New(authed)

	// POST /stories：创建即 pending，作者快照取当前身份
	type createIn struct {
		Title   string `json:"title"   binding:"required,max=255"`
		Content string `json:"content" binding:"required"`
	}
	httpez.RegisterAction[createIn, *domain.Story](ezAuth, httpez.Action[createIn, *domain.Story]{
		Method: http.MethodPost,
		Path:   "/stories",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *createIn) (*domain.Story, error) {
			u := mdw.CurrentUser(c)
			if u == nil {
				return nil, httpez.Unauthorized("unauthorized")
			}
			st, err := svc.Create(c.Request.Context(), service.StoryDraft{
				Title:   in.Title,
				Content: in.Content,
			}, u)
			if err != nil {
				return nil, httpez.Internal("create story failed", err)
			}
			return st, nil
		},
	})

	// GET /stories/my：本人全部状态
	httpez.RegisterAction[struct{}, []domain.Story](ezAuth, httpez.Action[struct{}, []domain.Story]{
		Method: http.MethodGet,
		Path:   "/stories/my",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Story, error) {
			ss, err := svc.ListMine(c.Request.Context(), c.GetString("userId"))
			if err != nil {
				return nil, httpez.Internal("list stories failed", err)
			}
			return ss, nil
		},
	})

	// GET /stories/public：匿名可读，approved_at 倒序
	httpez.RegisterAction[struct{}, []domain.Story](ezPublic, httpez.Action[struct{}, []domain.Story]{
		Method: http.MethodGet,
		Path:   "/stories/public",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) ([]domain.Story, error) {
			ss, err := svc.ListPublic(c.Request.Context())
			if err != nil {
				return nil, httpez.Internal("list stories failed", err)
			}
			return ss, nil
		},
	})

	// POST /stories/:id/like：纯切换；非 approved 一律 404
	type likeOut struct {
		Message string `json:"message"`
		Likes   int64  `json:"likes"`
	}
	httpez.RegisterAction[struct{}, likeOut](ezAuth, httpez.Action[struct{}, likeOut]{
		Method: http.MethodPost,
		Path:   "/stories/:id/like",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (likeOut, error) {
			liked, likes, err := svc.ToggleLike(c.Request.Context(), c.Param("id"), c.GetString("userId"))
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return likeOut{}, httpez.NotFound("story not found")
				}
				return likeOut{}, httpez.Internal("toggle like failed", err)
			}
			msg := "Story unliked"
			if liked {
				msg = "Story liked"
			}
			return likeOut{Message: msg, Likes: likes}, nil
		},
	})
}
