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

type tokenOut struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	User        *domain.User `json:"user"`
}

func mountAuthActions(api, authed *gin.RouterGroup, svc *service.AuthService) {
	ezPublic := httpez.New(api)

	// POST /auth/register：成功即发 token；重名 → 400
	type registerIn struct {
		Username string `json:"username" binding:"required,max=64"`
		Password string `json:"password" binding:"required"`
		Email    string `json:"email"    binding:"omitempty,email"`
	}
	httpez.RegisterAction[registerIn, tokenOut](ezPublic, httpez.Action[registerIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/register",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *registerIn) (tokenOut, error) {
			tok, u, err := svc.Register(c.Request.Context(), service.Credentials{
				Username: in.Username,
				Password: in.Password,
				Email:    in.Email,
			})
			if err != nil {
				if errors.Is(err, domain.ErrConflict) {
					return tokenOut{}, httpez.BadRequest("username already registered")
				}
				return tokenOut{}, httpez.Internal("register failed", err)
			}
			return tokenOut{AccessToken: tok, TokenType: "bearer", User: u}, nil
		},
	})

	// POST /auth/login：用户不存在/密码错误不可区分 → 401
	type loginIn struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	httpez.RegisterAction[loginIn, tokenOut](ezPublic, httpez.Action[loginIn, tokenOut]{
		Method: http.MethodPost,
		Path:   "/auth/login",
		Binder: httpez.BindJSON,
		Handler: func(c *gin.Context, in *loginIn) (tokenOut, error) {
			tok, u, err := svc.Login(c.Request.Context(), in.Username, in.Password)
			if err != nil {
				if errors.Is(err, domain.ErrInvalidCredentials) {
					return tokenOut{}, httpez.Unauthorized("incorrect username or password")
				}
				return tokenOut{}, httpez.Internal("login failed", err)
			}
			return tokenOut{AccessToken: tok, TokenType: "bearer", User: u}, nil
		},
	})

	// GET /auth/me（鉴权分组）
	ezAuth := httpez.New(authed)
	httpez.RegisterAction[struct{}, *domain.User](ezAuth, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/auth/me",
		Binder: httpez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			u := mdw.CurrentUser(c)
			if u == nil {
				return nil, httpez.Unauthorized("unauthorized")
			}
			return u, nil
		},
	})
}
