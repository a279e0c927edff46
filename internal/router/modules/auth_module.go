package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devconnector-api/internal/interface/http"
)

// AuthModule serves login and the current user under /api/auth.
type AuthModule struct {
	Handler *handlers.AuthHandler
	Guards  Guards
	Limit   gin.HandlerFunc
}

func NewAuthModule(h *handlers.AuthHandler, g Guards, limit gin.HandlerFunc) *AuthModule {
	return &AuthModule{Handler: h, Guards: g, Limit: limit}
}

func (m *AuthModule) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/auth", Access: Public, Handler: m.Handler.Login, Limit: m.Limit},
		{Method: http.MethodGet, Path: "/auth", Access: Authenticated, Handler: m.Handler.Me},
		{Method: http.MethodPost, Path: "/auth/logout", Access: Public, Handler: m.Handler.Logout},
	}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) { Mount(rg, m.Guards, m.Routes()) }
