package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devconnector-api/internal/interface/http"
)

// UserModule serves registration: POST /api/users.
type UserModule struct {
	Handler *handlers.UserHandler
	Guards  Guards
	// Limit throttles registration per client and path.
	Limit gin.HandlerFunc
}

func NewUserModule(h *handlers.UserHandler, g Guards, limit gin.HandlerFunc) *UserModule {
	return &UserModule{Handler: h, Guards: g, Limit: limit}
}

func (m *UserModule) Routes() []Route {
	return []Route{
		{Method: http.MethodPost, Path: "/users", Access: Public, Handler: m.Handler.Register, Limit: m.Limit},
	}
}

func (m *UserModule) Register(rg *gin.RouterGroup) { Mount(rg, m.Guards, m.Routes()) }
