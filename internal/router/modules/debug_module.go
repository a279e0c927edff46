package modules

import (
	"expvar"
	"net/http"

	"github.com/gin-gonic/gin"
)

// DebugModule exposes expvar counters at /api/debug/vars.
type DebugModule struct {
	Limit gin.HandlerFunc
}

func NewDebugModule(limit gin.HandlerFunc) *DebugModule { return &DebugModule{Limit: limit} }

func (m *DebugModule) Routes() []Route {
	return []Route{
		{Method: http.MethodGet, Path: "/debug/vars", Access: Public, Handler: gin.WrapH(expvar.Handler()), Limit: m.Limit},
	}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) { Mount(rg, Guards{}, m.Routes()) }
