package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devconnector-api/internal/interface/http"
)

// PostModule serves /api/posts. Every route, listing included, needs a token.
type PostModule struct {
	Handler *handlers.PostHandler
	Guards  Guards
}

func NewPostModule(h *handlers.PostHandler, g Guards) *PostModule {
	return &PostModule{Handler: h, Guards: g}
}

func (m *PostModule) Routes() []Route {
	h := m.Handler
	return []Route{
		{Method: http.MethodPost, Path: "/posts", Access: Authenticated, Handler: h.Create},
		{Method: http.MethodGet, Path: "/posts", Access: Authenticated, Handler: h.List},
		{Method: http.MethodGet, Path: "/posts/:id", Access: Authenticated, Handler: h.Get},
		{Method: http.MethodDelete, Path: "/posts/:id", Access: Authenticated, Handler: h.Delete},
		{Method: http.MethodPut, Path: "/posts/like/:id", Access: Authenticated, Handler: h.Like},
		{Method: http.MethodPut, Path: "/posts/unlike/:id", Access: Authenticated, Handler: h.Unlike},
		{Method: http.MethodPost, Path: "/posts/comment/:id", Access: Authenticated, Handler: h.Comment},
		{Method: http.MethodDelete, Path: "/posts/comment/:id/:comment_id", Access: Authenticated, Handler: h.Uncomment},
	}
}

func (m *PostModule) Register(rg *gin.RouterGroup) { Mount(rg, m.Guards, m.Routes()) }
