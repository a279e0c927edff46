package modules

import (
	"net/http"

	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/devconnector-api/internal/interface/http"
)

// ProfileModule serves /api/profile. Listing, lookup by user, GitHub repos and
// search are public; everything touching the caller's own profile is not.
type ProfileModule struct {
	Handler *handlers.ProfileHandler
	Guards  Guards
}

func NewProfileModule(h *handlers.ProfileHandler, g Guards) *ProfileModule {
	return &ProfileModule{Handler: h, Guards: g}
}

func (m *ProfileModule) Routes() []Route {
	h := m.Handler
	return []Route{
		{Method: http.MethodGet, Path: "/profile", Access: Public, Handler: h.List},
		{Method: http.MethodGet, Path: "/profile/user/:user_id", Access: Public, Handler: h.ByUser},
		{Method: http.MethodGet, Path: "/profile/github/:username", Access: Public, Handler: h.GitHub},
		{Method: http.MethodGet, Path: "/profile/search", Access: Public, Handler: h.Search},

		{Method: http.MethodGet, Path: "/profile/me", Access: Authenticated, Handler: h.Me},
		{Method: http.MethodPost, Path: "/profile", Access: Authenticated, Handler: h.Upsert},
		{Method: http.MethodDelete, Path: "/profile", Access: Authenticated, Handler: h.DeleteAccount},
		{Method: http.MethodPut, Path: "/profile/experience", Access: Authenticated, Handler: h.AddExperience},
		{Method: http.MethodDelete, Path: "/profile/experience/:exp_id", Access: Authenticated, Handler: h.DeleteExperience},
		{Method: http.MethodPut, Path: "/profile/education", Access: Authenticated, Handler: h.AddEducation},
		{Method: http.MethodDelete, Path: "/profile/education/:edu_id", Access: Authenticated, Handler: h.DeleteEducation},
	}
}

func (m *ProfileModule) Register(rg *gin.RouterGroup) { Mount(rg, m.Guards, m.Routes()) }
