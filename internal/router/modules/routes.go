package modules

import (
	"github.com/gin-gonic/gin"
)

// Access is the per-endpoint policy. Reads are not uniformly public: profile
// listing and lookup are, post listing is not.
type Access string

const (
	Public        Access = "public"
	Authenticated Access = "authenticated"
)

// Route is one row of a module's access policy table.
type Route struct {
	Method  string
	Path    string
	Access  Access
	Handler gin.HandlerFunc
	// Limit is an optional route-specific limiter that runs before authentication.
	Limit gin.HandlerFunc
}

// Guards holds the middleware applied to authenticated routes.
type Guards struct {
	Auth    gin.HandlerFunc
	PerUser gin.HandlerFunc
}

// Mount registers routes on rg, putting Auth (and PerUser) in front of every
// authenticated route.
func Mount(rg *gin.RouterGroup, g Guards, routes []Route) {
	for _, r := range routes {
		chain := make([]gin.HandlerFunc, 0, 4)
		if r.Limit != nil {
			chain = append(chain, r.Limit)
		}
		if r.Access == Authenticated {
			chain = append(chain, g.Auth)
			if g.PerUser != nil {
				chain = append(chain, g.PerUser)
			}
		}
		chain = append(chain, r.Handler)
		rg.Handle(r.Method, r.Path, chain...)
	}
}
