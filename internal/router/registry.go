package router

import "github.com/gin-gonic/gin"

// Registry collects modules and the middleware shared by every /api route.
type Registry struct {
	Engine      *gin.Engine
	API         *gin.RouterGroup
	middlewares []gin.HandlerFunc
	modules     []Module
}

func NewRegistry(engine *gin.Engine) *Registry {
	api := engine.Group("/api")
	return &Registry{Engine: engine, API: api}
}

func (r *Registry) Use(mw ...gin.HandlerFunc) {
	r.middlewares = append(r.middlewares, mw...)
}

func (r *Registry) Add(mod Module) {
	r.modules = append(r.modules, mod)
}

// RegisterAll applies the shared middleware, then lets each module mount its routes.
func (r *Registry) RegisterAll() {
	if len(r.middlewares) > 0 {
		r.API.Use(r.middlewares...)
	}
	for _, m := range r.modules {
		m.Register(r.API)
	}
}

// Policy lists the access table of every registered module, in registration order.
func (r *Registry) Policy() []PolicyEntry {
	var out []PolicyEntry
	for _, m := range r.modules {
		t, ok := m.(RouteTable)
		if !ok {
			continue
		}
		for _, rt := range t.Routes() {
			out = append(out, PolicyEntry{Method: rt.Method, Path: r.API.BasePath() + rt.Path, Access: string(rt.Access)})
		}
	}
	return out
}
