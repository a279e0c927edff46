package router

import (
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/devconnector-api/internal/router/modules"
)

// Module describes a feature module that can register its routes on a RouterGroup
type Module interface {
	Register(rg *gin.RouterGroup)
}

// RouteTable is implemented by modules that declare their routes as a policy table.
type RouteTable interface {
	Routes() []modules.Route
}

// PolicyEntry is one row of the effective access policy, logged at startup.
type PolicyEntry struct {
	Method string
	Path   string
	Access string
}
