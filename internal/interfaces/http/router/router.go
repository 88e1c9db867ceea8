package router

import (
	"path"

	"github.com/gin-gonic/gin"
)

// APIPrefix is where every domain group is mounted
const APIPrefix = "/api"

// RouteInfo is one entry of the mounted route table
type RouteInfo struct {
	Group       string
	Method      string
	Path        string
	Description string
}

// Mount registers groups on engine under APIPrefix and returns the full
// route table, in registration order.
func Mount(engine *gin.Engine, groups ...*DomainGroup) []RouteInfo {
	api := engine.Group(APIPrefix)
	var table []RouteInfo
	for _, g := range groups {
		g.register(api)
		table = append(table, g.describe(APIPrefix)...)
	}
	return table
}

// DomainGroup is a named set of routes sharing a prefix and middleware.
// Nested groups run their parent's middleware first.
type DomainGroup struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
	children   []*DomainGroup
}

type route struct {
	method, path, description string
	handlers                  []gin.HandlerFunc
}

func NewDomainGroup(name, prefix string) *DomainGroup {
	return &DomainGroup{name: name, prefix: prefix}
}

// Use appends middleware for every route of the group and its children
func (g *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	g.middleware = append(g.middleware, middleware...)
	return g
}

// Handle adds a route. description only feeds the route table.
func (g *DomainGroup) Handle(method, relativePath, description string, handlers ...gin.HandlerFunc) *DomainGroup {
	g.routes = append(g.routes, route{method: method, path: relativePath, description: description, handlers: handlers})
	return g
}

// Group nests a child group under this one and returns the child
func (g *DomainGroup) Group(name, prefix string) *DomainGroup {
	child := NewDomainGroup(name, prefix)
	g.children = append(g.children, child)
	return child
}

func (g *DomainGroup) register(parent *gin.RouterGroup) {
	rg := parent.Group(g.prefix, g.middleware...)
	for _, r := range g.routes {
		rg.Handle(r.method, r.path, r.handlers...)
	}
	for _, child := range g.children {
		child.register(rg)
	}
}

func (g *DomainGroup) describe(parent string) []RouteInfo {
	base := path.Join(parent, g.prefix)
	table := make([]RouteInfo, 0, len(g.routes))
	for _, r := range g.routes {
		full := base
		if r.path != "" {
			full = path.Join(base, r.path)
		}
		table = append(table, RouteInfo{Group: g.name, Method: r.method, Path: full, Description: r.description})
	}
	for _, child := range g.children {
		table = append(table, child.describe(base)...)
	}
	return table
}
