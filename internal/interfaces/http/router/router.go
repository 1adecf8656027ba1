package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Route binds handlers to a method and a path relative to its resource
type Route struct {
	Method   string
	Path     string
	Handlers []gin.HandlerFunc
}

// Resource is a set of routes sharing a path prefix such as /orders
type Resource struct {
	prefix     string
	middleware []gin.HandlerFunc
	routes     []Route
}

// NewResource starts an empty resource mounted at prefix
func NewResource(prefix string) *Resource {
	return &Resource{prefix: prefix}
}

// Use adds middleware that runs only for this resource's routes
func (r *Resource) Use(middleware ...gin.HandlerFunc) *Resource {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// GET adds a GET route
func (r *Resource) GET(path string, handlers ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodGet, path, handlers)
}

// POST adds a POST route
func (r *Resource) POST(path string, handlers ...gin.HandlerFunc) *Resource {
	return r.add(http.MethodPost, path, handlers)
}

func (r *Resource) add(method, path string, handlers []gin.HandlerFunc) *Resource {
	r.routes = append(r.routes, Route{Method: method, Path: path, Handlers: handlers})
	return r
}

// Routes returns the routes in registration order
func (r *Resource) Routes() []Route {
	return r.routes
}

// Mount registers the resource on parent
func (r *Resource) Mount(parent gin.IRouter) {
	group := parent.Group(r.prefix, r.middleware...)
	for _, route := range r.routes {
		group.Handle(route.Method, route.Path, route.Handlers...)
	}
}

// API mounts resources under /api/<version> behind shared middleware
type API struct {
	version    string
	middleware []gin.HandlerFunc
	resources  []*Resource
}

// APIOption configures an API
type APIOption func(*API)

// WithVersion overrides the default "v1" path segment
func WithVersion(version string) APIOption {
	return func(a *API) {
		a.version = version
	}
}

// WithMiddleware adds middleware in front of every API route
func WithMiddleware(middleware ...gin.HandlerFunc) APIOption {
	return func(a *API) {
		a.middleware = append(a.middleware, middleware...)
	}
}

// NewAPI creates an API with no resources
func NewAPI(opts ...APIOption) *API {
	a := &API{version: "v1"}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Add appends resources; nil entries are skipped
func (a *API) Add(resources ...*Resource) *API {
	for _, r := range resources {
		if r != nil {
			a.resources = append(a.resources, r)
		}
	}
	return a
}

// BasePath returns the mount point, e.g. /api/v1
func (a *API) BasePath() string {
	return "/api/" + a.version
}

// Mount registers every resource under BasePath
func (a *API) Mount(parent gin.IRouter) {
	base := parent.Group(a.BasePath(), a.middleware...)
	for _, r := range a.resources {
		r.Mount(base)
	}
}
