package server

import (
	"net/http"
	"slices"
)

// BasicRouter dispatches "METHOD /path" patterns through an [http.ServeMux] and wraps
// each route in the middleware added with Use before the route was registered.
//
// A path registered only for GET answers other methods with 405.
type BasicRouter struct {
	mux    *http.ServeMux
	chain  []Middleware
	routes []string
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use appends middleware to the chain. The first middleware added is the outermost.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.chain = append(r.chain, middleware...)
}

// Handle registers handler for method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	r.mount(method+" "+path, r.wrap(handler))
}

// Handler mounts every pattern returned by [Handler.Routes] on one wrapped handler.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.wrap(handler)
	for _, pattern := range handler.Routes() {
		r.mount(pattern, wrapped)
	}
}

// Routes returns the registered patterns, sorted.
func (r *BasicRouter) Routes() []string {
	out := slices.Clone(r.routes)
	slices.Sort(out)
	return out
}

// Index serves the route table as JSON.
func (r *BasicRouter) Index() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string][]string{"routes": r.Routes()})
	})
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

func (r *BasicRouter) mount(pattern string, h http.Handler) {
	r.routes = append(r.routes, pattern)
	r.mux.Handle(pattern, h)
}

func (r *BasicRouter) wrap(h http.Handler) http.Handler {
	for _, mw := range slices.Backward(r.chain) {
		h = mw(h)
	}
	return h
}
