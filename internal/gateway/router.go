package gateway

import (
	"net/http"

	"github.com/saransh1220/snaplabel/internal/shared/utils"
)

// NotFoundResponse is returned for any request no route matches.
type NotFoundResponse struct {
	Error  string `json:"error"`
	Path   string `json:"path"`
	Method string `json:"method"`
}

// Router wraps http.ServeMux and answers unmatched requests with a JSON 404,
// including method mismatches on known paths.
type Router struct {
	mux *http.ServeMux
}

// NewRouter creates a new router
func NewRouter() *Router {
	return &Router{
		mux: http.NewServeMux(),
	}
}

// Handle registers a handler for the given pattern
func (r *Router) Handle(pattern string, handler http.Handler) {
	r.mux.Handle(pattern, handler)
}

// HandleFunc registers a handler function for the given pattern
func (r *Router) HandleFunc(pattern string, handler http.HandlerFunc) {
	r.mux.HandleFunc(pattern, handler)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if _, pattern := r.mux.Handler(req); pattern == "" {
		utils.WriteJSON(w, http.StatusNotFound, NotFoundResponse{
			Error:  "Not found",
			Path:   req.URL.Path,
			Method: req.Method,
		})
		return
	}
	r.mux.ServeHTTP(w, req)
}
