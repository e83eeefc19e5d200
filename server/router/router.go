package router

import "github.com/kfcemployee/bgserver/server/protocol"

// handler func signature, it builds a response for a parsed request
type Handler func(req *protocol.Request) (*protocol.Response, error)

// HTTPRouter dispatches by exact path, everything else goes to the fallback
type HTTPRouter struct {
	treeroot node
	fallback Handler
}

// init a new router
func NewHTTPRouter(fallback Handler) *HTTPRouter {
	return &HTTPRouter{fallback: fallback}
}

func (r *HTTPRouter) Route(path string, h Handler) {
	r.treeroot.insert([]byte(path), h)
}

// pick handler for the raw request path, a query string makes it a different path
func (r *HTTPRouter) Serve(req *protocol.Request) Handler {
	if h := r.treeroot.match(req.Path); h != nil {
		return h
	}
	return r.fallback
}
