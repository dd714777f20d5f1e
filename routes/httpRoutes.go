package routes

import (
	"CapIot.telemetryAPI/handlers"
	"github.com/gorilla/mux"
)

// SetupRouter registers every API route on a gorilla/mux router for local
// serving. Unmatched paths and methods are still passed through so that the
// API answers them with its own 404.
func SetupRouter(api *Router, opts ...handlers.ProxyOption) *mux.Router {
	router := mux.NewRouter()
	proxy := handlers.ProxyHandler(api, opts...)

	for _, entry := range RouteTable {
		router.Handle(entry.Key.Resource, proxy).Methods(entry.Key.Method)
	}
	router.NotFoundHandler = proxy
	router.MethodNotAllowedHandler = proxy

	return router
}
