package routes

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"CapIot.telemetryAPI/controllers"
	"CapIot.telemetryAPI/models"
	"CapIot.telemetryAPI/utils"
	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// Route is one endpoint of the API.
type Route int

const (
	RouteRoot Route = iota
	RouteDevices
	RouteDevice
	RouteDeviceRooms
	RouteDeviceRoom
	RouteRooms
	RouteRoom
	RouteRoomDevices
	RouteRoomDevice
)

// RouteKey identifies a route by HTTP method and API Gateway resource
// template.
type RouteKey struct {
	Method   string
	Resource string
}

func (k RouteKey) String() string {
	return k.Method + " " + k.Resource
}

// RouteTable lists every route in registration order. Literal segments come
// before template variables at the same depth.
var RouteTable = []struct {
	Key   RouteKey
	Route Route
}{
	{RouteKey{http.MethodGet, "/"}, RouteRoot},
	{RouteKey{http.MethodGet, "/devices"}, RouteDevices},
	{RouteKey{http.MethodGet, "/devices/{device_id}"}, RouteDevice},
	{RouteKey{http.MethodGet, "/devices/{device_id}/rooms"}, RouteDeviceRooms},
	{RouteKey{http.MethodGet, "/devices/{device_id}/{room_id}"}, RouteDeviceRoom},
	{RouteKey{http.MethodGet, "/rooms"}, RouteRooms},
	{RouteKey{http.MethodGet, "/rooms/{room_id}"}, RouteRoom},
	{RouteKey{http.MethodGet, "/rooms/{room_id}/devices"}, RouteRoomDevices},
	{RouteKey{http.MethodGet, "/rooms/{room_id}/{device_id}"}, RouteRoomDevice},
}

var routesByKey = func() map[RouteKey]Route {
	m := make(map[RouteKey]Route, len(RouteTable))
	for _, entry := range RouteTable {
		m[entry.Key] = entry.Route
	}
	return m
}()

// ResolveRoute finds the route registered for method and resource.
func ResolveRoute(method, resource string) (Route, bool) {
	route, ok := routesByKey[RouteKey{Method: method, Resource: resource}]
	return route, ok
}

// HandlerFunc handles the request of one route. A returned models.APIError
// is rendered with its own status; any other error becomes a 500.
type HandlerFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Router dispatches API Gateway proxy requests to route handlers.
type Router struct {
	handlers map[Route]HandlerFunc
}

// NewRouter binds every route to its controller method.
func NewRouter(c *controllers.TelemetryController) *Router {
	return NewRouterWithHandlers(map[Route]HandlerFunc{
		RouteRoot:        c.GetAll,
		RouteDevices:     c.ListDevices,
		RouteDevice:      c.GetDevice,
		RouteDeviceRooms: c.GetDeviceRooms,
		RouteDeviceRoom:  c.GetDeviceInRoom,
		RouteRooms:       c.ListRooms,
		RouteRoom:        c.GetRoom,
		RouteRoomDevices: c.GetRoomDevices,
		RouteRoomDevice:  c.GetRoomDevice,
	})
}

// NewRouterWithHandlers builds a router from an explicit handler table.
// Routes missing from the table answer 404.
func NewRouterWithHandlers(handlers map[Route]HandlerFunc) *Router {
	return &Router{handlers: handlers}
}

// HandleRequest is the Lambda entry point. It never returns an error; every
// failure is rendered as a response.
func (rt *Router) HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	method, resource := req.HTTPMethod, req.Resource
	if method == "" {
		method = http.MethodGet
	}
	if resource == "" {
		resource = "/"
	}
	return rt.Dispatch(ctx, method, resource, req), nil
}

// Dispatch runs the handler registered for (method, resource).
func (rt *Router) Dispatch(ctx context.Context, method, resource string, req events.APIGatewayProxyRequest) (resp events.APIGatewayProxyResponse) {
	start := time.Now()
	logger := zap.L().With(
		zap.String("method", method),
		zap.String("resource", resource),
		zap.String("request_id", req.RequestContext.RequestID),
	)

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("Recovered from handler panic", zap.Any("panic", rec), zap.Stack("stack"))
			resp = utils.CreateErrorResponse(models.NewInternalError(fmt.Errorf("%v", rec)))
		}
		logger.Info("Request handled",
			zap.Int("status", resp.StatusCode),
			zap.Duration("duration", time.Since(start)),
		)
	}()

	route, ok := ResolveRoute(method, resource)
	handler := rt.handlers[route]
	if !ok || handler == nil {
		return utils.CreateErrorResponse(models.NewRouteNotFoundError(method, resource))
	}

	resp, err := handler(ctx, req)
	if err != nil {
		return errorResponse(logger, err)
	}
	return resp
}

func errorResponse(logger *zap.Logger, err error) events.APIGatewayProxyResponse {
	var apiErr models.APIError
	if !errors.As(err, &apiErr) {
		apiErr = models.NewInternalError(err)
	}
	if apiErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", string(apiErr.Code)), zap.Error(err))
	}
	return utils.CreateErrorResponse(apiErr)
}
