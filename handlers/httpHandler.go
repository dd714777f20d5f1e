package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// Dispatcher handles one API Gateway proxy request.
type Dispatcher interface {
	HandleRequest(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)
}

// corsHeaderPrefix marks the headers a CORS middleware owns.
const corsHeaderPrefix = "Access-Control-"

type proxyOptions struct {
	externalCORS bool
}

// ProxyOption configures ProxyHandler.
type ProxyOption func(*proxyOptions)

// WithExternalCORS drops the Access-Control-* headers of API responses so
// that an enclosing CORS middleware alone decides them.
func WithExternalCORS() ProxyOption {
	return func(o *proxyOptions) { o.externalCORS = true }
}

// ProxyHandler serves plain HTTP by converting each request into the API
// Gateway proxy event the Lambda receives. The resource is the mux path
// template when a route matched and the literal path otherwise.
func ProxyHandler(d Dispatcher, opts ...ProxyOption) http.Handler {
	var o proxyOptions
	for _, opt := range opts {
		opt(&o)
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		event, err := NewProxyRequest(r)
		if err != nil {
			http.Error(w, "Error reading request body", http.StatusBadRequest)
			return
		}

		resp, err := d.HandleRequest(r.Context(), event)
		if err != nil {
			zap.L().Error("Dispatcher returned an error", zap.String("request_id", event.RequestContext.RequestID), zap.Error(err))
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if o.externalCORS {
			resp = withoutCORSHeaders(resp)
		}
		WriteProxyResponse(w, resp)
	})
}

func withoutCORSHeaders(resp events.APIGatewayProxyResponse) events.APIGatewayProxyResponse {
	headers := make(map[string]string, len(resp.Headers))
	for k, v := range resp.Headers {
		if !strings.HasPrefix(http.CanonicalHeaderKey(k), corsHeaderPrefix) {
			headers[k] = v
		}
	}
	multi := make(map[string][]string, len(resp.MultiValueHeaders))
	for k, vs := range resp.MultiValueHeaders {
		if !strings.HasPrefix(http.CanonicalHeaderKey(k), corsHeaderPrefix) {
			multi[k] = vs
		}
	}
	resp.Headers, resp.MultiValueHeaders = headers, multi
	return resp
}

// NewProxyRequest builds the proxy event for r.
func NewProxyRequest(r *http.Request) (events.APIGatewayProxyRequest, error) {
	resource := r.URL.Path
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			resource = tpl
		}
	}

	var body []byte
	if r.Body != nil {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			return events.APIGatewayProxyRequest{}, err
		}
		body = b
	}

	query := r.URL.Query()
	event := events.APIGatewayProxyRequest{
		Resource:                        resource,
		Path:                            r.URL.Path,
		HTTPMethod:                      r.Method,
		Headers:                         firstValues(r.Header),
		MultiValueHeaders:               r.Header,
		QueryStringParameters:           firstValues(query),
		MultiValueQueryStringParameters: query,
		PathParameters:                  mux.Vars(r),
		Body:                            string(body),
		RequestContext: events.APIGatewayProxyRequestContext{
			RequestID:        uuid.NewString(),
			ResourcePath:     resource,
			HTTPMethod:       r.Method,
			Path:             r.URL.Path,
			RequestTimeEpoch: time.Now().UnixMilli(),
		},
	}
	return event, nil
}

// WriteProxyResponse copies a proxy response onto w.
func WriteProxyResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) {
	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		for _, v := range vs {
			w.Header().Add(k, v)
		}
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.WriteString(w, resp.Body); err != nil {
		zap.L().Warn("Failed to write response body", zap.Error(err))
	}
}

func firstValues(values map[string][]string) map[string]string {
	if len(values) == 0 {
		return nil
	}
	out := make(map[string]string, len(values))
	for k, vs := range values {
		if len(vs) > 0 {
			out[k] = vs[0]
		}
	}
	return out
}
