package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingDispatcher struct {
	events []events.APIGatewayProxyRequest
	resp   events.APIGatewayProxyResponse
	err    error
}

func (d *recordingDispatcher) HandleRequest(_ context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	d.events = append(d.events, req)
	return d.resp, d.err
}

func TestProxyHandlerBuildsEventFromTemplate(t *testing.T) {
	d := &recordingDispatcher{resp: events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       `{"count":0}`,
	}}
	router := mux.NewRouter()
	router.Handle("/devices/{device_id}", ProxyHandler(d)).Methods(http.MethodGet)

	req := httptest.NewRequest(http.MethodGet, "/devices/sensor_01?status=ok&status=offline&start_time=2025-08-01T00:00:00Z", nil)
	req.Header.Set("Authorization", "Bearer x")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, `{"count":0}`, rec.Body.String())

	require.Len(t, d.events, 1)
	event := d.events[0]
	assert.Equal(t, "/devices/{device_id}", event.Resource)
	assert.Equal(t, "/devices/sensor_01", event.Path)
	assert.Equal(t, http.MethodGet, event.HTTPMethod)
	assert.Equal(t, map[string]string{"device_id": "sensor_01"}, event.PathParameters)
	assert.Equal(t, "ok", event.QueryStringParameters["status"])
	assert.Equal(t, []string{"ok", "offline"}, event.MultiValueQueryStringParameters["status"])
	assert.Equal(t, "Bearer x", event.Headers["Authorization"])
	assert.Equal(t, "/devices/{device_id}", event.RequestContext.ResourcePath)

	_, err := uuid.Parse(event.RequestContext.RequestID)
	assert.NoError(t, err)
}

func TestProxyHandlerUsesLiteralPathWithoutRoute(t *testing.T) {
	d := &recordingDispatcher{resp: events.APIGatewayProxyResponse{StatusCode: http.StatusNotFound}}

	rec := httptest.NewRecorder()
	ProxyHandler(d).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/nowhere", strings.NewReader(`{"a":1}`)))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	require.Len(t, d.events, 1)
	assert.Equal(t, "/nowhere", d.events[0].Resource)
	assert.Equal(t, http.MethodPost, d.events[0].HTTPMethod)
	assert.Equal(t, `{"a":1}`, d.events[0].Body)
	assert.Empty(t, d.events[0].PathParameters)
	assert.Nil(t, d.events[0].QueryStringParameters)
}

func TestProxyHandlerDispatcherError(t *testing.T) {
	d := &recordingDispatcher{err: errors.New("boom")}

	rec := httptest.NewRecorder()
	ProxyHandler(d).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWriteProxyResponseMultiValueHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteProxyResponse(rec, events.APIGatewayProxyResponse{
		StatusCode:        http.StatusAccepted,
		MultiValueHeaders: map[string][]string{"Vary": {"Origin", "Accept"}},
		Body:              "done",
	})

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, []string{"Origin", "Accept"}, rec.Header().Values("Vary"))
	assert.Equal(t, "done", rec.Body.String())
}

func TestProxyHandlerExternalCORSDropsAccessControlHeaders(t *testing.T) {
	resp := events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers: map[string]string{
			"Content-Type":                "application/json",
			"Access-Control-Allow-Origin": "*",
		},
		MultiValueHeaders: map[string][]string{"access-control-allow-methods": {"GET"}},
	}

	rec := httptest.NewRecorder()
	ProxyHandler(&recordingDispatcher{resp: resp}, WithExternalCORS()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))

	// without the option the API's own headers go out as is
	rec = httptest.NewRecorder()
	ProxyHandler(&recordingDispatcher{resp: resp}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
