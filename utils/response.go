package utils

import (
	"encoding/json"
	"net/http"

	"CapIot.telemetryAPI/models"
	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// KeyCount is the envelope field holding the payload length.
const KeyCount = "count"

// DefaultHeaders are attached to every response, success or error.
func DefaultHeaders() map[string]string {
	return map[string]string{
		"Content-Type":                 "application/json",
		"Access-Control-Allow-Origin":  "*",
		"Access-Control-Allow-Methods": "GET, POST, PUT, DELETE, OPTIONS",
		"Access-Control-Allow-Headers": "Content-Type, Authorization",
	}
}

// NewEnvelope builds a success body: the echoed path identifiers, the
// payload under payloadKey and a count derived from the payload itself.
// A nil payload is rendered as an empty array.
func NewEnvelope[T any](payloadKey string, payload []T, ids ...Param) map[string]any {
	if payload == nil {
		payload = []T{}
	}
	body := make(map[string]any, len(ids)+2)
	for _, id := range ids {
		body[id.Name] = id.Value
	}
	body[payloadKey] = payload
	body[KeyCount] = len(payload)
	return body
}

// CreateResponse normalizes the body's numbers, encodes it and wraps it in
// the API Gateway proxy response with the default headers.
func CreateResponse(statusCode int, body any) events.APIGatewayProxyResponse {
	encoded, err := json.Marshal(NormalizeNumbers(body))
	if err != nil {
		zap.L().Error("Failed to encode JSON response", zap.Error(err))
		statusCode = http.StatusInternalServerError
		encoded = []byte(`{"error":"Failed to encode response"}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: statusCode,
		Headers:    DefaultHeaders(),
		Body:       string(encoded),
	}
}

// CreateErrorResponse renders an APIError using its own status code.
func CreateErrorResponse(apiErr models.APIError) events.APIGatewayProxyResponse {
	return CreateResponse(apiErr.StatusCode, apiErr)
}
