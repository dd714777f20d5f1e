package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"CapIot.telemetryAPI/models"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	env := NewEnvelope("rooms", []string{"room_001", "room_002"}, Param{ParamDeviceID, "sensor_01"})

	assert.Equal(t, "sensor_01", env["device_id"])
	assert.Equal(t, []string{"room_001", "room_002"}, env["rooms"])
	assert.Equal(t, 2, env[KeyCount])
}

func TestNewEnvelopeNilPayloadIsEmptyArray(t *testing.T) {
	env := NewEnvelope[string]("devices", nil)

	resp := CreateResponse(http.StatusOK, env)
	assert.JSONEq(t, `{"devices": [], "count": 0}`, resp.Body)
}

func TestCreateResponse(t *testing.T) {
	env := NewEnvelope("data", []models.Item{{"temperature": attributevalue.Number("5.3")}})

	resp := CreateResponse(http.StatusOK, env)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Headers["Content-Type"])
	assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", resp.Headers["Access-Control-Allow-Methods"])
	assert.Equal(t, "Content-Type, Authorization", resp.Headers["Access-Control-Allow-Headers"])
	assert.JSONEq(t, `{"data": [{"temperature": 5.3}], "count": 1}`, resp.Body)
}

func TestCreateResponseIsDeterministic(t *testing.T) {
	env := NewEnvelope("data", []models.Item{{"b": 1, "a": 2}}, Param{"room_id", "room_001"})
	assert.Equal(t, CreateResponse(http.StatusOK, env).Body, CreateResponse(http.StatusOK, env).Body)
}

func TestCreateResponseEncodingFailure(t *testing.T) {
	resp := CreateResponse(http.StatusOK, map[string]any{"bad": make(chan int)})

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, resp.Body, "error")
}

func TestCreateErrorResponse(t *testing.T) {
	t.Run("validation", func(t *testing.T) {
		resp := CreateErrorResponse(models.NewValidationError("Validation failed", []string{"Invalid device_id: x"}))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error": "Validation failed", "details": ["Invalid device_id: x"]}`, resp.Body)
	})

	t.Run("no details", func(t *testing.T) {
		resp := CreateErrorResponse(models.NewQueryFailedError("Failed to retrieve rooms", errors.New("query failed: boom")))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var body map[string]any
		require.NoError(t, json.Unmarshal([]byte(resp.Body), &body))
		assert.Equal(t, "Failed to retrieve rooms: query failed: boom", body["error"])
		assert.NotContains(t, body, "details")
		assert.Equal(t, "*", resp.Headers["Access-Control-Allow-Origin"])
	})
}
