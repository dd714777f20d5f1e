package controllers

import (
	"context"
	"net/http"

	"CapIot.telemetryAPI/models"
	"CapIot.telemetryAPI/services"
	"CapIot.telemetryAPI/utils"
	"github.com/aws/aws-lambda-go/events"
)

// ListDevices handles GET /devices.
func (c *TelemetryController) ListDevices(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	devices, err := c.service.ListDevices(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve devices", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyDevices, devices)), nil
}

// GetDevice handles GET /devices/{device_id}.
func (c *TelemetryController) GetDevice(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	qr, ids, err := bindRequest(req, []string{utils.ParamDeviceID}, filtersWithStatus)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	data, err := c.service.GetRecords(ctx, qr, services.DeviceCentric)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve device data", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyData, data, ids...)), nil
}

// GetDeviceRooms handles GET /devices/{device_id}/rooms.
func (c *TelemetryController) GetDeviceRooms(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	qr, ids, err := bindRequest(req, []string{utils.ParamDeviceID}, nil)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	rooms, err := c.service.GetDeviceRooms(ctx, qr.DeviceID)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve device rooms", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyRooms, rooms, ids...)), nil
}

// GetDeviceInRoom handles GET /devices/{device_id}/{room_id}. The device
// partition is read and narrowed to the room.
func (c *TelemetryController) GetDeviceInRoom(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	qr, ids, err := bindRequest(req, []string{utils.ParamDeviceID, utils.ParamRoomID}, filtersWithStatus)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	data, err := c.service.GetRecords(ctx, qr, services.DeviceCentric)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve device-room data", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyData, data, ids...)), nil
}
