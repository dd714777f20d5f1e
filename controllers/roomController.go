package controllers

import (
	"context"
	"net/http"

	"CapIot.telemetryAPI/models"
	"CapIot.telemetryAPI/services"
	"CapIot.telemetryAPI/utils"
	"github.com/aws/aws-lambda-go/events"
)

// RoomDevice is one entry of the /rooms/{room_id}/devices listing.
type RoomDevice struct {
	DeviceID string `json:"device_id"`
}

// ListRooms handles GET /rooms.
func (c *TelemetryController) ListRooms(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	rooms, err := c.service.ListRooms(ctx)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve rooms", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyRooms, rooms)), nil
}

// GetRoom handles GET /rooms/{room_id}. A status filter is not offered on
// this route and is ignored if sent.
func (c *TelemetryController) GetRoom(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	qr, ids, err := bindRequest(req, []string{utils.ParamRoomID}, timeFilters)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	data, err := c.service.GetRecords(ctx, qr, services.RoomCentric)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve room data", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyData, data, ids...)), nil
}

// GetRoomDevices handles GET /rooms/{room_id}/devices.
func (c *TelemetryController) GetRoomDevices(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	qr, ids, err := bindRequest(req, []string{utils.ParamRoomID}, nil)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	deviceIDs, err := c.service.GetRoomDevices(ctx, qr.RoomID)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve room devices", err)
	}
	devices := make([]RoomDevice, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		devices = append(devices, RoomDevice{DeviceID: id})
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyDevices, devices, ids...)), nil
}

// GetRoomDevice handles GET /rooms/{room_id}/{device_id}. The room index is
// read and narrowed to the device.
func (c *TelemetryController) GetRoomDevice(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	qr, ids, err := bindRequest(req, []string{utils.ParamRoomID, utils.ParamDeviceID}, filtersWithStatus)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	data, err := c.service.GetRecords(ctx, qr, services.RoomCentric)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve room-device data", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyData, data, ids...)), nil
}
