package controllers

import (
	"context"
	"net/http"

	"CapIot.telemetryAPI/models"
	"CapIot.telemetryAPI/services"
	"CapIot.telemetryAPI/utils"
	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"
)

// Envelope payload keys.
const (
	KeyData    = "data"
	KeyDevices = "devices"
	KeyRooms   = "rooms"
)

// Error messages for each failure class.
const (
	MsgValidationFailed      = "Validation failed"
	MsgQueryValidationFailed = "Query parameter validation failed"
)

// TelemetryController handles API Gateway requests for telemetry reads.
type TelemetryController struct {
	service *services.TelemetryService
}

// NewTelemetryController creates a new TelemetryController.
func NewTelemetryController(service *services.TelemetryService) *TelemetryController {
	return &TelemetryController{service: service}
}

// GetAll handles GET /: every record in the table.
func (c *TelemetryController) GetAll(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	data, err := c.service.GetRecords(ctx, models.QueryRequest{}, services.DeviceCentric)
	if err != nil {
		return events.APIGatewayProxyResponse{}, models.NewQueryFailedError("Failed to retrieve data", err)
	}
	return utils.CreateResponse(http.StatusOK, utils.NewEnvelope(KeyData, data)), nil
}

// bindRequest validates the path identifiers and then the query filters,
// returning the bound request and the path params to echo back.
func bindRequest(req events.APIGatewayProxyRequest, pathNames, queryNames []string) (models.QueryRequest, []utils.Param, error) {
	path := utils.PathParams(req.PathParameters, pathNames...)
	if ok, errs := utils.ValidateParams(path, utils.Validators); !ok {
		zap.L().Info("Path parameter validation failed", zap.String("resource", req.Resource), zap.Strings("details", errs))
		return models.QueryRequest{}, nil, models.NewValidationError(MsgValidationFailed, errs)
	}

	query := utils.ExtractParams(req.QueryStringParameters, queryNames...)
	if ok, errs := utils.ValidateParams(query, utils.Validators); !ok {
		zap.L().Info("Query parameter validation failed", zap.String("resource", req.Resource), zap.Strings("details", errs))
		return models.QueryRequest{}, nil, models.NewValidationError(MsgQueryValidationFailed, errs)
	}

	qr := models.QueryRequest{
		DeviceID:  utils.Lookup(path, utils.ParamDeviceID),
		RoomID:    utils.Lookup(path, utils.ParamRoomID),
		StartTime: utils.Lookup(query, utils.ParamStartTime),
		EndTime:   utils.Lookup(query, utils.ParamEndTime),
		Status:    utils.Lookup(query, utils.ParamStatus),
	}
	if err := utils.ValidateTimeWindow(qr.StartTime, qr.EndTime); err != nil {
		zap.L().Info("Time window rejected", zap.String("resource", req.Resource), zap.Error(err))
		return models.QueryRequest{}, nil, models.NewValidationError(MsgQueryValidationFailed, []string{err.Error()})
	}
	return qr, path, nil
}

var (
	filtersWithStatus = []string{utils.ParamStartTime, utils.ParamEndTime, utils.ParamStatus}
	timeFilters       = []string{utils.ParamStartTime, utils.ParamEndTime}
)
