package services

import (
	"context"
	"sort"

	"CapIot.telemetryAPI/dao"
	"CapIot.telemetryAPI/models"
	"go.uber.org/zap"
)

// TelemetryService answers telemetry reads by planning them against a store.
type TelemetryService struct {
	store dao.Store
}

// NewTelemetryService creates a new TelemetryService.
func NewTelemetryService(store dao.Store) *TelemetryService {
	return &TelemetryService{store: store}
}

// GetRecords returns the records matching req. Store errors are returned
// as is and already wrap dao.ErrQueryFailed.
func (s *TelemetryService) GetRecords(ctx context.Context, req models.QueryRequest, centricity Centricity) ([]models.Item, error) {
	strategy, plan := PlanRequest(req, centricity)
	zap.L().Debug("Planned telemetry query",
		zap.Stringer("strategy", strategy),
		zap.Stringer("index", plan.Index),
		zap.Int("filters", len(plan.Filters)),
	)
	return s.store.Execute(ctx, plan)
}

// ListDevices returns every distinct device_id in the table, sorted.
func (s *TelemetryService) ListDevices(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, ListingPlan(models.AttrDeviceID, dao.IndexTable, "", ""), models.AttrDeviceID)
}

// ListRooms returns every distinct room_id in the table, sorted.
func (s *TelemetryService) ListRooms(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, ListingPlan(models.AttrRoomID, dao.IndexTable, "", ""), models.AttrRoomID)
}

// GetDeviceRooms returns the rooms a device has reported from, sorted.
func (s *TelemetryService) GetDeviceRooms(ctx context.Context, deviceID string) ([]string, error) {
	plan := ListingPlan(models.AttrRoomID, dao.IndexTable, models.AttrDeviceID, deviceID)
	return s.distinct(ctx, plan, models.AttrRoomID)
}

// GetRoomDevices returns the devices that reported from a room, sorted.
func (s *TelemetryService) GetRoomDevices(ctx context.Context, roomID string) ([]string, error) {
	plan := ListingPlan(models.AttrDeviceID, dao.IndexRoom, models.AttrRoomID, roomID)
	return s.distinct(ctx, plan, models.AttrDeviceID)
}

func (s *TelemetryService) distinct(ctx context.Context, plan dao.AccessPlan, attr string) ([]string, error) {
	items, err := s.store.Execute(ctx, plan)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if v, ok := item[attr].(string); ok {
			seen[v] = struct{}{}
		}
	}
	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values, nil
}
