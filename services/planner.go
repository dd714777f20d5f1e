package services

import (
	"fmt"

	"CapIot.telemetryAPI/dao"
	"CapIot.telemetryAPI/models"
)

// Strategy is one way of reaching the records a request asks for.
type Strategy int

const (
	// StrategyScan reads the whole table.
	StrategyScan Strategy = iota
	// StrategyDevice queries the device partition of the table.
	StrategyDevice
	// StrategyRoom queries the room partition of the secondary index.
	StrategyRoom
	// StrategyDeviceInRoom queries the device partition and keeps one room.
	StrategyDeviceInRoom
	// StrategyRoomForDevice queries the room index and keeps one device.
	StrategyRoomForDevice
)

var strategyNames = map[Strategy]string{
	StrategyScan:          "scan",
	StrategyDevice:        "device",
	StrategyRoom:          "room",
	StrategyDeviceInRoom:  "device_in_room",
	StrategyRoomForDevice: "room_for_device",
}

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Centricity says which identifier leads when a request binds both. It is
// fixed by the route the request came in on.
type Centricity int

const (
	DeviceCentric Centricity = iota
	RoomCentric
)

// SelectStrategy picks the access strategy for the identifiers bound in req.
func SelectStrategy(req models.QueryRequest, centricity Centricity) Strategy {
	switch {
	case req.HasDevice() && req.HasRoom():
		if centricity == RoomCentric {
			return StrategyRoomForDevice
		}
		return StrategyDeviceInRoom
	case req.HasDevice():
		return StrategyDevice
	case req.HasRoom():
		return StrategyRoom
	default:
		return StrategyScan
	}
}

// BuildPlan turns a strategy and request into a store access plan. The time
// window becomes a sort key range, identifiers that are not the partition
// key and the status become post-filters. A room partition query on its own
// never filters on status.
func BuildPlan(strategy Strategy, req models.QueryRequest) dao.AccessPlan {
	window := dao.SortRange{Start: req.StartTime, End: req.EndTime}

	switch strategy {
	case StrategyDevice:
		return dao.AccessPlan{
			Index:   dao.IndexTable,
			Key:     deviceKey(req.DeviceID, window),
			Filters: statusFilter(nil, req.Status),
		}
	case StrategyRoom:
		return dao.AccessPlan{
			Index: dao.IndexRoom,
			Key:   roomKey(req.RoomID, window),
		}
	case StrategyDeviceInRoom:
		return dao.AccessPlan{
			Index:   dao.IndexTable,
			Key:     deviceKey(req.DeviceID, window),
			Filters: statusFilter([]dao.Filter{{Attribute: models.AttrRoomID, Value: req.RoomID}}, req.Status),
		}
	case StrategyRoomForDevice:
		return dao.AccessPlan{
			Index:   dao.IndexRoom,
			Key:     roomKey(req.RoomID, window),
			Filters: statusFilter([]dao.Filter{{Attribute: models.AttrDeviceID, Value: req.DeviceID}}, req.Status),
		}
	default:
		return dao.AccessPlan{Index: dao.IndexTable}
	}
}

// PlanRequest selects the strategy for req and builds its plan.
func PlanRequest(req models.QueryRequest, centricity Centricity) (Strategy, dao.AccessPlan) {
	strategy := SelectStrategy(req, centricity)
	return strategy, BuildPlan(strategy, req)
}

// ListingPlan reads only the attr column, over the whole table when
// partitionValue is empty and over one partition otherwise.
func ListingPlan(attr string, index dao.Index, partitionKey, partitionValue string) dao.AccessPlan {
	plan := dao.AccessPlan{Index: index, Projection: []string{attr}}
	if partitionValue != "" {
		plan.Key = &dao.KeyCondition{PartitionKey: partitionKey, PartitionValue: partitionValue}
	}
	return plan
}

func deviceKey(deviceID string, window dao.SortRange) *dao.KeyCondition {
	return &dao.KeyCondition{PartitionKey: models.AttrDeviceID, PartitionValue: deviceID, Range: window}
}

func roomKey(roomID string, window dao.SortRange) *dao.KeyCondition {
	return &dao.KeyCondition{PartitionKey: models.AttrRoomID, PartitionValue: roomID, Range: window}
}

func statusFilter(filters []dao.Filter, status string) []dao.Filter {
	if status == "" {
		return filters
	}
	return append(filters, dao.Filter{Attribute: models.AttrDeviceStatus, Value: status})
}
