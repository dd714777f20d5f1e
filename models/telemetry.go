package models

// Attribute names of a telemetry record as stored in the table.
const (
	AttrDeviceID     = "device_id"
	AttrRoomID       = "room_id"
	AttrTimestamp    = "timestamp"
	AttrTemperature  = "temperature"
	AttrDeviceStatus = "device_status"
)

// Device statuses accepted by the API.
const (
	StatusOK          = "ok"
	StatusSensorError = "sensor_error"
	StatusOffline     = "offline"
	StatusMaintenance = "maintenance"
)

// TimestampLayout is the wire format of every timestamp the API returns.
const TimestampLayout = "2006-01-02T15:04:05Z"

// Item is one raw record as returned by a store, before response shaping.
type Item = map[string]any

// TelemetryRecord represents one sensor reading.
type TelemetryRecord struct {
	DeviceID     string   `json:"device_id" dynamodbav:"device_id"`
	RoomID       string   `json:"room_id" dynamodbav:"room_id"`
	Timestamp    string   `json:"timestamp" dynamodbav:"timestamp"`
	Temperature  *float64 `json:"temperature" dynamodbav:"temperature"`
	DeviceStatus string   `json:"device_status" dynamodbav:"device_status"`
}

// Item converts the record to the generic shape stores hand back.
// A missing temperature is kept as an explicit nil.
func (r TelemetryRecord) Item() Item {
	var temperature any
	if r.Temperature != nil {
		temperature = *r.Temperature
	}
	return Item{
		AttrDeviceID:     r.DeviceID,
		AttrRoomID:       r.RoomID,
		AttrTimestamp:    r.Timestamp,
		AttrTemperature:  temperature,
		AttrDeviceStatus: r.DeviceStatus,
	}
}
