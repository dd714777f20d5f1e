package utils

import (
	"strings"
	"time"

	"CapIot.telemetryAPI/models"
)

// Validator reports whether a raw parameter value is well formed.
// Validators never panic; malformed input yields false.
type Validator func(string) bool

// Parameter names understood by the API.
const (
	ParamDeviceID  = "device_id"
	ParamRoomID    = "room_id"
	ParamStartTime = "start_time"
	ParamEndTime   = "end_time"
	ParamStatus    = "status"
)

// Validators is the fixed registry of parameter validators.
var Validators = map[string]Validator{
	ParamDeviceID:  ValidateDeviceID,
	ParamRoomID:    ValidateRoomID,
	ParamStartTime: ValidateTimestamp,
	ParamEndTime:   ValidateTimestamp,
	ParamStatus:    ValidateStatus,
}

var validStatuses = map[string]struct{}{
	models.StatusOK:          {},
	models.StatusSensorError: {},
	models.StatusOffline:     {},
	models.StatusMaintenance: {},
}

// ValidateDeviceID checks the `type_number` form, e.g. sensor_01 or fridge_7.
// The number must be a positive integer; its width is not constrained.
func ValidateDeviceID(deviceID string) bool {
	if strings.Count(deviceID, "_") != 1 {
		return false
	}
	deviceType, num, _ := strings.Cut(deviceID, "_")
	return deviceType != "" && isPositiveInteger(num)
}

// ValidateRoomID checks the `room_NNN` form with a zero-padded 3-digit
// number greater than zero (room_001 .. room_999).
func ValidateRoomID(roomID string) bool {
	if strings.Count(roomID, "_") != 1 {
		return false
	}
	prefix, num, _ := strings.Cut(roomID, "_")
	if prefix != "room" || len(num) != 3 {
		return false
	}
	return isDigits(num) && isPositiveInteger(num)
}

// ValidateTimestamp accepts UTC ISO-8601 date-times ending in a literal Z.
func ValidateTimestamp(timestamp string) bool {
	if !strings.HasSuffix(timestamp, "Z") {
		return false
	}
	_, err := time.Parse(time.RFC3339, strings.TrimSuffix(timestamp, "Z")+"+00:00")
	return err == nil
}

// ValidateStatus accepts the lowercase device statuses only.
func ValidateStatus(status string) bool {
	_, ok := validStatuses[status]
	return ok
}

// isPositiveInteger accepts plain decimal digits, at least one of which is
// non-zero. Signs are rejected so that identifiers stay in canonical form.
// Width is unbounded.
func isPositiveInteger(s string) bool {
	if !isDigits(s) {
		return false
	}
	return strings.Trim(s, "0") != ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
