package models

// QueryRequest holds the identifiers bound from the path and the optional
// filters taken from the query string. Empty means not supplied.
type QueryRequest struct {
	DeviceID  string `json:"device_id,omitempty"`
	RoomID    string `json:"room_id,omitempty"`
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
	Status    string `json:"status,omitempty"`
}

// HasDevice reports whether a device identifier is bound.
func (q QueryRequest) HasDevice() bool { return q.DeviceID != "" }

// HasRoom reports whether a room identifier is bound.
func (q QueryRequest) HasRoom() bool { return q.RoomID != "" }
