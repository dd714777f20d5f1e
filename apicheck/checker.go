// Package apicheck runs black-box checks against a deployed telemetry API.
package apicheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// Result is the outcome of one check.
type Result struct {
	Name     string   `json:"name"`
	Passed   bool     `json:"passed"`
	Advisory bool     `json:"advisory,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// Checker issues requests against one base URL.
type Checker struct {
	client *resty.Client
	logger *zap.Logger
}

// New creates a Checker for baseURL.
func New(baseURL string, timeout time.Duration, logger *zap.Logger) *Checker {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json")
	return &Checker{client: client, logger: logger}
}

type body map[string]json.RawMessage

func (c *Checker) get(ctx context.Context, path string, query map[string]string) (int, body, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(query).
		Get(path)
	if err != nil {
		return 0, nil, err
	}
	var b body
	if err := json.Unmarshal(resp.Body(), &b); err != nil {
		return resp.StatusCode(), nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	c.logger.Debug("Checked endpoint", zap.String("path", path), zap.Int("status", resp.StatusCode()))
	return resp.StatusCode(), b, nil
}

// Run executes every check and returns the results in order.
func (c *Checker) Run(ctx context.Context) []Result {
	var results []Result
	add := func(r Result) {
		r.Passed = len(r.Problems) == 0
		if r.Passed {
			c.logger.Info("PASS", zap.String("check", r.Name))
		} else {
			c.logger.Warn("FAIL", zap.String("check", r.Name), zap.Strings("problems", r.Problems), zap.Bool("advisory", r.Advisory))
		}
		results = append(results, r)
	}

	add(c.checkEnvelope(ctx, "root", "/", nil, "data"))
	devices, r := c.checkListing(ctx, "devices list", "/devices", "devices")
	add(r)
	rooms, r := c.checkListing(ctx, "rooms list", "/rooms", "rooms")
	add(r)

	if len(devices) > 0 {
		device := devices[0]
		add(c.checkEnvelope(ctx, "device detail", "/devices/"+device, nil, "data", "device_id"))
		add(c.checkSensorErrorTemperatures(ctx, device))
		add(c.checkOneRoomPerDevice(ctx, devices))
		add(c.checkTimeRanges(ctx, device))
		add(c.checkIntersection(ctx, device))
	}
	if len(rooms) > 0 {
		add(c.checkEnvelope(ctx, "room detail", "/rooms/"+rooms[0], nil, "data", "room_id"))
		add(c.checkRoomDevices(ctx, rooms[0]))
	}

	add(c.checkIdempotent(ctx, "/devices"))
	add(c.checkIdempotent(ctx, "/rooms"))

	add(c.checkError(ctx, "invalid device_id", "/devices/invalid", nil, http.StatusBadRequest, "Validation failed"))
	add(c.checkError(ctx, "invalid room_id", "/rooms/room_1", nil, http.StatusBadRequest, "Validation failed"))
	add(c.checkError(ctx, "invalid status", "/devices/sensor_01", map[string]string{"status": "OK"}, http.StatusBadRequest, "Query parameter validation failed"))
	add(c.checkError(ctx, "invalid start_time", "/devices/sensor_01", map[string]string{"start_time": "2025-08-01 00:00:00"}, http.StatusBadRequest, "Query parameter validation failed"))
	add(c.checkError(ctx, "unknown route", "/nonexistent", nil, http.StatusNotFound, ""))
	return results
}

func (c *Checker) checkEnvelope(ctx context.Context, name, path string, query map[string]string, payloadKey string, echoed ...string) Result {
	res := Result{Name: name}
	status, b, err := c.get(ctx, path, query)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	if status != http.StatusOK {
		res.Problems = append(res.Problems, fmt.Sprintf("status %d, want 200", status))
	}
	for _, key := range echoed {
		if _, ok := b[key]; !ok {
			res.Problems = append(res.Problems, "missing key "+key)
		}
	}
	var payload []json.RawMessage
	if err := json.Unmarshal(b[payloadKey], &payload); err != nil {
		res.Problems = append(res.Problems, fmt.Sprintf("%s is not an array", payloadKey))
		return res
	}
	res.Problems = append(res.Problems, countProblems(b, len(payload))...)
	return res
}

func (c *Checker) checkListing(ctx context.Context, name, path, key string) ([]string, Result) {
	res := Result{Name: name}
	status, b, err := c.get(ctx, path, nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return nil, res
	}
	if status != http.StatusOK {
		res.Problems = append(res.Problems, fmt.Sprintf("status %d, want 200", status))
	}
	var values []string
	if err := json.Unmarshal(b[key], &values); err != nil {
		res.Problems = append(res.Problems, fmt.Sprintf("%s is not a string array", key))
		return nil, res
	}
	if !sort.StringsAreSorted(values) {
		res.Problems = append(res.Problems, key+" are not sorted")
	}
	res.Problems = append(res.Problems, countProblems(b, len(values))...)
	return values, res
}

func (c *Checker) checkSensorErrorTemperatures(ctx context.Context, device string) Result {
	res := Result{Name: "sensor_error has null temperature"}
	_, b, err := c.get(ctx, "/devices/"+device, map[string]string{"status": "sensor_error"})
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	var data []struct {
		Temperature  *float64 `json:"temperature"`
		DeviceStatus string   `json:"device_status"`
	}
	if err := json.Unmarshal(b["data"], &data); err != nil {
		res.Problems = append(res.Problems, "data is not a record array")
		return res
	}
	for i, rec := range data {
		if rec.DeviceStatus != "sensor_error" {
			res.Problems = append(res.Problems, fmt.Sprintf("record %d has status %q", i, rec.DeviceStatus))
		}
		if rec.Temperature != nil {
			res.Problems = append(res.Problems, fmt.Sprintf("record %d has temperature %v", i, *rec.Temperature))
		}
	}
	return res
}

// checkOneRoomPerDevice is advisory: the API tolerates devices that moved.
func (c *Checker) checkOneRoomPerDevice(ctx context.Context, devices []string) Result {
	res := Result{Name: "each device in one room", Advisory: true}
	for _, device := range devices {
		_, b, err := c.get(ctx, "/devices/"+device+"/rooms", nil)
		if err != nil {
			res.Problems = append(res.Problems, err.Error())
			continue
		}
		var rooms []string
		if err := json.Unmarshal(b["rooms"], &rooms); err != nil {
			res.Problems = append(res.Problems, device+": rooms is not a string array")
			continue
		}
		if len(rooms) != 1 {
			res.Problems = append(res.Problems, fmt.Sprintf("%s is in %d rooms: %v", device, len(rooms), rooms))
		}
	}
	return res
}

func (c *Checker) checkRoomDevices(ctx context.Context, room string) Result {
	res := Result{Name: "room devices"}
	_, b, err := c.get(ctx, "/rooms/"+room+"/devices", nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	var devices []struct {
		DeviceID string `json:"device_id"`
	}
	if err := json.Unmarshal(b["devices"], &devices); err != nil {
		res.Problems = append(res.Problems, "devices is not an object array")
		return res
	}
	for i, d := range devices {
		if d.DeviceID == "" {
			res.Problems = append(res.Problems, fmt.Sprintf("entry %d has no device_id", i))
		}
	}
	res.Problems = append(res.Problems, countProblems(b, len(devices))...)
	return res
}

type record struct {
	DeviceID     string   `json:"device_id"`
	RoomID       string   `json:"room_id"`
	Timestamp    string   `json:"timestamp"`
	Temperature  *float64 `json:"temperature"`
	DeviceStatus string   `json:"device_status"`
}

func (c *Checker) getRecords(ctx context.Context, path string, query map[string]string) ([]record, error) {
	status, b, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%s: status %d, want 200", path, status)
	}
	var data []record
	if err := json.Unmarshal(b["data"], &data); err != nil {
		return nil, fmt.Errorf("%s: data is not a record array", path)
	}
	return data, nil
}

// checkTimeRanges picks bounds from the device's own history and checks the
// start-only, end-only and bounded windows against it. Timestamps share one
// fixed-width layout, so string order is time order.
func (c *Checker) checkTimeRanges(ctx context.Context, device string) Result {
	res := Result{Name: "time range filters"}
	path := "/devices/" + device
	all, err := c.getRecords(ctx, path, nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	if len(all) < 2 {
		return res
	}
	start, end := all[len(all)/3].Timestamp, all[2*len(all)/3].Timestamp

	windows := []struct {
		name  string
		query map[string]string
		keep  func(ts string) bool
	}{
		{"start only", map[string]string{"start_time": start}, func(ts string) bool { return ts >= start }},
		{"end only", map[string]string{"end_time": end}, func(ts string) bool { return ts <= end }},
		{"between", map[string]string{"start_time": start, "end_time": end}, func(ts string) bool { return ts >= start && ts <= end }},
	}
	for _, w := range windows {
		got, err := c.getRecords(ctx, path, w.query)
		if err != nil {
			res.Problems = append(res.Problems, w.name+": "+err.Error())
			continue
		}
		want := 0
		for _, rec := range all {
			if w.keep(rec.Timestamp) {
				want++
			}
		}
		for _, rec := range got {
			if !w.keep(rec.Timestamp) {
				res.Problems = append(res.Problems, fmt.Sprintf("%s: %s is outside the window", w.name, rec.Timestamp))
			}
		}
		if len(got) != want {
			res.Problems = append(res.Problems, fmt.Sprintf("%s: %d records, want %d", w.name, len(got), want))
		}
	}
	return res
}

// checkIntersection reads the device in its first room both ways round.
func (c *Checker) checkIntersection(ctx context.Context, device string) Result {
	res := Result{Name: "device and room intersection"}
	_, b, err := c.get(ctx, "/devices/"+device+"/rooms", nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	var rooms []string
	if err := json.Unmarshal(b["rooms"], &rooms); err != nil || len(rooms) == 0 {
		res.Problems = append(res.Problems, device+" has no rooms")
		return res
	}
	room := rooms[0]

	byDevice, err := c.getRecords(ctx, "/devices/"+device+"/"+room, nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	byRoom, err := c.getRecords(ctx, "/rooms/"+room+"/"+device, nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	if len(byDevice) == 0 {
		res.Problems = append(res.Problems, fmt.Sprintf("no records for %s in %s", device, room))
	}
	for i, rec := range byDevice {
		if rec.DeviceID != device || rec.RoomID != room {
			res.Problems = append(res.Problems, fmt.Sprintf("record %d belongs to %s in %s", i, rec.DeviceID, rec.RoomID))
		}
	}
	if !reflect.DeepEqual(byDevice, byRoom) {
		res.Problems = append(res.Problems, fmt.Sprintf("device-first and room-first reads differ (%d vs %d records)", len(byDevice), len(byRoom)))
	}
	return res
}

// checkIdempotent issues the same GET twice and compares the bodies.
func (c *Checker) checkIdempotent(ctx context.Context, path string) Result {
	res := Result{Name: "repeatable GET " + path}
	_, first, err := c.get(ctx, path, nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	_, second, err := c.get(ctx, path, nil)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	if len(first) != len(second) {
		res.Problems = append(res.Problems, "responses have different keys")
		return res
	}
	for k, v := range first {
		if !bytes.Equal(v, second[k]) {
			res.Problems = append(res.Problems, "field "+k+" differs between requests")
		}
	}
	return res
}

func (c *Checker) checkError(ctx context.Context, name, path string, query map[string]string, wantStatus int, wantMessage string) Result {
	res := Result{Name: name}
	status, b, err := c.get(ctx, path, query)
	if err != nil {
		res.Problems = append(res.Problems, err.Error())
		return res
	}
	if status != wantStatus {
		res.Problems = append(res.Problems, fmt.Sprintf("status %d, want %d", status, wantStatus))
	}
	var msg string
	if err := json.Unmarshal(b["error"], &msg); err != nil {
		res.Problems = append(res.Problems, "missing error message")
	} else if wantMessage != "" && msg != wantMessage {
		res.Problems = append(res.Problems, fmt.Sprintf("error %q, want %q", msg, wantMessage))
	}
	return res
}

func countProblems(b body, n int) []string {
	var count int
	if err := json.Unmarshal(b["count"], &count); err != nil {
		return []string{"missing count"}
	}
	if count != n {
		return []string{fmt.Sprintf("count %d does not match payload length %d", count, n)}
	}
	return nil
}

// Failed counts the non-advisory failures.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if !r.Passed && !r.Advisory {
			n++
		}
	}
	return n
}
