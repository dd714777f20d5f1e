// Package seed generates deterministic telemetry test data and renders it in
// the formats the stores and the AWS CLI load.
package seed

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"CapIot.telemetryAPI/models"
)

// Options controls the shape of the generated data set.
type Options struct {
	Sensors        int
	Rooms          int
	SensorsPerRoom int
	PointsPerRoom  int
	ErrorRate      float64
	Start          time.Time
	Seed           int64
}

// DefaultOptions matches the data set the API tests run against: 100
// sensors, 10 rooms of 20 sensors, 1000 points per room, 25% sensor errors.
func DefaultOptions() Options {
	return Options{
		Sensors:        100,
		Rooms:          10,
		SensorsPerRoom: 20,
		PointsPerRoom:  1000,
		ErrorRate:      0.25,
		Start:          time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC),
		Seed:           1,
	}
}

// Validate rejects options that cannot produce a data set.
func (o Options) Validate() error {
	switch {
	case o.Sensors <= 0:
		return fmt.Errorf("sensors must be positive, got %d", o.Sensors)
	case o.Rooms <= 0 || o.Rooms > 999:
		return fmt.Errorf("rooms must be between 1 and 999, got %d", o.Rooms)
	case o.SensorsPerRoom <= 0:
		return fmt.Errorf("sensors per room must be positive, got %d", o.SensorsPerRoom)
	case o.PointsPerRoom < 0:
		return fmt.Errorf("points per room must not be negative, got %d", o.PointsPerRoom)
	case o.ErrorRate < 0 || o.ErrorRate > 1:
		return fmt.Errorf("error rate must be within [0, 1], got %v", o.ErrorRate)
	}
	return nil
}

// SensorID formats the n-th sensor identifier (1-based).
func SensorID(n int) string { return fmt.Sprintf("sensor_%02d", n) }

// RoomID formats the n-th room identifier (1-based).
func RoomID(n int) string { return fmt.Sprintf("room_%03d", n) }

// AssignRooms shuffles the sensors and deals SensorsPerRoom of them to each
// room in turn. No sensor is placed in two rooms; when sensors run out the
// remaining rooms get fewer or none.
func AssignRooms(opts Options, rng *rand.Rand) map[string][]string {
	sensors := make([]string, opts.Sensors)
	for i := range sensors {
		sensors[i] = SensorID(i + 1)
	}
	rng.Shuffle(len(sensors), func(i, j int) { sensors[i], sensors[j] = sensors[j], sensors[i] })

	assignment := make(map[string][]string, opts.Rooms)
	for i := 0; i < opts.Rooms; i++ {
		lo := min(i*opts.SensorsPerRoom, len(sensors))
		hi := min(lo+opts.SensorsPerRoom, len(sensors))
		assignment[RoomID(i+1)] = sensors[lo:hi]
	}
	return assignment
}

// Generate builds the records room by room. Every room cycles through its
// sensors PointsPerRoom/SensorsPerRoom times and each record advances the
// clock by one second, so timestamps are unique across the whole set.
func Generate(opts Options) ([]models.TelemetryRecord, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	rng := rand.New(rand.NewSource(opts.Seed))
	assignment := AssignRooms(opts, rng)

	records := make([]models.TelemetryRecord, 0, opts.Rooms*opts.PointsPerRoom)
	ts := opts.Start.UTC()
	cycles := opts.PointsPerRoom / opts.SensorsPerRoom

	for i := 0; i < opts.Rooms; i++ {
		room := RoomID(i + 1)
		for c := 0; c < cycles; c++ {
			for _, sensor := range assignment[room] {
				rec := models.TelemetryRecord{
					DeviceID:  sensor,
					RoomID:    room,
					Timestamp: ts.Format(models.TimestampLayout),
				}
				if rng.Float64() < opts.ErrorRate {
					rec.DeviceStatus = models.StatusSensorError
				} else {
					temp := math.Round((4.0+rng.Float64()*4.0)*10) / 10
					rec.Temperature = &temp
					rec.DeviceStatus = models.StatusOK
				}
				records = append(records, rec)
				ts = ts.Add(time.Second)
			}
		}
	}
	return records, nil
}
