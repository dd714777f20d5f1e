package seed

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"CapIot.telemetryAPI/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Sensors, opts.Rooms, opts.SensorsPerRoom, opts.PointsPerRoom = 10, 3, 3, 30
	return opts
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "sensor_01", SensorID(1))
	assert.Equal(t, "sensor_100", SensorID(100))
	assert.Equal(t, "room_001", RoomID(1))
	assert.Equal(t, "room_010", RoomID(10))
}

func TestValidateOptions(t *testing.T) {
	assert.NoError(t, DefaultOptions().Validate())

	for name, mutate := range map[string]func(*Options){
		"no sensors":      func(o *Options) { o.Sensors = 0 },
		"too many rooms":  func(o *Options) { o.Rooms = 1000 },
		"no room size":    func(o *Options) { o.SensorsPerRoom = 0 },
		"negative points": func(o *Options) { o.PointsPerRoom = -1 },
		"error rate":      func(o *Options) { o.ErrorRate = 1.5 },
	} {
		t.Run(name, func(t *testing.T) {
			opts := DefaultOptions()
			mutate(&opts)
			assert.Error(t, opts.Validate())
		})
	}
}

func TestAssignRoomsNeverSharesSensors(t *testing.T) {
	opts := smallOptions()
	assignment := AssignRooms(opts, rand.New(rand.NewSource(7)))

	require.Len(t, assignment, 3)
	seen := map[string]string{}
	for room, sensors := range assignment {
		assert.Len(t, sensors, 3)
		for _, s := range sensors {
			prev, dup := seen[s]
			assert.False(t, dup, "%s in %s and %s", s, prev, room)
			seen[s] = room
		}
	}
}

func TestAssignRoomsRunsOutOfSensors(t *testing.T) {
	opts := smallOptions()
	opts.Sensors, opts.Rooms, opts.SensorsPerRoom = 4, 3, 3

	assignment := AssignRooms(opts, rand.New(rand.NewSource(1)))
	assert.Len(t, assignment[RoomID(1)], 3)
	assert.Len(t, assignment[RoomID(2)], 1)
	assert.Empty(t, assignment[RoomID(3)])
}

func TestGenerateIsDeterministic(t *testing.T) {
	a, err := Generate(smallOptions())
	require.NoError(t, err)
	b, err := Generate(smallOptions())
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other := smallOptions()
	other.Seed = 2
	c, err := Generate(other)
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestGenerateRecordShape(t *testing.T) {
	opts := smallOptions()
	records, err := Generate(opts)
	require.NoError(t, err)
	require.Len(t, records, opts.Rooms*opts.PointsPerRoom)

	prev := opts.Start.Add(-time.Second)
	for _, rec := range records {
		ts, err := time.Parse(models.TimestampLayout, rec.Timestamp)
		require.NoError(t, err)
		assert.Equal(t, time.Second, ts.Sub(prev))
		prev = ts

		switch rec.DeviceStatus {
		case models.StatusSensorError:
			assert.Nil(t, rec.Temperature)
		case models.StatusOK:
			require.NotNil(t, rec.Temperature)
			assert.GreaterOrEqual(t, *rec.Temperature, 4.0)
			assert.LessOrEqual(t, *rec.Temperature, 8.0)
			assert.Equal(t, math.Round(*rec.Temperature*10)/10, *rec.Temperature)
		default:
			t.Fatalf("unexpected status %q", rec.DeviceStatus)
		}
	}
}

func TestGenerateErrorRateExtremes(t *testing.T) {
	opts := smallOptions()
	opts.ErrorRate = 0
	records, err := Generate(opts)
	require.NoError(t, err)
	for _, rec := range records {
		assert.Equal(t, models.StatusOK, rec.DeviceStatus)
	}

	opts.ErrorRate = 1
	records, err = Generate(opts)
	require.NoError(t, err)
	for _, rec := range records {
		assert.Equal(t, models.StatusSensorError, rec.DeviceStatus)
	}
}

func TestGenerateRejectsBadOptions(t *testing.T) {
	opts := smallOptions()
	opts.Rooms = 0
	_, err := Generate(opts)
	assert.Error(t, err)
}
