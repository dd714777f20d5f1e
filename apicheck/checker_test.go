package apicheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CapIot.telemetryAPI/controllers"
	"CapIot.telemetryAPI/dao"
	"CapIot.telemetryAPI/routes"
	"CapIot.telemetryAPI/seed"
	"CapIot.telemetryAPI/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAPIHandler(t *testing.T) http.Handler {
	t.Helper()
	opts := seed.DefaultOptions()
	opts.Sensors, opts.Rooms, opts.SensorsPerRoom, opts.PointsPerRoom = 8, 2, 4, 40
	records, err := seed.Generate(opts)
	require.NoError(t, err)

	api := routes.NewRouter(controllers.NewTelemetryController(services.NewTelemetryService(dao.NewMemoryStoreFromRecords(records))))
	return routes.SetupRouter(api)
}

func newAPIServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(newAPIHandler(t))
	t.Cleanup(srv.Close)
	return srv
}

func resultsByName(results []Result) map[string]Result {
	byName := make(map[string]Result, len(results))
	for _, r := range results {
		byName[r.Name] = r
	}
	return byName
}

func TestRunAgainstLocalStack(t *testing.T) {
	srv := newAPIServer(t)

	results := New(srv.URL, 5*time.Second, zap.NewNop()).Run(context.Background())

	require.NotEmpty(t, results)
	for _, r := range results {
		assert.True(t, r.Passed, "%s: %v", r.Name, r.Problems)
	}
	assert.Zero(t, Failed(results))

	byName := resultsByName(results)
	for _, name := range []string{"time range filters", "device and room intersection", "repeatable GET /devices", "repeatable GET /rooms"} {
		assert.Contains(t, byName, name)
	}
}

func TestRunDetectsIgnoredFilters(t *testing.T) {
	api := newAPIHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.URL.RawQuery = ""
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	byName := resultsByName(New(srv.URL, 5*time.Second, zap.NewNop()).Run(context.Background()))

	assert.False(t, byName["time range filters"].Passed)
	assert.NotEmpty(t, byName["time range filters"].Problems)
	assert.True(t, byName["device and room intersection"].Passed)
}

func TestRunReportsBrokenAPI(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"devices":["sensor_02","sensor_01"],"count":1}`))
	}))
	t.Cleanup(srv.Close)

	results := New(srv.URL, 5*time.Second, zap.NewNop()).Run(context.Background())

	assert.Positive(t, Failed(results))
	byName := resultsByName(results)
	assert.False(t, byName["devices list"].Passed)
	assert.Contains(t, byName["devices list"].Problems, "devices are not sorted")
	assert.False(t, byName["unknown route"].Passed)
}

func TestFailedIgnoresAdvisoryResults(t *testing.T) {
	results := []Result{
		{Name: "a", Passed: true},
		{Name: "b", Passed: false, Advisory: true},
		{Name: "c", Passed: false},
	}
	assert.Equal(t, 1, Failed(results))
}
