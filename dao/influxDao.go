package dao

import (
	"context"
	"fmt"
	"strings"
	"time"

	"CapIot.telemetryAPI/models"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"go.uber.org/zap"
)

// Measurement holds one point per telemetry record. device_id and room_id
// are tags, device_status and temperature are fields.
const Measurement = "telemetry"

// Range bounds used when the plan leaves one side open.
const (
	fluxRangeStart = "1970-01-01T00:00:00Z"
	fluxRangeStop  = "2200-01-01T00:00:00Z"
)

var fluxEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "${", `\${`)

// InfluxStore reads telemetry from an InfluxDB bucket.
type InfluxStore struct {
	client influxdb2.Client
	org    string
	bucket string
}

// NewInfluxStore creates a new InfluxStore.
func NewInfluxStore(client influxdb2.Client, org, bucket string) *InfluxStore {
	return &InfluxStore{
		client: client,
		org:    org,
		bucket: bucket,
	}
}

// Execute translates the plan to Flux and runs it. Both indexes map onto the
// same bucket since tags are indexed on their own.
func (s *InfluxStore) Execute(ctx context.Context, plan AccessPlan) ([]models.Item, error) {
	query, err := BuildFlux(s.bucket, plan)
	if err != nil {
		return nil, queryFailed(err)
	}
	zap.L().Debug("Executing InfluxDB query", zap.String("query", query))

	result, err := s.client.QueryAPI(s.org).Query(ctx, query)
	if err != nil {
		zap.L().Error("Error querying InfluxDB", zap.String("bucket", s.bucket), zap.Error(err))
		return nil, queryFailed(err)
	}
	defer result.Close()

	items := []models.Item{}
	for result.Next() {
		items = append(items, recordItem(result.Record().Values(), result.Record().Time(), plan.Projection))
	}
	if result.Err() != nil {
		zap.L().Error("InfluxDB query error", zap.Error(result.Err()))
		return nil, queryFailed(result.Err())
	}
	return items, nil
}

// BuildFlux renders the plan as a Flux query over the telemetry measurement.
func BuildFlux(bucket string, plan AccessPlan) (string, error) {
	start, stop := fluxRangeStart, fluxRangeStop
	if plan.Key != nil {
		if plan.Key.Range.Start != "" {
			start = plan.Key.Range.Start
		}
		if plan.Key.Range.End != "" {
			end, err := time.Parse(time.RFC3339Nano, plan.Key.Range.End)
			if err != nil {
				return "", fmt.Errorf("invalid range end %q: %w", plan.Key.Range.End, err)
			}
			// range() excludes stop, the sort key range includes it
			stop = end.Add(time.Nanosecond).UTC().Format(time.RFC3339Nano)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "from(bucket: %s)\n", fluxString(bucket))
	fmt.Fprintf(&b, "  |> range(start: %s, stop: %s)\n", start, stop)
	fmt.Fprintf(&b, "  |> filter(fn: (r) => r[\"_measurement\"] == %s)\n", fluxString(Measurement))
	if plan.Key != nil {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => r[%s] == %s)\n", fluxString(plan.Key.PartitionKey), fluxString(plan.Key.PartitionValue))
	}
	b.WriteString("  |> pivot(rowKey: [\"_time\", \"device_id\", \"room_id\"], columnKey: [\"_field\"], valueColumn: \"_value\")\n")
	b.WriteString("  |> group()\n")
	for _, f := range plan.Filters {
		fmt.Fprintf(&b, "  |> filter(fn: (r) => r[%s] == %s)\n", fluxString(f.Attribute), fluxString(f.Value))
	}
	if len(plan.Projection) > 0 {
		cols := []string{fluxString("_time")}
		for _, attr := range plan.Projection {
			if attr != models.AttrTimestamp {
				cols = append(cols, fluxString(attr))
			}
		}
		fmt.Fprintf(&b, "  |> keep(columns: [%s])\n", strings.Join(cols, ", "))
	}
	b.WriteString("  |> sort(columns: [\"_time\"])")
	return b.String(), nil
}

func fluxString(s string) string {
	return `"` + fluxEscaper.Replace(s) + `"`
}

func recordItem(values map[string]interface{}, ts time.Time, projection []string) models.Item {
	full := models.Item{
		models.AttrDeviceID:     values[models.AttrDeviceID],
		models.AttrRoomID:       values[models.AttrRoomID],
		models.AttrTimestamp:    ts.UTC().Format(models.TimestampLayout),
		models.AttrTemperature:  values[models.AttrTemperature],
		models.AttrDeviceStatus: values[models.AttrDeviceStatus],
	}
	if len(projection) == 0 {
		return full
	}
	item := make(models.Item, len(projection))
	for _, attr := range projection {
		item[attr] = full[attr]
	}
	return item
}

// EnsureBucket creates the bucket in the store's organization when it does
// not exist yet.
func (s *InfluxStore) EnsureBucket(ctx context.Context) error {
	bucketsAPI := s.client.BucketsAPI()
	if _, err := bucketsAPI.FindBucketByName(ctx, s.bucket); err == nil {
		return nil
	}

	org, err := s.client.OrganizationsAPI().FindOrganizationByName(ctx, s.org)
	if err != nil {
		return fmt.Errorf("finding organization %q: %w", s.org, err)
	}
	if _, err := bucketsAPI.CreateBucketWithName(ctx, org, s.bucket); err != nil {
		return fmt.Errorf("creating bucket %q: %w", s.bucket, err)
	}
	zap.L().Info("Bucket created", zap.String("bucket", s.bucket), zap.String("org", s.org))
	return nil
}

// WriteRecords loads records into the bucket. Used to seed local
// environments; the API itself never writes.
func (s *InfluxStore) WriteRecords(ctx context.Context, records []models.TelemetryRecord) error {
	writeAPI := s.client.WriteAPIBlocking(s.org, s.bucket)
	points := make([]*write.Point, 0, len(records))
	for _, rec := range records {
		p, err := recordPoint(rec)
		if err != nil {
			return err
		}
		points = append(points, p)
	}
	if err := writeAPI.WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	zap.L().Info("Records written to InfluxDB", zap.Int("count", len(points)), zap.String("bucket", s.bucket))
	return nil
}

func recordPoint(rec models.TelemetryRecord) (*write.Point, error) {
	ts, err := time.Parse(time.RFC3339, rec.Timestamp)
	if err != nil {
		return nil, fmt.Errorf("invalid timestamp %q for %s: %w", rec.Timestamp, rec.DeviceID, err)
	}
	fields := map[string]interface{}{
		models.AttrDeviceStatus: rec.DeviceStatus,
	}
	if rec.Temperature != nil {
		fields[models.AttrTemperature] = *rec.Temperature
	}
	return influxdb2.NewPoint(
		Measurement,
		map[string]string{
			models.AttrDeviceID: rec.DeviceID,
			models.AttrRoomID:   rec.RoomID,
		},
		fields,
		ts,
	), nil
}
