package dao

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"CapIot.telemetryAPI/models"
	"go.uber.org/zap"
)

// MemoryStore evaluates access plans over records held in process. It
// follows the DynamoDB semantics: queries come back in ascending timestamp
// order, scans in insertion order.
type MemoryStore struct {
	items []models.Item
}

// NewMemoryStore creates a store over the given items. The slice is not
// copied and must not be modified afterwards.
func NewMemoryStore(items []models.Item) *MemoryStore {
	return &MemoryStore{items: items}
}

// NewMemoryStoreFromRecords creates a store holding the given records.
func NewMemoryStoreFromRecords(records []models.TelemetryRecord) *MemoryStore {
	items := make([]models.Item, 0, len(records))
	for _, rec := range records {
		items = append(items, rec.Item())
	}
	return NewMemoryStore(items)
}

// LoadMemoryStore reads a JSON array of records from path. Numbers are kept
// as json.Number, the way DynamoDB hands back decimals.
func LoadMemoryStore(path string) (*MemoryStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening seed file: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.UseNumber()
	var items []models.Item
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("decoding seed file %s: %w", path, err)
	}
	zap.L().Info("Loaded seed records", zap.String("file", path), zap.Int("count", len(items)))
	return NewMemoryStore(items), nil
}

// Execute implements Store.
func (s *MemoryStore) Execute(ctx context.Context, plan AccessPlan) ([]models.Item, error) {
	if err := ctx.Err(); err != nil {
		return nil, queryFailed(err)
	}

	var matched []models.Item
	for _, item := range s.items {
		if plan.Key != nil && !matchesKey(item, *plan.Key) {
			continue
		}
		if !matchesFilters(item, plan.Filters) {
			continue
		}
		matched = append(matched, item)
	}

	if !plan.IsScan() {
		sort.SliceStable(matched, func(i, j int) bool {
			return stringAttr(matched[i], models.AttrTimestamp) < stringAttr(matched[j], models.AttrTimestamp)
		})
	}

	out := make([]models.Item, 0, len(matched))
	for _, item := range matched {
		out = append(out, project(item, plan.Projection))
	}
	return out, nil
}

func matchesKey(item models.Item, key KeyCondition) bool {
	if stringAttr(item, key.PartitionKey) != key.PartitionValue {
		return false
	}
	ts := stringAttr(item, models.AttrTimestamp)
	if key.Range.Start != "" && ts < key.Range.Start {
		return false
	}
	if key.Range.End != "" && ts > key.Range.End {
		return false
	}
	return true
}

func matchesFilters(item models.Item, filters []Filter) bool {
	for _, f := range filters {
		if stringAttr(item, f.Attribute) != f.Value {
			return false
		}
	}
	return true
}

// project returns a copy of item restricted to attrs.
func project(item models.Item, attrs []string) models.Item {
	if len(attrs) == 0 {
		return item
	}
	out := make(models.Item, len(attrs))
	for _, attr := range attrs {
		if v, ok := item[attr]; ok {
			out[attr] = v
		}
	}
	return out
}

func stringAttr(item models.Item, attr string) string {
	s, _ := item[attr].(string)
	return s
}
