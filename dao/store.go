package dao

import (
	"context"
	"errors"
	"fmt"

	"CapIot.telemetryAPI/models"
)

// ErrQueryFailed wraps every store failure so callers can tell a backend
// error apart from a validation error.
var ErrQueryFailed = errors.New("query failed")

func queryFailed(err error) error {
	return fmt.Errorf("%w: %v", ErrQueryFailed, err)
}

// Index selects which keyspace a plan reads from.
type Index int

const (
	// IndexTable is the primary index, partitioned by device_id.
	IndexTable Index = iota
	// IndexRoom is the secondary index partitioned by room_id.
	IndexRoom
)

func (i Index) String() string {
	switch i {
	case IndexTable:
		return "table"
	case IndexRoom:
		return "room_index"
	}
	return fmt.Sprintf("Index(%d)", int(i))
}

// SortRange bounds the timestamp sort key. Both bounds are inclusive and
// either may be empty.
type SortRange struct {
	Start string
	End   string
}

// KeyCondition is a partition key equality plus an optional sort range.
type KeyCondition struct {
	PartitionKey   string
	PartitionValue string
	Range          SortRange
}

// Filter is an attribute equality applied after the key condition.
type Filter struct {
	Attribute string
	Value     string
}

// AccessPlan describes one read against the store. A nil Key means a full
// scan.
type AccessPlan struct {
	Index      Index
	Key        *KeyCondition
	Filters    []Filter
	Projection []string
}

// IsScan reports whether the plan reads the whole table.
func (p AccessPlan) IsScan() bool {
	return p.Key == nil
}

// Store executes access plans against a telemetry backend. Implementations
// return a single page and wrap failures with ErrQueryFailed.
type Store interface {
	Execute(ctx context.Context, plan AccessPlan) ([]models.Item, error)
}
