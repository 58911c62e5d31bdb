package storage

import (
	"context"

	"github.com/beaconlabs/beacon/internal/models"
)

// Row is a single result row keyed by column alias.
type Row map[string]any

// DatasetWriter accepts shaped records for an append-only dataset.
type DatasetWriter interface {
	WriteDataPoint(ctx context.Context, dataset models.Dataset, rec models.DatasetRecord) error
}

// DatasetQuerier executes a parameterized analytical query and returns
// the matching rows. Implementations return an empty slice, never nil,
// when nothing matches.
type DatasetQuerier interface {
	Query(ctx context.Context, query string, args ...any) ([]Row, error)
}

// DatasetStore combines the write and read sides of the analytical
// datastore.
type DatasetStore interface {
	DatasetWriter
	DatasetQuerier
}
