package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/beaconlabs/beacon/internal/metrics"
	"github.com/beaconlabs/beacon/internal/models"
)

// Dataset table names. One MergeTree table per dataset with positional
// blobN/doubleN/indexN columns; consumers address fields by position,
// so column order mirrors the schema descriptors exactly.
var datasetTables = map[models.Dataset]string{
	models.DatasetRevenue:      "revenue_events",
	models.DatasetContent:      "content_events",
	models.DatasetUserBehavior: "user_behavior_events",
}

// TableFor returns the ClickHouse table backing a dataset.
func TableFor(d models.Dataset) string {
	return datasetTables[d]
}

// ClickHouseStore implements DatasetStore over a ClickHouse connection.
type ClickHouseStore struct {
	db      *sql.DB
	metrics *metrics.Metrics
}

// NewClickHouseStore wraps an open ClickHouse connection.
func NewClickHouseStore(db *sql.DB, m *metrics.Metrics) *ClickHouseStore {
	return &ClickHouseStore{db: db, metrics: m}
}

// EnsureSchema creates the three dataset tables if missing. DDL is
// generated from the schema descriptors so a layout change stays a
// single-point edit.
func (s *ClickHouseStore) EnsureSchema(ctx context.Context) error {
	for _, dataset := range []models.Dataset{
		models.DatasetRevenue,
		models.DatasetContent,
		models.DatasetUserBehavior,
	} {
		if _, err := s.db.ExecContext(ctx, tableDDL(models.SchemaFor(dataset))); err != nil {
			return fmt.Errorf("create table %s: %w", TableFor(dataset), err)
		}
	}
	return nil
}

func tableDDL(schema models.DatasetSchema) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE IF NOT EXISTS %s\n(\n", TableFor(schema.Dataset))
	b.WriteString("  event_time DateTime64(3, 'UTC'),\n")
	for i, name := range schema.Blobs {
		fmt.Fprintf(&b, "  blob%d String COMMENT '%s',\n", i+1, name)
	}
	for i, name := range schema.Doubles {
		fmt.Fprintf(&b, "  double%d Float64 COMMENT '%s',\n", i+1, name)
	}
	for i, name := range schema.Indexes {
		fmt.Fprintf(&b, "  index%d String COMMENT '%s',\n", i+1, name)
	}
	b.WriteString("  _ingested_at DateTime64(3, 'UTC') DEFAULT now64(3)\n)\n")
	b.WriteString("ENGINE = MergeTree\nPARTITION BY toYYYYMM(event_time)\nORDER BY (index1, event_time)")
	return b.String()
}

// WriteDataPoint appends one record to its dataset table. Records must
// match the dataset layout exactly and carry at least one index key.
func (s *ClickHouseStore) WriteDataPoint(ctx context.Context, dataset models.Dataset, rec models.DatasetRecord) error {
	schema := models.SchemaFor(dataset)
	if len(rec.Blobs) != len(schema.Blobs) || len(rec.Doubles) != len(schema.Doubles) {
		return fmt.Errorf("record does not match %s layout: %d/%d blobs, %d/%d doubles",
			dataset, len(rec.Blobs), len(schema.Blobs), len(rec.Doubles), len(schema.Doubles))
	}
	if len(rec.Indexes) == 0 {
		return fmt.Errorf("record for %s has no index key", dataset)
	}

	start := time.Now()

	cols := make([]string, 0, 1+len(rec.Blobs)+len(rec.Doubles)+len(rec.Indexes))
	args := make([]any, 0, cap(cols))

	cols = append(cols, "event_time")
	args = append(args, eventTime(schema, rec))

	for i, v := range rec.Blobs {
		cols = append(cols, fmt.Sprintf("blob%d", i+1))
		args = append(args, v)
	}
	for i, v := range rec.Doubles {
		cols = append(cols, fmt.Sprintf("double%d", i+1))
		args = append(args, v)
	}
	for i, v := range rec.Indexes {
		cols = append(cols, fmt.Sprintf("index%d", i+1))
		args = append(args, v)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		TableFor(dataset),
		strings.Join(cols, ", "),
		placeholders(len(cols)),
	)

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", TableFor(dataset), err)
	}

	if s.metrics != nil {
		s.metrics.ObserveWrite(dataset.String(), start)
	}
	return nil
}

// eventTime derives the row's event_time from the record's stored
// millisecond timestamp; falls back to now for layouts without one.
func eventTime(schema models.DatasetSchema, rec models.DatasetRecord) time.Time {
	for i, name := range schema.Doubles {
		if name == "timestamp" && i < len(rec.Doubles) {
			return time.UnixMilli(int64(rec.Doubles[i])).UTC()
		}
	}
	return time.Now().UTC()
}

func placeholders(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = "?"
	}
	return strings.Join(parts, ", ")
}

// Query runs a parameterized query and maps every row into a Row keyed
// by column alias. Returns an empty slice when nothing matches.
func (s *ClickHouseStore) Query(ctx context.Context, query string, args ...any) ([]Row, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	out := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// Ping checks the ClickHouse connection.
func (s *ClickHouseStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
