package models

// Dataset identifies one of the three append-only analytical datasets.
type Dataset string

const (
	DatasetRevenue      Dataset = "revenue"
	DatasetContent      Dataset = "content"
	DatasetUserBehavior Dataset = "user_behavior"
)

func (d Dataset) String() string { return string(d) }

// DatasetRecord is the shaped write unit. The downstream store
// interprets every field positionally, not by name, so the length and
// order of each list must never vary across writes to the same dataset.
type DatasetRecord struct {
	Blobs   []string  `json:"blobs"`
	Doubles []float64 `json:"doubles"`
	Indexes []string  `json:"indexes"`
}

// DatasetSchema documents a dataset's positional layout. It is the
// single point of truth shared by the shapers, the storage DDL and the
// tests: changing a layout means editing the descriptor here.
type DatasetSchema struct {
	Dataset Dataset
	Blobs   []string
	Doubles []string
	Indexes []string
}

// RevenueSchema describes purchase, subscription and refund events.
var RevenueSchema = DatasetSchema{
	Dataset: DatasetRevenue,
	Blobs:   []string{"event", "studio_id", "user_id", "country", "city", "payment_method", "currency", "content_id"},
	Doubles: []string{"amount", "coins", "tax", "fee", "timestamp", "latitude", "longitude"},
	Indexes: []string{"studio_id"},
}

// ContentSchema describes reading and watching engagement events.
var ContentSchema = DatasetSchema{
	Dataset: DatasetContent,
	Blobs:   []string{"event", "content_id", "user_id", "country", "city", "content_type", "series_id", "quality"},
	Doubles: []string{"progress", "total", "time_spent", "engagement", "completion_rate", "engagement_score", "timestamp"},
	Indexes: []string{"studio_id"},
}

// BehaviorSchema describes everything that is neither revenue nor
// content engagement.
var BehaviorSchema = DatasetSchema{
	Dataset: DatasetUserBehavior,
	Blobs:   []string{"event", "user_id", "session_id", "country", "city", "referrer", "source", "medium"},
	Doubles: []string{"value", "duration", "score", "timestamp"},
	Indexes: []string{"studio_id"},
}

// SchemaFor returns the layout descriptor for a dataset.
func SchemaFor(d Dataset) DatasetSchema {
	switch d {
	case DatasetRevenue:
		return RevenueSchema
	case DatasetContent:
		return ContentSchema
	default:
		return BehaviorSchema
	}
}
