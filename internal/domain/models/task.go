package models

// SourceKind is the closed set of source families the planner can
// schedule work against.
type SourceKind string

const (
	KindFeed     SourceKind = "feed"
	KindStore    SourceKind = "store"
	KindCategory SourceKind = "category"
)

// FeedStoreKey is the store identifier routed through the zip-scoped
// feed path instead of the catalog path.
const FeedStoreKey = "slickdeals"

// CorrelationKey ties a fetch task to its slot in the response.
// Comparable so it can key the result map directly.
type CorrelationKey struct {
	Kind SourceKind
	ID   string
}

// SourceParams carries the inputs a fetcher needs. Which fields are set
// depends on the task kind: the feed takes Zip, stores take Store, and
// category tasks take Zip plus Category.
type SourceParams struct {
	Zip      string
	Store    string
	Category string
}

// FetchTask is one unit of planned work. Created by the planner,
// consumed exactly once by the aggregator.
type FetchTask struct {
	Key    CorrelationKey
	Params SourceParams
}

// TaskResult is the settled outcome of one task. Succeeded=false is
// internal bookkeeping only; callers always see Deals (possibly empty).
type TaskResult struct {
	Key       CorrelationKey
	Deals     []Deal
	Succeeded bool
}
