// Package insights implements the date-range chunking and metric-collection
// engine behind the Facebook insight stream: it splits a lookback window
// into API-legal sub-ranges, drives one metric fetch at a time per item and
// sub-range, buffers the heterogeneous per-metric series into per-date
// composite rows, and exposes the result as a pull-driven batch stream.
package insights

import "time"

// ItemType selects which kind of account node is being queried.
type ItemType string

const (
	ItemTypePage ItemType = "page"
	ItemTypeApp  ItemType = "app"
)

// Edge returns the Graph API insights edge for the item type.
func (t ItemType) Edge() string {
	if t == ItemTypeApp {
		return "app_insights"
	}
	return "insights"
}

// ItemRef is a configured item entry before resolution: a bare id, or an
// id with its own access token for multi-tenant runs.
type ItemRef struct {
	ID    string
	Token string
}

// Item is a resolved account item. Token is the effective credential for
// every fetch against this item (the item's own token when configured,
// otherwise the run default).
type Item struct {
	ID    string
	Name  string
	Token string
}

// DateRange is one API-legal query window. When Bounded is false the run has
// no lookback limit and both bounds are omitted from requests entirely.
type DateRange struct {
	Since   time.Time
	Until   time.Time
	Bounded bool
}

// Days returns the number of calendar days the range covers.
func (r DateRange) Days() int {
	if !r.Bounded {
		return 0
	}
	since := time.Date(r.Since.Year(), r.Since.Month(), r.Since.Day(), 0, 0, 0, 0, r.Since.Location())
	until := time.Date(r.Until.Year(), r.Until.Month(), r.Until.Day(), 0, 0, 0, 0, r.Until.Location())
	return int(until.Sub(since).Hours()/24) + 1
}

// MetricRequest identifies one pending fetch: a plain metric, or a metric
// paired with an event name and aggregation mode for audience-style queries.
type MetricRequest struct {
	Metric      string
	Event       string
	Aggregation string
}

// Column returns the output column this request populates: the event name
// when event-based, the metric name otherwise.
func (m MetricRequest) Column() string {
	if m.Event != "" {
		return m.Event
	}
	return m.Metric
}

// countEvents are the audience events aggregated with COUNT; every other
// event uses SUM.
var countEvents = map[string]bool{
	"fb_ad_network_imp":   true,
	"fb_ad_network_click": true,
}

// AggregationFor returns the aggregation mode for an event name.
func AggregationFor(event string) string {
	if countEvents[event] {
		return "COUNT"
	}
	return "SUM"
}

// Row is one emitted per-date row: date, item identity columns, and one
// column per collected metric/event plus any breakdown dimensions.
type Row map[string]interface{}

// Progress is emitted after each completed (item, date-range) unit. Message
// is an unrendered template: the consumer substitutes {{remaining}}.
type Progress struct {
	Total   int
	Loaded  int
	Message string
}
