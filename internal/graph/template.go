package graph

import (
	"fmt"
	"strconv"
	"strings"
)

// TemplateOptions configures the shared URL pattern for one collection run
// against one date window.
type TemplateOptions struct {
	// Edge is the insights edge for the item type ("insights" for pages,
	// "app_insights" for apps).
	Edge string
	// Period is the aggregation period query parameter (e.g. "day").
	Period string
	// Bounded controls whether since/until are present at all. When false
	// the API is asked for the full available history.
	Bounded bool
	// Since and Until are epoch seconds, inclusive window bounds. Only
	// meaningful when Bounded is true.
	Since int64
	Until int64
	// HasEvents appends the event_name parameter placeholder.
	HasEvents bool
	// Aggregate appends the aggregateBy parameter placeholder.
	Aggregate bool
	// Breakdowns are appended as indexed breakdowns[i] parameters.
	Breakdowns []string
}

// Template is the request URL pattern shared by every metric fetch of one
// (run, date window). Per-request values are substituted into the {id},
// {token}, {metric}, {ev} and {agg} placeholders.
type Template struct {
	pattern string
}

// NewTemplate builds the URL pattern once; URL fills in per-request values.
func NewTemplate(baseURL string, o TemplateOptions) *Template {
	path := strings.Join([]string{baseURL, "{id}", o.Edge, "{metric}"}, "/")

	query := []string{
		"access_token={token}",
		"period=" + o.Period,
	}
	if o.Bounded {
		query = append(query,
			"since="+strconv.FormatInt(o.Since, 10),
			"until="+strconv.FormatInt(o.Until, 10),
		)
	}
	if o.HasEvents {
		query = append(query, "event_name={ev}")
	}
	if o.Aggregate {
		query = append(query, "aggregateBy={agg}")
	}
	for i, b := range o.Breakdowns {
		query = append(query, fmt.Sprintf("breakdowns[%d]=%s", i, b))
	}

	return &Template{pattern: path + "?" + strings.Join(query, "&")}
}

// URL substitutes the per-request values into the pattern.
func (t *Template) URL(id, token, metric, event, aggregation string) string {
	return strings.NewReplacer(
		"{id}", id,
		"{token}", token,
		"{metric}", metric,
		"{ev}", event,
		"{agg}", aggregation,
	).Replace(t.pattern)
}
