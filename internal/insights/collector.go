package insights

import (
	"context"
	"fmt"
	"strings"

	"github.com/ignite/insight-stream/internal/graph"
	"github.com/ignite/insight-stream/internal/pkg/logger"
)

// breakdownSeparator joins breakdown values inside a buffer key. The date
// lives in its own key field, so the separator only has to keep distinct
// breakdown tuples distinct; values containing it are rejected outright
// rather than allowed to collide.
const breakdownSeparator = "\x1f"

// bufferKey identifies one output row while a collection is in flight: the
// date bucket the API reported, plus the breakdown values (in configured
// order) when breakdowns split a date into several rows.
type bufferKey struct {
	date      string
	breakdown string
}

// buffer accumulates partially-built rows for one (item, date-range)
// collection. Single-writer by construction: one metric fetch completes
// before the next is issued.
type buffer struct {
	rows  map[bufferKey]Row
	order []bufferKey
}

func newBuffer() *buffer {
	return &buffer{rows: make(map[bufferKey]Row)}
}

// row returns the row for key, creating it and recording insertion order on
// first use. Keys are only ever added, never removed.
func (b *buffer) row(key bufferKey) Row {
	if r, ok := b.rows[key]; ok {
		return r
	}
	r := Row{}
	b.rows[key] = r
	b.order = append(b.order, key)
	return r
}

// collector produces the complete buffer for one (item, date-range) pair by
// draining a queue of metric requests, one fetch at a time.
type collector struct {
	client     *graph.Client
	tmpl       *graph.Template
	itemType   ItemType
	item       Item
	breakdowns []string
	policy     ErrorPolicy
	queue      []MetricRequest
	buf        *buffer
}

func newCollector(client *graph.Client, tmpl *graph.Template, itemType ItemType, item Item, requests []MetricRequest, breakdowns []string, policy ErrorPolicy) *collector {
	queue := make([]MetricRequest, len(requests))
	copy(queue, requests)
	return &collector{
		client:     client,
		tmpl:       tmpl,
		itemType:   itemType,
		item:       item,
		breakdowns: breakdowns,
		policy:     policy,
		queue:      queue,
		buf:        newBuffer(),
	}
}

// run drains the request queue. Empty results are skippable and drop the
// current request; classifiable errors are routed through the policy, which
// either re-issues the current request, skips it, or fails the run.
func (c *collector) run(ctx context.Context) (*buffer, error) {
	for len(c.queue) > 0 {
		req := c.queue[0]
		reqURL := c.tmpl.URL(c.item.ID, c.item.Token, req.Metric, req.Event, req.Aggregation)

		logger.Info("insights: fetching series",
			"itemType", string(c.itemType),
			"item", c.item.ID,
			"column", req.Column(),
			"url", reqURL)

		points, err := c.client.FetchSeries(ctx, reqURL)
		if err != nil {
			switch c.policy.Handle(req, err) {
			case Retry:
				logger.Warn("insights: retrying metric",
					"item", c.item.ID, "column", req.Column(), "error", err.Error())
				continue
			case Skip:
				logger.Warn("insights: skipping metric after error",
					"item", c.item.ID, "column", req.Column(), "error", err.Error())
				c.queue = c.queue[1:]
				continue
			default:
				return nil, fmt.Errorf("insights: fetching %s for %s %s: %w",
					req.Column(), c.itemType, c.item.ID, err)
			}
		}

		if len(points) == 0 {
			// Skippable: no data for this metric on this item.
			logger.Debug("insights: no data for metric",
				"item", c.item.ID, "column", req.Column())
			c.queue = c.queue[1:]
			continue
		}

		if err := c.bufferPoints(req, points); err != nil {
			return nil, err
		}
		c.queue = c.queue[1:]
	}
	return c.buf, nil
}

func (c *collector) bufferPoints(req MetricRequest, points []graph.Point) error {
	for _, pt := range points {
		key, err := c.keyFor(pt)
		if err != nil {
			return err
		}

		row := c.buf.row(key)
		row[req.Column()] = pt.Value

		if len(c.breakdowns) == 0 || pt.Breakdowns == nil {
			continue
		}
		for _, name := range c.breakdowns {
			if v, ok := pt.Breakdowns[name]; ok {
				row[name] = v
			}
		}
	}
	return nil
}

// keyFor computes the composite buffer key for a point. Points sharing a
// date but differing in breakdown values get distinct keys and therefore
// distinct rows.
func (c *collector) keyFor(pt graph.Point) (bufferKey, error) {
	date := pt.DateBucket()
	if date == "" {
		return bufferKey{}, fmt.Errorf("insights: data point for %s %s has no time bucket", c.itemType, c.item.ID)
	}

	key := bufferKey{date: date}
	if len(c.breakdowns) == 0 || pt.Breakdowns == nil {
		return key, nil
	}

	var parts []string
	for _, name := range c.breakdowns {
		v, ok := pt.Breakdowns[name]
		if !ok {
			continue
		}
		if strings.Contains(v, breakdownSeparator) {
			return bufferKey{}, fmt.Errorf("insights: breakdown %s value %q contains reserved separator", name, v)
		}
		parts = append(parts, v)
	}
	key.breakdown = strings.Join(parts, breakdownSeparator)
	return key, nil
}
